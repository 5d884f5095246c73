package dynastream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws/credentials"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"
	"github.com/google/uuid"
)

// service names the two DynamoDB-family APIs the core talks to. Both sign
// as the "dynamodb" SigV4 service; only the target endpoint differs.
type service string

const (
	serviceDynamoDB        service = "dynamodb"
	serviceDynamoDBStreams service = "dynamodbstreams"
)

// facade wraps the signed HTTP transport described by the package's
// external-collaborator contract: it attaches X-Amz-Date/X-Amz-Target/
// Authorization headers via the AWS SigV4 signer, dispatches the request,
// reads the full body, and either parses the JSON response or constructs a
// *TypedError from a non-2xx response. It performs no retries; that is
// retry.go's job.
type facade struct {
	httpClient *http.Client
	signer     *v4.Signer
	region     string

	controlEndpoint string
	streamsEndpoint string
}

func newFacade(config Config) *facade {
	creds := credentials.NewStaticCredentials(
		config.AccessKeyID,
		config.SecretAccessKey,
		config.SessionToken,
	)

	return &facade{
		httpClient:      config.HTTPClient,
		signer:          v4.NewSigner(creds),
		region:          config.Region.Name,
		controlEndpoint: config.Region.DynamoDBEndpoint,
		streamsEndpoint: config.Region.DynamoDBStreamsEndpoint,
	}
}

func (f *facade) endpoint(svc service) string {
	if svc == serviceDynamoDB {
		return f.controlEndpoint
	}
	return f.streamsEndpoint
}

func (f *facade) target(svc service, action string) string {
	if svc == serviceDynamoDB {
		return "DynamoDB_20120810." + action
	}
	return "DynamoDBStreams_20120810." + action
}

// doAction issues one signed POST / call for the given service+action,
// marshaling payload as the request body and unmarshaling the response
// body into out (out may be nil for actions with no meaningful response,
// eg. UpdateTable).
func (f *facade) doAction(ctx context.Context, svc service, action string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dynastream: cannot encode %s request (%w)", action, err)
	}

	url := "https://" + f.endpoint(svc) + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("dynastream: cannot build %s request (%w)", action, err)
	}

	req.Header.Set("Content-Type", "application/x-amz-json-1.0")
	req.Header.Set("X-Amz-Target", f.target(svc, action))
	req.Header.Set("X-Amzn-Trace-Id", uuid.NewString())

	if _, err := f.signer.Sign(req, bytes.NewReader(body), "dynamodb", f.region, time.Now()); err != nil {
		return fmt.Errorf("dynastream: cannot sign %s request (%w)", action, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return &transportError{err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("dynastream: cannot read %s response (%w)", action, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseTypedError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("dynastream: cannot decode %s response (%w)", action, err)
	}

	return nil
}
