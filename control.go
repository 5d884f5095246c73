package dynastream

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
)

const defaultWaitPollInterval = 100 * time.Millisecond

// describeStreamSpec issues DescribeTable and extracts the table's stream
// configuration. It fails with *StreamNotFoundError when the table has no
// StreamSpecification.
func (c *Client) describeStreamSpec(ctx context.Context) (*StreamSpec, error) {
	var resp describeTableResponse
	err := withRetry(ctx, c.logEntry(), func() error {
		return c.facade.doAction(ctx, serviceDynamoDB, "DescribeTable", describeTableRequest{
			TableName: aws.String(c.config.Table),
		}, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("dynastream: cannot describe table %q (%w)", c.config.Table, err)
	}

	t := resp.Table
	if t.StreamSpecification == nil {
		return nil, &StreamNotFoundError{Table: c.config.Table}
	}

	return &StreamSpec{
		Enabled:     aws.BoolValue(t.StreamSpecification.StreamEnabled),
		ViewType:    StreamViewType(aws.StringValue(t.StreamSpecification.StreamViewType)),
		TableStatus: TableStatus(aws.StringValue(t.TableStatus)),
		StreamARN:   aws.StringValue(t.LatestStreamArn),
	}, nil
}

// createStream enables a stream on the bound table with the configured
// view type, via UpdateTable.
func (c *Client) createStream(ctx context.Context) error {
	req := updateTableRequest{
		TableName: aws.String(c.config.Table),
		StreamSpecification: &wireStreamSpecification{
			StreamEnabled:  aws.Bool(true),
			StreamViewType: aws.String(string(c.config.StreamViewType)),
		},
	}

	return withRetry(ctx, c.logEntry(), func() error {
		return c.facade.doAction(ctx, serviceDynamoDB, "UpdateTable", req, nil)
	})
}

// waitForActive polls describeStreamSpec until the table reports ACTIVE,
// treating StreamNotFoundError as "keep waiting" (the stream may not have
// propagated yet) and any other error as fatal.
func (c *Client) waitForActive(ctx context.Context, pollEvery time.Duration) (*StreamSpec, error) {
	for {
		spec, err := c.describeStreamSpec(ctx)
		if err == nil && spec.TableStatus == TableStatusActive {
			return spec, nil
		}
		if err != nil && !isStreamNotFound(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollEvery):
		}
	}
}

// ReadyStatus reports whether Ready found an existing stream or had to
// create one.
type ReadyStatus string

const (
	StreamExists  ReadyStatus = "stream-exists"
	CreatedStream ReadyStatus = "created-stream"
)

// ReadyState is the one-shot result of the client's ready procedure.
type ReadyState struct {
	Status ReadyStatus
	Spec   *StreamSpec
}

// runReady implements spec.md §4.2's ready(): try describe, then wait for
// active; if describe reports no stream, create one and wait. It runs at
// most once per Client (guarded by Client.readyOnce) and resolves
// c.readyResult/c.readyErr exactly once before closing c.readyCh.
func (c *Client) runReady() {
	defer close(c.readyCh)

	_, err := c.describeStreamSpec(c.ctx)
	switch {
	case err == nil:
		spec, waitErr := c.waitForActive(c.ctx, defaultWaitPollInterval)
		if waitErr != nil {
			c.readyErr = waitErr
			return
		}
		c.readyResult = &ReadyState{Status: StreamExists, Spec: spec}

	case isStreamNotFound(err):
		if createErr := c.createStream(c.ctx); createErr != nil {
			c.readyErr = fmt.Errorf("dynastream: cannot create stream (%w)", createErr)
			return
		}

		spec, waitErr := c.waitForActive(c.ctx, defaultWaitPollInterval)
		if waitErr != nil {
			c.readyErr = waitErr
			return
		}
		c.readyResult = &ReadyState{Status: CreatedStream, Spec: spec}

	default:
		c.readyErr = err
	}
}
