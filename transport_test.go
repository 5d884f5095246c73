package dynastream

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// roundTripFunc adapts a function to http.RoundTripper, letting tests stub
// the AWS wire protocol without a live endpoint or DynamoDBLocal.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fakeHTTPClient(f roundTripFunc) *http.Client {
	return &http.Client{Transport: f}
}

func jsonBody(status int, v interface{}) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(b)),
		Header:     make(http.Header),
	}
}

func errorBody(status int, kind, message string) *http.Response {
	return jsonBody(status, map[string]string{
		"__type":  "com.amazonaws.dynamodb.v20120810#" + kind,
		"message": message,
	})
}

// actionRouter dispatches by X-Amz-Target suffix (the action name) so a
// test can stub several actions in one fake client.
type actionRouter struct {
	mu      sync.Mutex
	calls   map[string]int
	handler map[string]func(*http.Request) (*http.Response, error)
}

func newActionRouter() *actionRouter {
	return &actionRouter{
		calls:   map[string]int{},
		handler: map[string]func(*http.Request) (*http.Response, error){},
	}
}

func (r *actionRouter) on(action string, h func(*http.Request) (*http.Response, error)) *actionRouter {
	r.handler[action] = h
	return r
}

func (r *actionRouter) callCount(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[action]
}

func (r *actionRouter) client() *http.Client {
	return fakeHTTPClient(func(req *http.Request) (*http.Response, error) {
		target := req.Header.Get("X-Amz-Target")
		idx := bytes.LastIndexByte([]byte(target), '.')
		action := target
		if idx >= 0 {
			action = target[idx+1:]
		}

		r.mu.Lock()
		r.calls[action]++
		r.mu.Unlock()

		h, ok := r.handler[action]
		if !ok {
			return jsonBody(500, map[string]string{"message": "unstubbed action " + action}), nil
		}
		return h(req)
	})
}

// activeStreamDescribeTable stubs a DescribeTable response reporting an
// already-ACTIVE table with a stream configured, the shape Client.Ready
// needs to resolve immediately.
func activeStreamDescribeTable(req *http.Request) (*http.Response, error) {
	return jsonBody(200, map[string]interface{}{
		"Table": map[string]interface{}{
			"TableName":   "Orders",
			"TableStatus": "ACTIVE",
			"StreamSpecification": map[string]interface{}{
				"StreamEnabled":  true,
				"StreamViewType": "NEW_AND_OLD_IMAGES",
			},
			"LatestStreamArn": "arn:aws:dynamodb:test:stream/Orders",
		},
	}), nil
}

func testRegion() *Region {
	return &Region{
		Name:                    "test-region",
		DynamoDBEndpoint:        "localhost.invalid",
		DynamoDBStreamsEndpoint: "localhost.invalid",
	}
}
