package dynastream

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Region is where DynamoDB and DynamoDB Streams endpoints are located,
// mirroring the teacher library's Region registry.
type Region struct {
	Name string

	DynamoDBEndpoint        string
	DynamoDBStreamsEndpoint string
}

// RegionByName builds the standard AWS endpoints for a region name, eg.
// "us-east-1".
func RegionByName(name string) *Region {
	return &Region{
		Name:                    name,
		DynamoDBEndpoint:        fmt.Sprintf("dynamodb.%s.amazonaws.com", name),
		DynamoDBStreamsEndpoint: fmt.Sprintf("streams.dynamodb.%s.amazonaws.com", name),
	}
}

// Config holds everything needed to construct a Client. Table, Region, and
// credentials are required; everything else defaults per spec.md §6.
type Config struct {
	Table  string
	Region *Region

	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	StreamViewType    StreamViewType
	ShardIteratorType ShardIteratorType

	GetRecordsLimit    int
	GetRecordsInterval time.Duration
	GetShardsInterval  time.Duration
	ShardUpdatePeriod  time.Duration
	ListStreamsLimit   int

	// AutoReady controls whether NewClient proactively starts the ready
	// procedure in the background (default true). It never controls
	// whether Iterate waits for ready — Iterate always does.
	AutoReady bool
	JSONMode  bool

	Logger     *logrus.Logger
	HTTPClient *http.Client
}

// ClientOption configures an optional Config field. Pass to NewClient.
type ClientOption func(*Config)

func WithStreamViewType(v StreamViewType) ClientOption {
	return func(c *Config) { c.StreamViewType = v }
}

func WithShardIteratorType(v ShardIteratorType) ClientOption {
	return func(c *Config) { c.ShardIteratorType = v }
}

func WithGetRecordsLimit(n int) ClientOption {
	return func(c *Config) { c.GetRecordsLimit = n }
}

func WithGetRecordsInterval(d time.Duration) ClientOption {
	return func(c *Config) { c.GetRecordsInterval = d }
}

func WithGetShardsInterval(d time.Duration) ClientOption {
	return func(c *Config) { c.GetShardsInterval = d }
}

func WithShardUpdatePeriod(d time.Duration) ClientOption {
	return func(c *Config) { c.ShardUpdatePeriod = d }
}

func WithListStreamsLimit(n int) ClientOption {
	return func(c *Config) { c.ListStreamsLimit = n }
}

// WithAutoReady controls whether NewClient proactively starts the ready
// procedure in the background (default true). Pass false to defer it
// until the first explicit Ready or Iterate call.
func WithAutoReady(b bool) ClientOption {
	return func(c *Config) { c.AutoReady = b }
}

func WithJSONMode(b bool) ClientOption {
	return func(c *Config) { c.JSONMode = b }
}

func WithLogger(l *logrus.Logger) ClientOption {
	return func(c *Config) { c.Logger = l }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Config) { c.HTTPClient = hc }
}

func (c *Config) setDefaults() {
	if c.StreamViewType == "" {
		c.StreamViewType = NewAndOldImages
	}
	if c.ShardIteratorType == "" {
		c.ShardIteratorType = Latest
	}
	if c.GetRecordsLimit == 0 {
		c.GetRecordsLimit = 1000
	}
	if c.GetRecordsInterval == 0 {
		c.GetRecordsInterval = time.Second
	}
	if c.GetShardsInterval == 0 {
		c.GetShardsInterval = time.Second
	}
	if c.ShardUpdatePeriod == 0 {
		c.ShardUpdatePeriod = 15 * time.Second
	}
	if c.ListStreamsLimit == 0 {
		c.ListStreamsLimit = 100
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
}

const (
	mergeChannelBufferSize    = 64
	consumerChannelBufferSize = 256
)
