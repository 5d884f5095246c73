package dynastream

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Client is a handle on one DynamoDB table's stream. Construct with
// NewClient, call Ready once before Iterate, and Close when done; all
// three and Iterate's returned Consumers are safe for concurrent use.
type Client struct {
	config Config
	facade *facade

	ctx    context.Context
	cancel context.CancelFunc

	readyOnce   sync.Once
	readyCh     chan struct{}
	readyResult *ReadyState
	readyErr    error

	shardSet *shardSetManager

	startOnce sync.Once
	publisher *publisher
	mx        *multiplexer
	mergeOut  chan *Record

	faultCh   chan error
	faultOnce sync.Once

	closeOnce sync.Once
}

// NewClient builds a Client bound to one table. Unless WithAutoReady(false)
// is passed, it immediately starts the ready procedure (describe or create
// the stream, then wait for ACTIVE) in the background; Iterate always
// awaits it before starting shard discovery, and Ready can be called
// directly to block on it early or to observe its result.
func NewClient(table string, region *Region, accessKeyID, secretAccessKey string, opts ...ClientOption) *Client {
	config := Config{
		Table:           table,
		Region:          region,
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		AutoReady:       true,
	}
	for _, opt := range opts {
		opt(&config)
	}
	config.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		config:    config,
		facade:    newFacade(config),
		ctx:       ctx,
		cancel:    cancel,
		readyCh:   make(chan struct{}),
		publisher: newPublisher(),
		faultCh:   make(chan error, 1),
	}
	c.shardSet = newShardSetManager(c)
	c.mx = newMultiplexer(c)

	if config.AutoReady {
		c.startReady()
	}

	return c
}

func (c *Client) logEntry() *logrus.Entry {
	return c.config.Logger.WithField("table", c.config.Table)
}

// startReady launches runReady exactly once, regardless of how many times
// or from how many goroutines it is invoked.
func (c *Client) startReady() {
	c.readyOnce.Do(func() {
		go c.runReady()
	})
}

// Ready blocks until the bound table's stream is ACTIVE, creating one via
// UpdateTable first if the table does not yet have one. It is idempotent:
// later calls observe the same result as the first.
func (c *Client) Ready(ctx context.Context) (*ReadyState, error) {
	c.startReady()

	select {
	case <-c.readyCh:
		return c.readyResult, c.readyErr
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// Describe returns a snapshot of the bound table's stream and its current
// shards, independent of Ready/Iterate state.
func (c *Client) Describe(ctx context.Context) (*StreamDescriptor, error) {
	spec, err := c.describeStreamSpec(ctx)
	if err != nil {
		return nil, err
	}

	shards, err := c.allShards(ctx)
	if err != nil {
		return nil, err
	}

	return &StreamDescriptor{
		StreamARN: spec.StreamARN,
		TableName: c.config.Table,
		ViewType:  spec.ViewType,
		Status:    spec.TableStatus,
		Shards:    shards,
	}, nil
}

// Iterate always waits for the stream to be ACTIVE before starting shard
// discovery and polling (once, regardless of how many times Iterate is
// called), then returns a new fan-out Consumer over the merged record
// stream.
func (c *Client) Iterate(ctx context.Context) (*Consumer, error) {
	if _, err := c.Ready(ctx); err != nil {
		return nil, err
	}

	c.startOnce.Do(func() {
		c.mergeOut = make(chan *Record, mergeChannelBufferSize)
		go c.mx.run(c.ctx, c.mergeOut)
		go c.publisher.run(c.ctx, c.mergeOut)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	default:
	}

	return c.publisher.subscribe(), nil
}

// Fault reports asynchronous, non-shard-fatal errors encountered by the
// multiplexer's background goroutines (shard discovery failures, a
// producer ending for a reason other than shard close or iterator
// expiry). Only the first fault is ever delivered; read it, or don't —
// either way iteration keeps going for shards that are still healthy.
func (c *Client) Fault() <-chan error {
	return c.faultCh
}

func (c *Client) reportFault(err error) {
	c.logEntry().WithError(err).Warn("dynastream fault")
	c.faultOnce.Do(func() {
		c.faultCh <- err
	})
}

// Close stops all shard producers, the refresh ticker, and the publisher,
// and unblocks every outstanding Consumer.Next and Ready call. Safe to
// call more than once and from multiple goroutines.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
	})
	return nil
}
