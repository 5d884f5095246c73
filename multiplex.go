package dynastream

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// mergeEvent is the internal sum type fed through the multiplexer's single
// inbound channel: a Record, a refresh tick, or a producer's exit
// notification. Only Record ever reaches a consumer.
type mergeEvent struct {
	record    *Record
	refresh   bool
	shardDone string // non-empty: the producer for this shard id exited
}

// multiplexer races one record-producer per live shard plus a refresh
// ticker into a single merge channel, hot-adding producers for shards
// discovered on a later tick without disturbing the ones already running.
//
// running and the rest of the bookkeeping below are main-loop-private:
// only the goroutine executing run touches them, which is what lets
// producers stay free of any synchronization around the live shard set.
type multiplexer struct {
	client  *Client
	mergeCh chan mergeEvent
	running map[string]bool
}

func newMultiplexer(c *Client) *multiplexer {
	return &multiplexer{
		client:  c,
		mergeCh: make(chan mergeEvent, mergeChannelBufferSize),
		running: map[string]bool{},
	}
}

// run seeds the initial shard set, starts one producer per shard plus the
// refresh ticker, and forwards decoded records onto out until ctx is
// canceled. out is closed on return.
func (mx *multiplexer) run(ctx context.Context, out chan<- *Record) {
	defer close(out)

	c := mx.client
	shards, err := c.shardSet.initial(ctx)
	if err != nil {
		c.reportFault(fmt.Errorf("dynastream: cannot discover shards (%w)", err))
		return
	}

	var wg sync.WaitGroup
	for _, s := range shards {
		mx.startProducer(ctx, &wg, s, c.config.ShardIteratorType)
	}

	tickerDone := make(chan struct{})
	go mx.tick(ctx, tickerDone)
	defer func() { <-tickerDone }()

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-mx.mergeCh:
			switch {
			case ev.shardDone != "":
				delete(mx.running, ev.shardDone)

			case ev.refresh:
				mx.handleRefresh(ctx, &wg)

			default:
				select {
				case out <- ev.record:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// tick emits a REFRESH sentinel onto the merge channel every
// ShardUpdatePeriod until ctx is canceled.
func (mx *multiplexer) tick(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(mx.client.config.ShardUpdatePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case mx.mergeCh <- mergeEvent{refresh: true}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleRefresh re-enumerates shards and starts a producer, from
// TRIM_HORIZON, for every live shard that does not currently have one
// running. This covers both genuinely new shards (per spec.md's "newly
// discovered" rule) and shards whose earlier producer ended because its
// iterator expired while the shard was still open — the Shard Set
// Manager's "newly discovered since last live snapshot" definition alone
// would miss the latter, since such a shard never left live.
func (mx *multiplexer) handleRefresh(ctx context.Context, wg *sync.WaitGroup) {
	c := mx.client

	if _, err := c.shardSet.refresh(ctx); err != nil {
		c.reportFault(fmt.Errorf("dynastream: cannot refresh shards (%w)", err))
		return
	}

	for _, s := range c.shardSet.snapshot() {
		if !mx.running[s.ShardID] {
			mx.startProducer(ctx, wg, s, TrimHorizon)
		}
	}
}

func (mx *multiplexer) startProducer(ctx context.Context, wg *sync.WaitGroup, shard ShardDescriptor, iterType ShardIteratorType) {
	mx.running[shard.ShardID] = true

	wg.Add(1)
	go func() {
		defer wg.Done()

		id := shard.ShardID
		defer func() {
			select {
			case mx.mergeCh <- mergeEvent{shardDone: id}:
			case <-ctx.Done():
			}
		}()

		mx.client.runShardProducer(ctx, shard, iterType, mx.mergeCh)
	}()
}
