package dynastream

import (
	"context"
	"sync"
	"sync/atomic"
)

// publisher fans a single record stream out to any number of subscribers.
// A slow subscriber never blocks the others or the upstream producer: its
// channel is bounded, and once full the oldest buffered record is dropped
// to make room for the new one.
type publisher struct {
	mu   sync.Mutex
	subs map[*Consumer]struct{}
}

func newPublisher() *publisher {
	return &publisher{subs: map[*Consumer]struct{}{}}
}

func (p *publisher) subscribe() *Consumer {
	c := &Consumer{
		ch:   make(chan *Record, consumerChannelBufferSize),
		done: make(chan struct{}),
	}

	p.mu.Lock()
	p.subs[c] = struct{}{}
	p.mu.Unlock()

	return c
}

func (p *publisher) unsubscribe(c *Consumer) {
	p.mu.Lock()
	delete(p.subs, c)
	p.mu.Unlock()
}

// run reads in until it closes (the multiplexer stopped) or ctx is
// canceled, broadcasting every record and then closing every subscriber.
func (p *publisher) run(ctx context.Context, in <-chan *Record) {
	defer p.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-in:
			if !ok {
				return
			}
			p.broadcast(r)
		}
	}
}

// broadcast pushes r to every current subscriber, dropping the oldest
// buffered record for any subscriber whose channel is already full.
func (p *publisher) broadcast(r *Record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for c := range p.subs {
		for {
			select {
			case c.ch <- r:
			default:
				select {
				case <-c.ch:
					atomic.AddInt64(&c.dropped, 1)
				default:
				}
				continue
			}
			break
		}
	}
}

func (p *publisher) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for c := range p.subs {
		close(c.done)
	}
}

// Consumer is one fan-out subscriber returned by Client.Iterate. Each
// Consumer advances independently of every other one obtained from the
// same Client.
type Consumer struct {
	ch      chan *Record
	done    chan struct{}
	dropped int64
}

// Next blocks until a record is available, the source is closed, or ctx is
// canceled. The second return value is false once the source has ended.
func (c *Consumer) Next(ctx context.Context) (*Record, bool) {
	select {
	case r := <-c.ch:
		return r, true
	default:
	}

	select {
	case r := <-c.ch:
		return r, true
	case <-c.done:
		select {
		case r := <-c.ch:
			return r, true
		default:
			return nil, false
		}
	case <-ctx.Done():
		return nil, false
	}
}

// Dropped reports how many records this consumer lost to back-pressure
// because it fell too far behind.
func (c *Consumer) Dropped() int64 {
	return atomic.LoadInt64(&c.dropped)
}
