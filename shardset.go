package dynastream

import "context"

// shardSetManager holds the live set of shards being polled. It is
// exclusively owned and mutated by the multiplexer's main loop — producers
// never read or write it.
type shardSetManager struct {
	client *Client
	live   map[string]ShardDescriptor
}

func newShardSetManager(c *Client) *shardSetManager {
	return &shardSetManager{
		client: c,
		live:   map[string]ShardDescriptor{},
	}
}

// initial flattens shardsOfStream across every streamsOfTable result and
// seeds live with the outcome.
func (m *shardSetManager) initial(ctx context.Context) ([]ShardDescriptor, error) {
	shards, err := m.client.allShards(ctx)
	if err != nil {
		return nil, err
	}

	m.live = make(map[string]ShardDescriptor, len(shards))
	for _, s := range shards {
		m.live[s.ShardID] = s
	}

	return shards, nil
}

// refresh re-enumerates every shard of every stream, returns those not
// present in the previous live snapshot, and replaces live with the fresh
// snapshot. This is an assignment, not a union: shards that disappeared
// drop out of live, though their producers are left running until they
// naturally hit shard end.
func (m *shardSetManager) refresh(ctx context.Context) ([]ShardDescriptor, error) {
	shards, err := m.client.allShards(ctx)
	if err != nil {
		return nil, err
	}

	next := make(map[string]ShardDescriptor, len(shards))
	var fresh []ShardDescriptor
	for _, s := range shards {
		next[s.ShardID] = s
		if _, ok := m.live[s.ShardID]; !ok {
			fresh = append(fresh, s)
		}
	}

	m.live = next
	return fresh, nil
}

// snapshot returns every shard currently believed live, in no particular
// order.
func (m *shardSetManager) snapshot() []ShardDescriptor {
	shards := make([]ShardDescriptor, 0, len(m.live))
	for _, s := range m.live {
		shards = append(shards, s)
	}
	return shards
}

func (m *shardSetManager) size() int {
	return len(m.live)
}
