package dynastream

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamsOfTablePaginates(t *testing.T) {
	calls := 0
	router := newActionRouter().on("ListStreams", func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return jsonBody(200, map[string]interface{}{
				"Streams": []map[string]interface{}{
					{"StreamArn": "arn:1", "TableName": "Orders"},
				},
				"LastEvaluatedStreamArn": "arn:1",
			}), nil
		}
		return jsonBody(200, map[string]interface{}{
			"Streams": []map[string]interface{}{
				{"StreamArn": "arn:2", "TableName": "Orders"},
			},
		}), nil
	})

	c := newTestClient(t, router)
	arns, err := c.streamsOfTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"arn:1", "arn:2"}, arns)
	assert.Equal(t, 2, calls)
}

func TestShardsOfStreamPaginatesAndParsesRanges(t *testing.T) {
	calls := 0
	router := newActionRouter().
		on("DescribeStream", func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return jsonBody(200, map[string]interface{}{
					"StreamDescription": map[string]interface{}{
						"StreamArn": "arn:1",
						"Shards": []map[string]interface{}{
							{
								"ShardId": "shard-1",
								"SequenceNumberRange": map[string]interface{}{
									"StartingSequenceNumber": "100",
									"EndingSequenceNumber":   "200",
								},
							},
						},
						"LastEvaluatedShardId": "shard-1",
					},
				}), nil
			}
			return jsonBody(200, map[string]interface{}{
				"StreamDescription": map[string]interface{}{
					"StreamArn": "arn:1",
					"Shards": []map[string]interface{}{
						{
							"ShardId":       "shard-2",
							"ParentShardId": "shard-1",
							"SequenceNumberRange": map[string]interface{}{
								"StartingSequenceNumber": "201",
							},
						},
					},
				},
			}), nil
		})

	c := newTestClient(t, router, WithGetShardsInterval(0))
	shards, err := c.shardsOfStream(context.Background(), "arn:1")
	require.NoError(t, err)
	require.Len(t, shards, 2)

	assert.Equal(t, "shard-1", shards[0].ShardID)
	assert.True(t, shards[0].closed())
	assert.Equal(t, "shard-2", shards[1].ShardID)
	assert.Equal(t, "shard-1", shards[1].ParentShardID)
	assert.False(t, shards[1].closed())
}

func TestGetShardIteratorReturnsToken(t *testing.T) {
	router := newActionRouter().on("GetShardIterator", func(req *http.Request) (*http.Response, error) {
		return jsonBody(200, map[string]string{"ShardIterator": "iter-xyz"}), nil
	})

	c := newTestClient(t, router, WithGetShardsInterval(0))
	shard := ShardDescriptor{ShardID: "shard-1", StreamARN: "arn:1"}
	iter, err := c.getShardIterator(context.Background(), shard, TrimHorizon)
	require.NoError(t, err)
	assert.Equal(t, "iter-xyz", iter)
}
