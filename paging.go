package dynastream

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
)

// streamsOfTable pages ListStreams via LastEvaluatedStreamArn and returns
// every stream arn associated with the bound table. Finite: stops once a
// page carries no continuation token.
func (c *Client) streamsOfTable(ctx context.Context) ([]string, error) {
	var arns []string
	var exclusiveStart *string

	for {
		req := listStreamsRequest{
			TableName:               aws.String(c.config.Table),
			Limit:                   aws.Int64(int64(c.config.ListStreamsLimit)),
			ExclusiveStartStreamArn: exclusiveStart,
		}

		var resp listStreamsResponse
		err := withRetry(ctx, c.logEntry(), func() error {
			return c.facade.doAction(ctx, serviceDynamoDBStreams, "ListStreams", req, &resp)
		})
		if err != nil {
			return nil, fmt.Errorf("dynastream: cannot list streams for table %q (%w)", c.config.Table, err)
		}

		for _, s := range resp.Streams {
			arns = append(arns, aws.StringValue(s.StreamArn))
		}

		if resp.LastEvaluatedStreamArn == nil {
			return arns, nil
		}
		exclusiveStart = resp.LastEvaluatedStreamArn
	}
}

// shardsOfStream pages DescribeStream via LastEvaluatedShardId, observing
// a quiet delay between pages, and returns every shard of the given
// stream. Finite: stops once a page carries no continuation token.
func (c *Client) shardsOfStream(ctx context.Context, streamArn string) ([]ShardDescriptor, error) {
	var shards []ShardDescriptor
	var exclusiveStart *string
	first := true

	for {
		if !first {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.GetShardsInterval):
			}
		}
		first = false

		req := describeStreamRequest{
			StreamArn:             aws.String(streamArn),
			Limit:                 aws.Int64(100),
			ExclusiveStartShardId: exclusiveStart,
		}

		var resp describeStreamResponse
		err := withRetry(ctx, c.logEntry(), func() error {
			return c.facade.doAction(ctx, serviceDynamoDBStreams, "DescribeStream", req, &resp)
		})
		if err != nil {
			return nil, fmt.Errorf("dynastream: cannot describe stream %s (%w)", streamArn, err)
		}

		desc := resp.StreamDescription
		for _, s := range desc.Shards {
			shard := ShardDescriptor{
				ShardID:       aws.StringValue(s.ShardId),
				StreamARN:     streamArn,
				ParentShardID: aws.StringValue(s.ParentShardId),
			}
			if s.SequenceNumberRange != nil {
				shard.SequenceRange = SequenceRange{
					Start: aws.StringValue(s.SequenceNumberRange.StartingSequenceNumber),
					End:   aws.StringValue(s.SequenceNumberRange.EndingSequenceNumber),
				}
			}
			shards = append(shards, shard)
		}

		if desc.LastEvaluatedShardId == nil {
			return shards, nil
		}
		exclusiveStart = desc.LastEvaluatedShardId
	}
}

// allShards flattens shardsOfStream across every stream of the bound
// table, the operation the Shard Set Manager uses for both its initial
// seed and its periodic refresh.
func (c *Client) allShards(ctx context.Context) ([]ShardDescriptor, error) {
	arns, err := c.streamsOfTable(ctx)
	if err != nil {
		return nil, err
	}

	var shards []ShardDescriptor
	for _, arn := range arns {
		s, err := c.shardsOfStream(ctx, arn)
		if err != nil {
			return nil, err
		}
		shards = append(shards, s...)
	}

	return shards, nil
}

// getShardIterator obtains a shard iterator token for the given
// ShardIteratorType. AT_SEQUENCE_NUMBER/AFTER_SEQUENCE_NUMBER resumption
// from a specific sequence number is not implemented: every producer in
// this package starts from TRIM_HORIZON or LATEST.
func (c *Client) getShardIterator(ctx context.Context, shard ShardDescriptor, iterType ShardIteratorType) (string, error) {
	req := getShardIteratorRequest{
		StreamArn:         aws.String(shard.StreamARN),
		ShardId:           aws.String(shard.ShardID),
		ShardIteratorType: aws.String(string(iterType)),
	}

	var resp getShardIteratorResponse
	err := withRetry(ctx, c.logEntry(), func() error {
		return c.facade.doAction(ctx, serviceDynamoDBStreams, "GetShardIterator", req, &resp)
	})
	if err != nil {
		return "", err
	}

	return aws.StringValue(resp.ShardIterator), nil
}

// runShardProducer polls one shard for records, from iterator creation
// until the shard closes, its iterator expires, the context is canceled,
// or a non-retryable error occurs. Every record it decodes is sent on out;
// it never touches the Shard Set Manager's live set.
func (c *Client) runShardProducer(ctx context.Context, shard ShardDescriptor, iterType ShardIteratorType, out chan<- mergeEvent) {
	log := c.logEntry().WithField("shard", shard.ShardID)
	log.Debug("starting shard producer")

	iterator, err := c.getShardIterator(ctx, shard, iterType)
	if err != nil {
		if ctx.Err() == nil {
			c.reportFault(fmt.Errorf("dynastream: cannot start shard %s (%w)", shard.ShardID, err))
		}
		return
	}

	for {
		if iterator == "" {
			log.Debug("shard closed")
			return
		}

		var resp getRecordsResponse
		err := withRetry(ctx, log, func() error {
			return c.facade.doAction(ctx, serviceDynamoDBStreams, "GetRecords", getRecordsRequest{
				ShardIterator: aws.String(iterator),
				Limit:         aws.Int64(int64(c.config.GetRecordsLimit)),
			}, &resp)
		})

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if isIteratorExpired(err) {
				log.Debug("shard iterator expired, ending producer")
				return
			}
			c.reportFault(fmt.Errorf("dynastream: cannot get records for shard %s (%w)", shard.ShardID, err))
			return
		}

		for _, wr := range resp.Records {
			r := wr.toRecord()
			r.Table = c.config.Table
			r.ShardID = shard.ShardID

			if c.config.JSONMode {
				if err := translateRecord(&r); err != nil {
					c.reportFault(fmt.Errorf("dynastream: cannot translate record on shard %s (%w)", shard.ShardID, err))
					continue
				}
			}

			select {
			case out <- mergeEvent{record: &r}:
			case <-ctx.Done():
				return
			}
		}

		if resp.NextShardIterator == nil {
			return
		}
		iterator = *resp.NextShardIterator

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.config.GetRecordsInterval):
		}
	}
}
