/*
Package dynastream implements the core of a DynamoDB Streams consumer
client: it discovers the shards of a table's change stream, polls each
shard for records in parallel, periodically rediscovers newly created
shards, and multiplexes every per-shard sequence into a single
fan-out-capable sequence that one or more independent consumers iterate.

The package intentionally does not implement table or item CRUD, querying,
or any other part of the DynamoDB API. It owns its own signed-HTTP request
facade (facade.go) rather than delegating to the generated AWS service
clients, so that the retry, paging, and shard-multiplexing policy described
below are fully visible and testable against a scripted transport.

Getting a Stream

	client := dynastream.NewClient(
		"Orders",
		dynastream.RegionByName("us-east-1"),
		accessKeyID,
		secretAccessKey,
	)
	defer client.Close()

	if _, err := client.Ready(context.Background()); err != nil {
		log.Fatal(err)
	}

	consumer, err := client.Iterate(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for {
		record, ok := consumer.Next(context.Background())
		if !ok {
			break
		}
		// handle record
	}

Fan-out

Client.Iterate may be called more than once; each call returns an
independent Consumer that observes every record emitted from that point
forward. A slow consumer does not block the shared source or other
consumers — it drops its own oldest buffered records instead, reported by
Consumer.Dropped.

Shard Discovery

New shards (created when DynamoDB repartitions a table) are discovered on
a periodic tick and hot-added to the live poll set without disrupting
existing shard producers. Shards present when the client starts begin
reading from the configured ShardIteratorType (LATEST by default); shards
discovered later always start from TRIM_HORIZON so that no record is
missed between discovery ticks.
*/
package dynastream
