package dynastream

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
)

// Wire request/response shapes for the six X-Amz-Target actions the core
// uses. Field names and casing match the DynamoDB/DynamoDBStreams JSON
// protocol exactly (including the DescribeStream shapes' PascalCase vs.
// GetRecords' record-level camelCase, an AWS API inconsistency carried
// over from Kinesis).

type listStreamsRequest struct {
	TableName               *string `json:"TableName"`
	Limit                   *int64  `json:"Limit,omitempty"`
	ExclusiveStartStreamArn *string `json:"ExclusiveStartStreamArn,omitempty"`
}

type wireStream struct {
	StreamArn   *string `json:"StreamArn"`
	StreamLabel *string `json:"StreamLabel"`
	TableName   *string `json:"TableName"`
}

type listStreamsResponse struct {
	Streams                []wireStream `json:"Streams"`
	LastEvaluatedStreamArn *string      `json:"LastEvaluatedStreamArn"`
}

type describeStreamRequest struct {
	StreamArn             *string `json:"StreamArn"`
	Limit                 *int64  `json:"Limit,omitempty"`
	ExclusiveStartShardId *string `json:"ExclusiveStartShardId,omitempty"`
}

type wireSequenceNumberRange struct {
	StartingSequenceNumber *string `json:"StartingSequenceNumber"`
	EndingSequenceNumber   *string `json:"EndingSequenceNumber"`
}

type wireShard struct {
	ShardId             *string                  `json:"ShardId"`
	ParentShardId       *string                  `json:"ParentShardId"`
	SequenceNumberRange *wireSequenceNumberRange `json:"SequenceNumberRange"`
}

type wireStreamDescription struct {
	StreamArn            *string     `json:"StreamArn"`
	StreamStatus         *string     `json:"StreamStatus"`
	StreamViewType       *string     `json:"StreamViewType"`
	TableName            *string     `json:"TableName"`
	Shards               []wireShard `json:"Shards"`
	LastEvaluatedShardId *string     `json:"LastEvaluatedShardId"`
}

type describeStreamResponse struct {
	StreamDescription wireStreamDescription `json:"StreamDescription"`
}

type getShardIteratorRequest struct {
	StreamArn         *string `json:"StreamArn"`
	ShardId           *string `json:"ShardId"`
	ShardIteratorType *string `json:"ShardIteratorType"`
	SequenceNumber    *string `json:"SequenceNumber,omitempty"`
}

type getShardIteratorResponse struct {
	ShardIterator *string `json:"ShardIterator"`
}

type getRecordsRequest struct {
	ShardIterator *string `json:"ShardIterator"`
	Limit         *int64  `json:"Limit,omitempty"`
}

type wireStreamRecord struct {
	ApproximateCreationDateTime *float64                   `json:"ApproximateCreationDateTime"`
	Keys                       map[string]*attributeValue `json:"Keys"`
	NewImage                   map[string]*attributeValue `json:"NewImage"`
	OldImage                   map[string]*attributeValue `json:"OldImage"`
	SequenceNumber             *string                     `json:"SequenceNumber"`
	SizeBytes                  *int64                      `json:"SizeBytes"`
	StreamViewType             *string                     `json:"StreamViewType"`
}

type wireRecord struct {
	EventID      *string          `json:"eventID"`
	EventName    *string          `json:"eventName"`
	EventVersion *string          `json:"eventVersion"`
	EventSource  *string          `json:"eventSource"`
	AWSRegion    *string          `json:"awsRegion"`
	Dynamodb     wireStreamRecord `json:"dynamodb"`
}

func (w wireRecord) toRecord() Record {
	var created time.Time
	if w.Dynamodb.ApproximateCreationDateTime != nil {
		sec := *w.Dynamodb.ApproximateCreationDateTime
		created = time.Unix(int64(sec), int64((sec-float64(int64(sec)))*1e9))
	}

	return Record{
		EventID:      aws.StringValue(w.EventID),
		EventName:    EventName(aws.StringValue(w.EventName)),
		EventVersion: aws.StringValue(w.EventVersion),
		EventSource:  aws.StringValue(w.EventSource),
		AWSRegion:    aws.StringValue(w.AWSRegion),
		Dynamodb: RecordPayload{
			ApproximateCreationTime: created,
			Keys:                    w.Dynamodb.Keys,
			OldImage:                w.Dynamodb.OldImage,
			NewImage:                w.Dynamodb.NewImage,
			SequenceNumber:          aws.StringValue(w.Dynamodb.SequenceNumber),
			SizeBytes:               aws.Int64Value(w.Dynamodb.SizeBytes),
			StreamViewType:          StreamViewType(aws.StringValue(w.Dynamodb.StreamViewType)),
		},
	}
}

type getRecordsResponse struct {
	Records           []wireRecord `json:"Records"`
	NextShardIterator *string      `json:"NextShardIterator"`
}

type wireStreamSpecification struct {
	StreamEnabled  *bool   `json:"StreamEnabled"`
	StreamViewType *string `json:"StreamViewType,omitempty"`
}

type describeTableRequest struct {
	TableName *string `json:"TableName"`
}

type wireTableDescription struct {
	TableName           *string                   `json:"TableName"`
	TableStatus         *string                   `json:"TableStatus"`
	StreamSpecification *wireStreamSpecification  `json:"StreamSpecification"`
	LatestStreamArn     *string                   `json:"LatestStreamArn"`
}

type describeTableResponse struct {
	Table wireTableDescription `json:"Table"`
}

type updateTableRequest struct {
	TableName           *string                  `json:"TableName"`
	StreamSpecification *wireStreamSpecification `json:"StreamSpecification"`
}

type updateTableResponse struct {
	TableDescription wireTableDescription `json:"TableDescription"`
}
