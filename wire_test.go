package dynastream

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/assert"
)

func TestWireRecordToRecordConvertsEpochTime(t *testing.T) {
	sec := 1700000000.5
	w := wireRecord{
		EventID:      aws.String("ev-1"),
		EventName:    aws.String("INSERT"),
		EventVersion: aws.String("1.1"),
		EventSource:  aws.String("aws:dynamodb"),
		AWSRegion:    aws.String("us-east-1"),
		Dynamodb: wireStreamRecord{
			ApproximateCreationDateTime: &sec,
			SequenceNumber:              aws.String("123"),
			SizeBytes:                   aws.Int64(42),
			StreamViewType:              aws.String("NEW_AND_OLD_IMAGES"),
			Keys: map[string]*attributeValue{
				"Id": {S: aws.String("k1")},
			},
		},
	}

	r := w.toRecord()
	assert.Equal(t, "ev-1", r.EventID)
	assert.Equal(t, InsertEvent, r.EventName)
	assert.Equal(t, "123", r.Dynamodb.SequenceNumber)
	assert.Equal(t, int64(42), r.Dynamodb.SizeBytes)
	assert.Equal(t, NewAndOldImages, r.Dynamodb.StreamViewType)
	assert.Equal(t, int64(1700000000), r.Dynamodb.ApproximateCreationTime.Unix())

	keys, ok := rawAttributeMap(r.Dynamodb.Keys)
	assert.True(t, ok)
	assert.Equal(t, "k1", aws.StringValue(keys["Id"].S))
}

func TestWireRecordToRecordHandlesMissingCreationTime(t *testing.T) {
	w := wireRecord{Dynamodb: wireStreamRecord{}}
	r := w.toRecord()
	assert.True(t, r.Dynamodb.ApproximateCreationTime.IsZero())
}
