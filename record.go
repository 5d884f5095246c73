package dynastream

import (
	"time"

	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// attributeValue is DynamoDB's tagged-variant wire attribute value: one of
// S, N, B, BOOL, NULL, L, M, SS, NS, BS is populated. Its exported field
// names equal the wire keys, so it decodes directly with encoding/json.
type attributeValue = dynamodb.AttributeValue

// EventName tells whether an item was added, updated, or deleted.
type EventName string

const (
	InsertEvent EventName = "INSERT"
	ModifyEvent EventName = "MODIFY"
	RemoveEvent EventName = "REMOVE"
)

// StreamViewType controls which item data a stream record carries.
type StreamViewType string

const (
	KeysOnly        StreamViewType = "KEYS_ONLY"
	NewImage        StreamViewType = "NEW_IMAGE"
	OldImage        StreamViewType = "OLD_IMAGE"
	NewAndOldImages StreamViewType = "NEW_AND_OLD_IMAGES"
)

// ShardIteratorType selects the read position a shard iterator starts at.
type ShardIteratorType string

const (
	TrimHorizon         ShardIteratorType = "TRIM_HORIZON"
	Latest              ShardIteratorType = "LATEST"
	AtSequenceNumber    ShardIteratorType = "AT_SEQUENCE_NUMBER"
	AfterSequenceNumber ShardIteratorType = "AFTER_SEQUENCE_NUMBER"
)

// TableStatus mirrors DynamoDB's TableStatus enum.
type TableStatus string

const (
	TableStatusCreating                          TableStatus = "CREATING"
	TableStatusUpdating                          TableStatus = "UPDATING"
	TableStatusDeleting                          TableStatus = "DELETING"
	TableStatusActive                            TableStatus = "ACTIVE"
	TableStatusInaccessibleEncryptionCredentials TableStatus = "INACCESSIBLE_ENCRYPTION_CREDENTIALS"
	TableStatusArchiving                         TableStatus = "ARCHIVING"
	TableStatusArchived                          TableStatus = "ARCHIVED"
)

// StreamSpec is a snapshot of a table's stream configuration, re-fetched
// on demand and never mutated in place.
type StreamSpec struct {
	Enabled     bool
	ViewType    StreamViewType
	TableStatus TableStatus
	StreamARN   string
}

// SequenceRange is the range of sequence numbers a shard holds. End is
// empty for an open shard.
type SequenceRange struct {
	Start string
	End   string
}

// ShardDescriptor identifies one shard of one stream. Identity is the pair
// (StreamARN, ShardID). A shard is closed once SequenceRange.End is
// populated.
type ShardDescriptor struct {
	ShardID       string
	StreamARN     string
	ParentShardID string
	SequenceRange SequenceRange
}

func (s ShardDescriptor) closed() bool {
	return s.SequenceRange.End != ""
}

// StreamDescriptor is a snapshot of one stream and its current shards.
type StreamDescriptor struct {
	StreamARN string
	TableName string
	ViewType  StreamViewType
	Status    TableStatus
	Shards    []ShardDescriptor
}

// RecordPayload is the "dynamodb" portion of a stream Record. Keys,
// OldImage, and NewImage hold map[string]*dynamodb.AttributeValue (the
// typed DynamoDB-JSON wire form) unless the client is configured with
// JSONMode, in which case they hold map[string]interface{} (plain
// JSON-compatible values), per the codec in codec.go. This interface{}
// typing is the tagged-variant the two representations share.
type RecordPayload struct {
	ApproximateCreationTime time.Time
	Keys                    interface{}
	OldImage                interface{}
	NewImage                interface{}
	SequenceNumber          string
	SizeBytes               int64
	StreamViewType          StreamViewType
}

// Record is one immutable change-stream record, augmented with Table and
// ShardID before it reaches a consumer.
type Record struct {
	EventID      string
	EventName    EventName
	EventVersion string
	EventSource  string
	AWSRegion    string
	Dynamodb     RecordPayload

	Table   string
	ShardID string
}

// rawAttributeMap is the typed accessor used internally for Keys/OldImage/
// NewImage (before JSONMode translation, they always hold this concrete
// type).
func rawAttributeMap(v interface{}) (map[string]*attributeValue, bool) {
	m, ok := v.(map[string]*attributeValue)
	return m, ok
}
