package dynastream

import (
	"fmt"

	dbattribute "github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
)

// decodeAttributeMap translates a DynamoDB-JSON typed attribute map into
// plain JSON-compatible Go values, reusing aws-sdk-go's attribute codec
// rather than hand-rolling the S/N/B/BOOL/NULL/L/M duck-typing.
func decodeAttributeMap(raw map[string]*attributeValue) (map[string]interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	var out map[string]interface{}
	if err := dbattribute.UnmarshalMap(raw, &out); err != nil {
		return nil, fmt.Errorf("dynastream: cannot decode attribute map (%w)", err)
	}
	return out, nil
}

// translateRecord replaces r's raw attribute maps with their plain-JSON
// equivalents in place. Called once per record when the client is
// configured with JSONMode.
func translateRecord(r *Record) error {
	for _, field := range []*interface{}{
		&r.Dynamodb.Keys,
		&r.Dynamodb.OldImage,
		&r.Dynamodb.NewImage,
	} {
		raw, ok := rawAttributeMap(*field)
		if !ok {
			continue
		}

		plain, err := decodeAttributeMap(raw)
		if err != nil {
			return err
		}
		*field = plain
	}

	return nil
}
