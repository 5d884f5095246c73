package dynastream

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAttributeMap(t *testing.T) {
	raw := map[string]*attributeValue{
		"Id":     {S: aws.String("abc")},
		"Amount": {N: aws.String("42")},
		"Active": {BOOL: aws.Bool(true)},
		"Tags":   {SS: aws.StringSlice([]string{"a", "b"})},
	}

	out, err := decodeAttributeMap(raw)
	require.NoError(t, err)

	assert.Equal(t, "abc", out["Id"])
	assert.Equal(t, float64(42), out["Amount"])
	assert.Equal(t, true, out["Active"])
	assert.ElementsMatch(t, []string{"a", "b"}, out["Tags"])
}

func TestDecodeAttributeMapNil(t *testing.T) {
	out, err := decodeAttributeMap(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestTranslateRecordConvertsRawMapsToPlainJSON(t *testing.T) {
	r := Record{
		Dynamodb: RecordPayload{
			Keys: map[string]*attributeValue{
				"Id": {S: aws.String("k1")},
			},
			NewImage: map[string]*attributeValue{
				"Id":    {S: aws.String("k1")},
				"Count": {N: aws.String("7")},
			},
		},
	}

	require.NoError(t, translateRecord(&r))

	keys, ok := r.Dynamodb.Keys.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "k1", keys["Id"])

	newImage, ok := r.Dynamodb.NewImage.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), newImage["Count"])

	assert.Nil(t, r.Dynamodb.OldImage)
}

func TestTranslateRecordLeavesAlreadyTranslatedFieldsAlone(t *testing.T) {
	r := Record{
		Dynamodb: RecordPayload{
			Keys: map[string]interface{}{"Id": "k1"},
		},
	}

	require.NoError(t, translateRecord(&r))
	assert.Equal(t, map[string]interface{}{"Id": "k1"}, r.Dynamodb.Keys)
}
