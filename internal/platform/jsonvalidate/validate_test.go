package jsonvalidate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["description", "state"],
  "properties": {
    "id": { "type": "string" },
    "description": { "type": "string" },
    "state": { "type": "string" }
  }
}`

const oneOfSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "oneOf": [
    { "type": "object", "required": ["a"], "properties": { "a": { "type": "string" } } },
    { "type": "object", "required": ["b"], "properties": { "b": { "type": "string" } } }
  ]
}`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_OK(t *testing.T) {
	path := writeSchema(t, orderSchema)
	res := Validate(path, []byte(`{"description":"d","state":"Scheduled"}`))

	assert.True(t, res.Success)
	assert.Empty(t, res.Message)
}

func TestValidate_MissingMandatoryAttribute(t *testing.T) {
	path := writeSchema(t, orderSchema)
	res := Validate(path, []byte(`{"description":"d"}`))

	require.False(t, res.Success)
	assert.Equal(t, MsgMandatoryAttrNG+"state", res.Message)
}

func TestValidate_WrongType(t *testing.T) {
	path := writeSchema(t, orderSchema)
	res := Validate(path, []byte(`{"description":"d","state":42}`))

	require.False(t, res.Success)
	assert.Contains(t, res.Message, MsgMandatoryTypeNG)
	assert.Contains(t, res.Message, "string")
}

func TestValidate_MissingAttributeWinsOverWrongType(t *testing.T) {
	path := writeSchema(t, orderSchema)
	res := Validate(path, []byte(`{"description":7}`))

	require.False(t, res.Success)
	assert.Equal(t, MsgMandatoryAttrNG+"state", res.Message,
		"missing required attributes are reported before type violations")
}

func TestValidate_UnwantedAttribute(t *testing.T) {
	path := writeSchema(t, orderSchema)
	res := Validate(path, []byte(`{"description":"d","state":"s","extra":1}`))

	require.False(t, res.Success)
	assert.Equal(t, MsgUnwantedAttrNG+"extra)", res.Message)
}

func TestValidate_OneOf(t *testing.T) {
	path := writeSchema(t, oneOfSchema)
	res := Validate(path, []byte(`{"c":"neither"}`))

	require.False(t, res.Success)
	assert.Contains(t, res.Message, MsgInstanceFailedNG)
}

func TestValidate_MalformedDocument(t *testing.T) {
	path := writeSchema(t, orderSchema)
	res := Validate(path, []byte(`{"description": "unterminated`))

	require.False(t, res.Success)
	assert.Equal(t, MsgJSONFormatNG, res.Message)
}

func TestValidate_MissingSchemaFile(t *testing.T) {
	res := Validate(filepath.Join(t.TempDir(), "nope.json"), []byte(`{}`))

	require.False(t, res.Success)
	assert.Equal(t, MsgJSONFormatNG, res.Message)
}

func TestSchemaPath(t *testing.T) {
	got := SchemaPath("/srv/schemas", SchemaOrderDataPost)
	assert.Equal(t, filepath.Join("/srv/schemas", "jsonSchema", "order_data_post.json"), got)
}
