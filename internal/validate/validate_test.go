package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var stringList = Schema{
	Name:       "test-string-list",
	Definition: `{"type": "array", "items": {"type": "string"}, "minItems": 1}`,
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"valid", `["a", "b"]`, ""},
		{"not json", `["a"`, "invalid JSON"},
		{"wrong item type", `["a", 2]`, "schema validation failed"},
		{"empty", `[]`, "schema validation failed"},
		{"object", `{}`, "schema validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := JSON(stringList, []byte(tt.raw))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestJSONBadSchema(t *testing.T) {
	bad := Schema{Name: "test-bad", Definition: `{"type": `}
	assert.ErrorContains(t, JSON(bad, []byte(`1`)), "compile schema")
}
