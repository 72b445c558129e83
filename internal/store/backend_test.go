package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	doc := json.RawMessage(`{"userId": "u1", "active": true, "stock": 4, "nested": {"a": 1}}`)

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"string equal", Filter{"userId": "u1"}, true},
		{"string differs", Filter{"userId": "u2"}, false},
		{"bool and string", Filter{"userId": "u1", "active": true}, true},
		{"bool differs", Filter{"active": false}, false},
		{"number", Filter{"stock": 4}, true},
		{"missing field", Filter{"companyId": "c1"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Match(doc, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatchRejectsInvalidDocument(t *testing.T) {
	_, err := Match(json.RawMessage(`not json`), Filter{"a": "b"})
	assert.Error(t, err)
}
