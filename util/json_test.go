package util

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm/dialects/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresJsonb(t *testing.T) {
	encoded, err := EncodeToPostgresJsonb(map[string]interface{}{"folder_id": "abc", "count": 2})
	require.NoError(t, err)

	decoded, err := DecodePostgresJsonb(encoded)
	require.NoError(t, err)
	assert.Equal(t, "abc", decoded["folder_id"])
	assert.Equal(t, float64(2), decoded["count"])

	_, err = DecodePostgresJsonb(nil)
	assert.Equal(t, ErrNilJsonb, err)

	decoded, err = DecodePostgresJsonb(&postgres.Jsonb{RawMessage: json.RawMessage("null")})
	require.NoError(t, err)
	assert.Empty(t, decoded)

	_, err = DecodePostgresJsonb(&postgres.Jsonb{RawMessage: json.RawMessage("[1]")})
	assert.Error(t, err)
}

func TestScope(t *testing.T) {
	c := &gin.Context{}
	assert.Equal(t, "", GetScopeByKeyAsString(c, "requestId"))

	SetScope(c, "requestId", "req-1")
	SetScope(c, "source", "ga4_traffic")
	assert.Equal(t, "req-1", GetScopeByKeyAsString(c, "requestId"))
	assert.Equal(t, "ga4_traffic", GetScopeByKey(c, "source"))
}
