package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	expiry := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	original := &Session{
		Identity: Identity{ID: "U1", Name: "Admin", Email: "admin@x.com", Role: RoleAdmin, Department: "it"},
		Token:    "T1",
		Expiry:   expiry,
	}

	data, err := encodeRecord(original)
	require.NoError(t, err)

	decoded, err := decodeRecord(data)
	require.NoError(t, err)
	require.Equal(t, original.Identity, decoded.Identity)
	require.Equal(t, original.Token, decoded.Token)
	require.Equal(t, expiry.UnixMilli(), decoded.Expiry.UnixMilli())
}

func TestRecordWireLayout(t *testing.T) {
	data, err := encodeRecord(&Session{
		Identity: Identity{ID: "U1", Role: RoleUser},
		Token:    "T1",
		Expiry:   time.UnixMilli(1_700_000_000_000),
	})
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Contains(t, wire, "user")
	require.Contains(t, wire, "token")
	require.Contains(t, wire, "tokenExpiry")
}

func TestDecodeRecordRejectsGarbage(t *testing.T) {
	_, err := decodeRecord([]byte(`not json`))
	require.Error(t, err)

	_, err = decodeRecord([]byte(`{"user":{},"tokenExpiry":0}`))
	require.Error(t, err)
}
