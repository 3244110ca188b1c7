package adr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_StringRoundTrip(t *testing.T) {
	for _, s := range Statuses {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err, "status %s", s)
		assert.Equal(t, s, parsed)
	}
}

func TestParseStatus_CaseInsensitive(t *testing.T) {
	s, err := ParseStatus("  proposed ")
	require.NoError(t, err)
	assert.Equal(t, StatusProposed, s)
}

func TestParseStatus_RejectedAlias(t *testing.T) {
	s, err := ParseStatus("REJECTED")
	require.NoError(t, err)
	assert.Equal(t, StatusRefused, s)
}

func TestParseStatus_Unknown(t *testing.T) {
	_, err := ParseStatus("ACCEPTED")
	assert.Error(t, err)
}

func TestStatus_InvalidValue(t *testing.T) {
	s := Status(42)
	assert.False(t, s.Valid())
	assert.Equal(t, "Status(42)", s.String())

	_, err := s.MarshalText()
	assert.Error(t, err)
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		S Status `json:"s"`
	}{StatusApproved})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"APPROVED"}`, string(data))

	var out struct {
		S Status `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"superseded"}`), &out))
	assert.Equal(t, StatusSuperseded, out.S)
}
