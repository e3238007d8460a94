package synctypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferStatusStringAndTerminal(t *testing.T) {
	assert.Equal(t, "Pending", EStatus.Pending().String())
	assert.Equal(t, "Running", EStatus.Running().String())
	assert.False(t, EStatus.Running().IsTerminal())
	assert.True(t, EStatus.Completed().IsTerminal())
	assert.True(t, EStatus.Failed().IsTerminal())
	assert.True(t, EStatus.Cancelled().IsTerminal())
}

func TestTransferStatusJSONRoundTrip(t *testing.T) {
	s := EStatus.Paused()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"Paused"`, string(data))

	var out TransferStatus
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, EStatus.Paused(), out)
}

func TestTransferStatusUnmarshalInvalid(t *testing.T) {
	var out TransferStatus
	err := json.Unmarshal([]byte(`"NotAStatus"`), &out)
	assert.Error(t, err)
}

func TestConflictResolutionJSONRoundTrip(t *testing.T) {
	c := EConflict.Rename()
	data, err := json.Marshal(c)
	require.NoError(t, err)

	var out ConflictResolution
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, c, out)
}

func TestDeltaAndModeAndDecisionStrings(t *testing.T) {
	assert.Equal(t, "Modified", EDelta.Modified().String())
	assert.Equal(t, "Move", EMode.Move().String())
	assert.Equal(t, "KeepBoth", EDecision.KeepBoth().String())
}
