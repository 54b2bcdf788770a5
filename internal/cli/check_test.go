package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Consistent(t *testing.T) {
	dbPath := seedFixture(t, consistentDeck)
	cmd := NewCheckCommand(newTestRootOptions("text"))

	out, err := execute(cmd, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "mature: review log 2, cards 2")
	assert.Contains(t, out, "known: review log 1, cards 1")
	assert.Contains(t, out, "Review log is consistent.")
}

func TestCheck_InconsistentExitsWithFailure(t *testing.T) {
	dbPath := seedFixture(t, brokenDeck)
	cmd := NewCheckCommand(newTestRootOptions("text"))

	out, err := execute(cmd, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "mature: review log 4, cards 2")
	assert.Contains(t, out, `please run "maturing repair"`)
}

func TestCheck_JSON(t *testing.T) {
	dbPath := seedFixture(t, brokenDeck)
	cmd := NewCheckCommand(newTestRootOptions("json"))

	out, err := execute(cmd, "--db", dbPath)
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Consistent   bool   `json:"consistent"`
			RepairAction string `json:"repair_action"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Consistent)
	assert.Equal(t, "maturing repair", resp.Data.RepairAction)
}

func TestCheck_EmptyDatabase(t *testing.T) {
	cmd := NewCheckCommand(newTestRootOptions("text"))

	out, err := execute(cmd, "--db", emptyDB(t))
	require.NoError(t, err)
	assert.Equal(t, "No review data.\n", out)
}
