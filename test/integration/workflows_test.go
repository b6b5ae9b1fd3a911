//go:build integration

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TestRecordWorkflow_CompleteJourney logs in, inspects the schema, then creates,
// views, updates and searches a record.
func TestRecordWorkflow_CompleteJourney(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.Login())

	// 1. Schema
	var collections []optionEntry

	require.NoError(t, runner.RunJSON(&collections, "collections"))
	assert.Contains(t, names(collections), config.Collection)

	var fields []optionEntry

	require.NoError(t, runner.RunJSON(&fields, "fields", config.Collection))
	assert.Contains(t, values(fields), "title")

	// 2. Create
	title := GenerateTestName("workflow")

	var created map[string]interface{}

	require.NoError(t, runner.RunJSON(&created, "records", "create", config.Collection, "--field", "title="+title))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	defer runner.DeleteRecord(id)

	assert.Equal(t, title, created["title"])

	// 3. View
	var viewed map[string]interface{}

	require.NoError(t, runner.RunJSON(&viewed, "records", "view", config.Collection, id))
	assert.Equal(t, title, viewed["title"])

	// 4. Update from JSON, which overrides the field assignment
	var updated map[string]interface{}

	require.NoError(t, runner.RunJSON(&updated, "records", "update", config.Collection, id,
		"--field", "title=ignored",
		"--json", `{"title":"`+title+`-updated"}`))
	assert.Equal(t, title+"-updated", updated["title"])

	// 5. Search every page with a jq projection
	stdout, stderr, err := runner.Run("records", "search", config.Collection, "--all",
		"--filter", `title = "`+title+`-updated"`,
		"--jq", ".[].id")
	require.NoError(t, err, "Failed to search records: %s", stderr)
	assert.Equal(t, `"`+id+`"`, strings.TrimSpace(stdout))

	// 6. Rows for selection
	var rows []optionEntry

	require.NoError(t, runner.RunJSON(&rows, "rows", config.Collection))
	assert.Contains(t, values(rows), id)
}

// TestRecordWorkflow_RunContinueOnFail runs a file of items where one fails.
func TestRecordWorkflow_RunContinueOnFail(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.Login())

	items := filepath.Join(t.TempDir(), "items.yml")
	require.NoError(t, os.WriteFile(items, []byte(`
- resource: `+config.Collection+`
  operation: search
  elementsPerPage: 1
- resource: `+config.Collection+`
  operation: view
  elementId: does-not-exist
`), 0o600))

	stdout, stderr, err := runner.Run("records", "run", "--file", items, "--continue-on-fail", "--output", "json")
	require.NoError(t, err, "Failed to run items: %s", stderr)

	var results []struct {
		Index   int    `json:"index"`
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}

	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)

	_, _, err = runner.Run("records", "run", "--file", items)
	require.Error(t, err, "without --continue-on-fail the failing item stops the run")
}

// TestSendWorkflow_Health calls a custom endpoint.
func TestSendWorkflow_Health(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.Login())

	var health map[string]interface{}

	require.NoError(t, runner.RunJSON(&health, "send", "/api/health"))
	assert.EqualValues(t, 200, health["code"])

	stdout, stderr, err := runner.Run("logout")
	require.NoError(t, err, "Failed to logout: %s", stderr)
	assert.Contains(t, stdout, "integration")

	_, _, err = runner.Run("collections")
	require.Error(t, err, "logged out target has no token")
}

func names(entries []optionEntry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Name)
	}

	return out
}

func values(entries []optionEntry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Value)
	}

	return out
}
