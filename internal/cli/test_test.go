package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: opens
description: "An ADR issue opens a record"
steps:
  - issue: {number: 42, title: Pick a queue, body: architecture, author: alice}
    expect:
      reply: "ADR-42 created and ready to be filled."
final:
  - {id: 42, status: INIT}
`

const failingScenario = `name: wrong
description: "Expects the wrong status"
steps:
  - issue: {number: 42, title: Pick a queue, body: architecture, author: alice}
final:
  - {id: 42, status: APPROVED}
`

func harnessDir(parts ...string) string {
	abs, _ := filepath.Abs(filepath.Join(append([]string{"..", "harness", "testdata"}, parts...)...))
	return abs
}

func TestTest_HarnessScenarios(t *testing.T) {
	scenarios, golden := harnessDir("scenarios"), harnessDir("golden")
	isolate(t)

	out, _, err := execute(t, "", "test", scenarios, "--golden-dir", golden)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ lifecycle\n")
	assert.Contains(t, out, "✓ supersede\n")
	assert.Contains(t, out, "Test Summary: 5 passed, 0 failed, 5 total\n")
	assert.Contains(t, out, "✓ All scenarios passed\n")
}

func TestTest_Filter(t *testing.T) {
	scenarios, golden := harnessDir("scenarios"), harnessDir("golden")
	isolate(t)

	out, _, err := execute(t, "", "test", scenarios, "--golden-dir", golden, "--filter", "super*", "--format", "json")
	require.NoError(t, err)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["passed"])
}

func TestTest_ParallelKeepsFileOrder(t *testing.T) {
	scenarios, golden := harnessDir("scenarios"), harnessDir("golden")
	isolate(t)

	for _, n := range []string{"1", "8"} {
		out, _, err := execute(t, "", "test", scenarios, "--golden-dir", golden, "--parallel", n, "--format", "json")
		require.NoError(t, err, out)

		data := decodeResponse(t, out).Data.(map[string]any)
		var names []string
		for _, sc := range data["scenarios"].([]any) {
			names = append(names, sc.(map[string]any)["name"].(string))
		}
		assert.Equal(t, []string{"custom_keyword", "errors", "lifecycle", "supersede", "threads"}, names)
	}
}

func TestTest_Failure(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "ok.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	out, _, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ opens\n")
	assert.Contains(t, out, "✗ wrong\n  final ADR-42: status = INIT, expected APPROVED\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total\n")
}

func TestTest_LoadErrorFailsScenario(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "typo.yaml", "name: x\ndescription: d\nstepz: []\n")

	out, _, err := execute(t, "", "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
}

func TestTest_UpdateThenCompare(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "ok.yaml", passingScenario)

	_, _, err := execute(t, "", "test", dir, "--update")
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "opens.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), "# scenario: opens\n")

	_, _, err = execute(t, "", "test", dir)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "golden"), "opens.golden", "stale\n")
	out, _, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "transcript does not match golden file")
}

func TestTest_CommandErrors(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "", "test", filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	writeFile(t, dir, "ok.yaml", passingScenario)
	_, _, err = execute(t, "", "test", dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_EmptyDirectory(t *testing.T) {
	dir := isolate(t)

	out, _, err := execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}
