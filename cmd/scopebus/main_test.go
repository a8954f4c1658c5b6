package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalemitter "github.com/rmacdonaldsmith/scopebus/internal/emitter"
)

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCommandStructure(t *testing.T) {
	cmd := newRootCommand()
	assert.Equal(t, "scopebus", cmd.Use)

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"compile", "covers", "run"} {
		assert.Contains(t, names, expected)
	}
}

func TestCompileCommand(t *testing.T) {
	out, err := executeCommand(t, "", "compile", "10-20,1-10,*-0")
	require.NoError(t, err)
	assert.Equal(t, "*-0,1-20\n", out)

	out, err = executeCommand(t, "", "compile", "--intervals", "5")
	require.NoError(t, err)
	assert.Equal(t, "5\n  [5, 5]\n", out)

	_, err = executeCommand(t, "", "compile", "1-")
	assert.Error(t, err)
}

func TestCoversCommand(t *testing.T) {
	out, err := executeCommand(t, "", "covers", "1-10,10-20", "15")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = executeCommand(t, "", "covers", "1-10,10-20", "25")
	assert.True(t, errors.Is(err, errNotCovered))
	assert.Equal(t, "false\n", out)

	_, err = executeCommand(t, "", "covers", "x", "1")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, errNotCovered))
}

const orderScript = `
name: orders
steps:
  - subscribe: {listener: audit, pattern: "orders.*:1-100"}
  - subscribe: {listener: once, pattern: "orders.created", budget: 1}
  - emit: {pattern: "orders.created:42", args: [alice]}
  - emit: {pattern: "orders.created:42", now: true}
  - emit: {pattern: "orders.created:500"}
  - list: {pattern: "orders.*"}
  - unsubscribe: {listener: audit, pattern: "orders.*"}
  - list: {pattern: "orders.*"}
`

func TestRunCommand_Stdin(t *testing.T) {
	out, err := executeCommand(t, orderScript, "run", "-")
	require.NoError(t, err)

	expected := strings.Join([]string{
		"subscribe audit orders.*:1-100 unlimited",
		"subscribe once orders.created budget=1",
		"emit orders.created:42 -> 2 invocation(s)",
		"  once [alice]",
		"  audit [alice]",
		"emit-now orders.created:42 -> 1 invocation(s)",
		"  audit []",
		"emit orders.created:500 -> 0 invocation(s)",
		"list orders.*: [audit]",
		"unsubscribe audit orders.*",
		"list orders.*: []",
		"done: 3 emitted, 3 invoked, 0 subscriptions left",
	}, "\n") + "\n"
	assert.Equal(t, expected, out)
}

func TestRunCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(orderScript), 0o600))

	out, err := executeCommand(t, "", "run", "--sync", path)
	require.NoError(t, err)
	assert.Contains(t, out, "emit-now orders.created:42 -> 2 invocation(s)")
	assert.NotContains(t, out, "\nemit orders")
}

func TestRunCommand_Errors(t *testing.T) {
	_, err := executeCommand(t, "", "run", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = executeCommand(t, "steps:\n  - emit: {pattern: \"a..b\"}\n", "run", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")

	_, err = executeCommand(t, "steps:\n  - unsubscribe: {listener: ghost, pattern: a}\n", "run", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown listener")
}

func TestParseScript(t *testing.T) {
	script, err := ParseScript(strings.NewReader(orderScript))
	require.NoError(t, err)
	assert.Equal(t, "orders", script.Name)
	assert.Len(t, script.Steps, 8)
	assert.Equal(t, 1, script.Steps[1].Subscribe.Budget)

	_, err = ParseScript(strings.NewReader("steps:\n  - emit: {pattern: a}\n    clear: {pattern: a}\n"))
	assert.Error(t, err, "two operations in one step")

	_, err = ParseScript(strings.NewReader("steps:\n  - publish: {pattern: a}\n"))
	assert.Error(t, err, "unknown operation")

	script, err = ParseScript(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, script.Steps)
}

func TestRunner_Clear(t *testing.T) {
	em, err := internalemitter.NewInMemoryEmitter(internalemitter.NewConfig("runner"))
	require.NoError(t, err)
	defer em.Close()

	script, err := ParseScript(strings.NewReader(`
steps:
  - subscribe: {listener: a, pattern: "jobs.build"}
  - subscribe: {listener: b, pattern: "jobs.test"}
  - clear: {pattern: "jobs.*"}
  - emit: {pattern: "jobs.*"}
`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewRunner(em, &out, false, time.Second).Run(script))
	assert.Contains(t, out.String(), "clear jobs.*\n")
	assert.Contains(t, out.String(), "emit jobs.* -> 0 invocation(s)\n")
}
