package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "adrgov", cmd.Use)
	assert.Contains(t, cmd.Long, "slash commands")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"handle", "show", "parse", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestHandleCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	handleCmd, _, err := cmd.Find([]string{"handle"})
	require.NoError(t, err)

	for _, name := range []string{"event-name", "event-path", "db"} {
		flag := handleCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestInvalidFormat(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "--format", "yaml", "parse")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestVerboseLogsGoToStderr(t *testing.T) {
	dir := isolate(t)
	payload := writeFile(t, dir, "push.json", `{}`)

	out, errOut, err := execute(t, "", "-v", "handle", "--event-name", "push", "--event-path", payload, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "ok", decodeResponse(t, out).Status)
	assert.Contains(t, errOut, "event decoded")
	assert.Contains(t, errOut, "event ignored")
}
