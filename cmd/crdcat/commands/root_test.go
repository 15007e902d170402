package commands_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/cmd/crdcat/commands"
	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
)

func TestRootCmdArgs(t *testing.T) {
	tcs := map[string]struct {
		wantErr   error
		logLevel  string
		logFormat string
	}{
		"default config": {
			logLevel:  "warn",
			logFormat: "text",
		},
		"json format": {
			logLevel:  "info",
			logFormat: "json",
		},
		"debug level": {
			logLevel:  "debug",
			logFormat: "text",
		},
		"invalid log level": {
			logLevel:  "invalid",
			logFormat: "text",
			wantErr:   commands.ErrLogHandlerFailed,
		},
		"invalid log format": {
			logLevel:  "warn",
			logFormat: "invalid",
			wantErr:   commands.ErrLogHandlerFailed,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			rootCmd := commands.NewRootCmd("test_logger", "", "")
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			rootCmd.SetArgs([]string{
				"--log_level", tc.logLevel,
				"--log_format", tc.logFormat,
				"version",
			})
			rootCmd.SetOut(stdout)
			rootCmd.SetErr(stderr)

			err := rootCmd.Execute()

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Regexp(t, `\d+\.\d+\.\d+`, stdout.String())
			}
		})
	}
}

func TestRootCmdArgPointers(t *testing.T) {
	args := commands.NewRootArgs()

	// Test default values
	assert.Empty(t, args.GetLogLevel())
	assert.Empty(t, args.GetLogFormat())
}

func TestExtractCmdRequiresSource(t *testing.T) {
	tc := commands.NewRootCmd("test_extract", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs([]string{"extract", "--quiet"})
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	require.Error(t, err)
	assert.ErrorContains(t, err, "at least one of the flags in the group")
}

func TestExtractCmdNoSources(t *testing.T) {
	tc := commands.NewRootCmd("test_extract", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs([]string{
		"extract", "--all", "--quiet",
		"--sources_dir", t.TempDir(),
		"--output", t.TempDir(),
	})
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrExtractFailed)
	assert.ErrorIs(t, err, catalogcmd.ErrNoSources)
}

func TestExtractCmdInvalidMaxExtractSize(t *testing.T) {
	tc := commands.NewRootCmd("test_extract", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs([]string{
		"extract", "--all", "--quiet",
		"--max_extract_size", "not-a-quantity",
	})
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrInvalidArgument)
}
