package main

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/podmon/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggingCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().Bool("verbose", false, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestConfigureLogger(t *testing.T) {
	fileCfg := config.DefaultConfig()
	fileCfg.LogLevel = "warn"

	tests := []struct {
		name     string
		args     []string
		cfg      *config.Config
		fromFile bool
		want     logrus.Level
	}{
		{name: "silent by default", want: logrus.PanicLevel},
		{name: "defaults are not a file", cfg: config.DefaultConfig(), want: logrus.PanicLevel},
		{name: "config file", cfg: fileCfg, fromFile: true, want: logrus.WarnLevel},
		{name: "verbose beats config file", args: []string{"--verbose"}, cfg: fileCfg, fromFile: true, want: logrus.DebugLevel},
		{name: "log level beats verbose", args: []string{"--verbose", "--log-level", "error"}, want: logrus.ErrorLevel},
		{name: "info", args: []string{"--log-level", "info"}, want: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := configureLogger(newLoggingCommand(t, tt.args...), "verbose", tt.cfg, tt.fromFile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestConfigureLogger_InvalidLevel(t *testing.T) {
	_, err := configureLogger(newLoggingCommand(t, "--log-level", "trace"), "verbose", nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level: trace")
}

func TestConfigureLogger_WritesToCommandStderr(t *testing.T) {
	cmd := newLoggingCommand(t, "--log-level", "info")
	buf := new(bytes.Buffer)
	cmd.SetErr(buf)

	logger, err := configureLogger(cmd, "verbose", nil, false)
	require.NoError(t, err)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
