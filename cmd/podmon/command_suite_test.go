package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/srg/podmon/internal/testutils"
)

// Test device addresses for consistent mock advertiser identification
const (
	TestDeviceAddress1 = "AA:00:00:00:00:01"
	TestDeviceAddress2 = "AA:00:00:00:00:02"
)

var clockPrefix = regexp.MustCompile(`(?m)^\[\d{2}:\d{2}:\d{2}\] `)

// CommandTestSuite extends MockScannerSuite with command testing utilities.
// All cmd/podmon test suites should embed this instead of MockScannerSuite.
type CommandTestSuite struct {
	testutils.MockScannerSuite
}

// SetupTest installs the mock scanner and restores every command flag to its default.
func (s *CommandTestSuite) SetupTest() {
	s.MockScannerSuite.SetupTest()
	s.ResetFlags()
}

// ResetFlags restores every command flag to its default.
func (s *CommandTestSuite) ResetFlags() {
	// Root first: subcommands merge the root persistent flags on parse
	resetRootFlags()
	resetWatchFlags()
	resetScanFlags()
	resetDecodeFlags()
}

// ExecuteCommand runs the podmon root command with args, returns stdout and error.
// Stderr is collected separately so log output does not pollute assertions.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, error) {
	out, _, err := s.ExecuteCommandWithStderr(args...)
	return out, err
}

// ExecuteCommandWithStderr runs the podmon root command and returns both streams.
func (s *CommandTestSuite) ExecuteCommandWithStderr(args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// WriteConfig writes a YAML config file into a temp dir and returns its path.
func (s *CommandTestSuite) WriteConfig(content string) string {
	path := filepath.Join(s.T().TempDir(), "podmon.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600), "config file MUST be written")
	return path
}

// StripClock removes the "[hh:mm:ss] " prefix watch puts on every line.
func StripClock(out string) string {
	return clockPrefix.ReplaceAllString(out, "")
}
