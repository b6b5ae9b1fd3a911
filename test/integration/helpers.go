//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint      string
	AdminEmail    string
	AdminPassword string
	// Collection must have a text field named "title".
	Collection string
	PbctlPath  string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:      os.Getenv("PB_ENDPOINT"),
		AdminEmail:    os.Getenv("PB_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("PB_ADMIN_PASSWORD"),
		Collection:    os.Getenv("PB_TEST_COLLECTION"),
		PbctlPath:     getPbctlPath(),
		Verbose:       os.Getenv("PBCTL_VERBOSE") == "true",
	}
}

// getPbctlPath determines the path to the pbctl binary
func getPbctlPath() string {
	if path := os.Getenv("PBCTL_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../pbctl",
		"./pbctl",
		"../pbctl",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "pbctl" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Endpoint == "" || config.AdminEmail == "" || config.AdminPassword == "" {
		t.Skip("PB_ENDPOINT, PB_ADMIN_EMAIL or PB_ADMIN_PASSWORD not set, skipping integration test")
	}

	if config.Collection == "" {
		t.Skip("PB_TEST_COLLECTION not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.PbctlPath); err != nil {
		t.Skipf("pbctl binary not found at %s, skipping integration test", config.PbctlPath)
	}
}

// CommandRunner runs pbctl against an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a pbctl command and returns output
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	args = append([]string{"--config", runner.configFile}, args...)

	cmd := exec.Command(runner.config.PbctlPath, args...) //nolint:gosec // test binary path from the environment

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.PbctlPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login saves the test backend as the current target.
func (runner *CommandRunner) Login() error {
	_, stderr, err := runner.Run("login", runner.config.Endpoint,
		"--name", "integration",
		"--username", runner.config.AdminEmail,
		"--password", runner.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to login: %s", stderr)
	}

	return nil
}

// RunJSON executes a pbctl command with JSON output and decodes it into out.
func (runner *CommandRunner) RunJSON(out interface{}, args ...string) error {
	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, stderr)
	}

	err = json.Unmarshal([]byte(stdout), out)
	if err != nil {
		return fmt.Errorf("output is not JSON: %w: %s", err, stdout)
	}

	return nil
}

// DeleteRecord removes a test record through the send command.
func (runner *CommandRunner) DeleteRecord(id string) {
	path := fmt.Sprintf("/api/collections/%s/records/%s", runner.config.Collection, id)

	stdout, stderr, err := runner.Run("send", path, "--method", "DELETE")
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for record %s: %s\nStderr: %s", id, stdout, stderr)
	}
}

// GenerateTestName creates a unique test value
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
