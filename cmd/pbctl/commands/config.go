package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	CurrentTarget string                   `json:"current_target,omitempty" yaml:"current_target,omitempty"`
	Output        string                   `json:"output,omitempty"         yaml:"output,omitempty"`
	Targets       map[string]*TargetConfig `json:"targets,omitempty"        yaml:"targets,omitempty"`
}

// TargetConfig represents a saved PocketBase backend. Passwords are never stored.
type TargetConfig struct {
	Endpoint       string     `json:"endpoint"                   yaml:"endpoint"`
	UserCollection string     `json:"user_collection,omitempty"  yaml:"user_collection,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
}

func newConfig() *Config {
	return &Config{Targets: make(map[string]*TargetConfig)}
}

// configFilePath returns the file the configuration is read from and written to.
func configFilePath() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	if file := viper.GetString("config"); file != "" {
		return file, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".pbctl", "config.yml"), nil
}

func loadConfig() (*Config, string, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, "", err
	}

	config, err := readConfigFile(path)
	if err != nil {
		return nil, "", err
	}

	return config, path, nil
}

// readConfigFile reads the configuration at path. A missing file yields an empty configuration.
func readConfigFile(path string) (*Config, error) {
	// path comes from the --config flag or the user's home directory
	// #nosec G304
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newConfig(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := newConfig()

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if config.Targets == nil {
		config.Targets = make(map[string]*TargetConfig)
	}

	return config, nil
}

func writeConfigFile(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// resolveTarget returns the named target, the current target when name is
// empty, or the only target when exactly one is configured.
func resolveTarget(config *Config, name string) (string, *TargetConfig, error) {
	if len(config.Targets) == 0 {
		return "", nil, constants.ErrNoTargetsConfigured
	}

	if name == "" {
		name = config.CurrentTarget
	}

	if name == "" && len(config.Targets) == 1 {
		for only := range config.Targets {
			name = only
		}
	}

	target, ok := config.Targets[name]
	if !ok || target == nil {
		return "", nil, fmt.Errorf("%w: '%s', use 'pbctl config targets' to list targets", constants.ErrTargetNotFound, name)
	}

	return name, target, nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage pbctl configuration including saved targets and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigTargetsCommand())
	cmd.AddCommand(newConfigUseCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with tokens masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, path, err := loadConfig()
			if err != nil {
				return err
			}

			masked := maskConfig(config)

			return render(cmd.Context(), cmd.OutOrStdout(), currentOutputOptions(), masked, func(w io.Writer) error {
				return configTable(w, path, masked)
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	var targetFlag string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a global configuration value (output, current_target) or, with --for,
a value of a saved target (endpoint, user_collection, username).`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config, path, err := loadConfig()
			if err != nil {
				return err
			}

			if targetFlag != "" {
				err = setTargetValue(config, targetFlag, args[0], args[1])
			} else {
				err = setGlobalValue(config, args[0], args[1])
			}

			if err != nil {
				return err
			}

			err = writeConfigFile(path, config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], args[1])

			return nil
		},
	}

	cmd.Flags().StringVar(&targetFlag, "for", "", "saved target to configure")

	return cmd
}

func newConfigTargetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "targets",
		Aliases: []string{"list"},
		Short:   "List saved targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, _, err := loadConfig()
			if err != nil {
				return err
			}

			masked := maskConfig(config)

			return render(cmd.Context(), cmd.OutOrStdout(), currentOutputOptions(), masked.Targets, func(w io.Writer) error {
				return targetsTable(w, masked)
			})
		},
	}
}

func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use TARGET",
		Short: "Select the current target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, path, err := loadConfig()
			if err != nil {
				return err
			}

			err = setGlobalValue(config, "current_target", args[0])
			if err != nil {
				return err
			}

			err = writeConfigFile(path, config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Using target '%s'\n", args[0])

			return nil
		},
	}
}

func setGlobalValue(config *Config, key, value string) error {
	switch key {
	case "output":
		format := strings.ToLower(value)
		if !slices.Contains([]string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, format) {
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, value)
		}

		config.Output = format
	case "current_target":
		if _, ok := config.Targets[value]; !ok {
			return fmt.Errorf("%w: '%s'", constants.ErrTargetNotFound, value)
		}

		config.CurrentTarget = value
	default:
		return fmt.Errorf("%w: %s. Use --for to set target values", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func setTargetValue(config *Config, name, key, value string) error {
	target, ok := config.Targets[name]
	if !ok {
		return fmt.Errorf("%w: '%s'", constants.ErrTargetNotFound, name)
	}

	switch key {
	case "endpoint":
		endpoint, err := pbclient.NormalizeEndpoint(value)
		if err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}

		if endpoint != target.Endpoint {
			target.Token = ""
			target.TokenExpiresAt = nil
		}

		target.Endpoint = endpoint
	case "user_collection":
		target.UserCollection = value
	case "username":
		target.Username = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// maskConfig returns a copy of config with tokens replaced.
func maskConfig(config *Config) *Config {
	masked := &Config{
		CurrentTarget: config.CurrentTarget,
		Output:        config.Output,
		Targets:       make(map[string]*TargetConfig, len(config.Targets)),
	}

	for name, target := range config.Targets {
		copied := *target
		if copied.Token != "" {
			copied.Token = constants.MaskedSecret
		}

		masked.Targets[name] = &copied
	}

	return masked
}

func configTable(w io.Writer, path string, config *Config) error {
	output := config.Output
	if output == "" {
		output = constants.FormatTable
	}

	currentTarget := config.CurrentTarget
	if currentTarget == "" {
		currentTarget = constants.NotAvailable
	}

	err := propertiesTable(w, [][2]string{
		{"Config File", path},
		{"Output", output},
		{"Current Target", currentTarget},
		{"Targets", fmt.Sprintf("%d", len(config.Targets))},
	})
	if err != nil {
		return err
	}

	if len(config.Targets) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(w)

	return targetsTable(w, config)
}

func targetsTable(w io.Writer, config *Config) error {
	if len(config.Targets) == 0 {
		_, _ = fmt.Fprintln(w, "No targets configured")

		return nil
	}

	names := make([]string, 0, len(config.Targets))
	for name := range config.Targets {
		names = append(names, name)
	}

	slices.Sort(names)

	table := newTable(w, "Name", "Endpoint", "User Collection", "Username", "Token Expires", "Current")

	for _, name := range names {
		target := config.Targets[name]

		userCollection := target.UserCollection
		if userCollection == "" {
			userCollection = constants.DefaultUserCollection
		}

		expires := constants.NotAvailable
		if target.TokenExpiresAt != nil {
			expires = target.TokenExpiresAt.Format(time.RFC3339)
		}

		current := ""
		if name == config.CurrentTarget {
			current = "*"
		}

		_ = table.Append([]string{name, target.Endpoint, userCollection, target.Username, expires, current})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
