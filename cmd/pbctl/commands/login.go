package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/auth"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// loginOptions holds the inputs of a login.
type loginOptions struct {
	Name           string
	Endpoint       string
	UserCollection string
	Username       string
	Password       string
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login [ENDPOINT]",
		Short: "Login to a PocketBase backend",
		Long: `Authenticate with a PocketBase backend and save it as a target.

The password is exchanged for a token through the auth-with-password endpoint
of the user collection (default _superusers). Only the token is stored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Endpoint = args[0]
			}

			err := promptMissing(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}

			_, path, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			name, err := login(ctx, path, opts)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s (target '%s')\n", opts.Endpoint, opts.Username, name)

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "target name (default is the endpoint host)")
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "identity (email or username)")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "password (prompted if omitted)")
	cmd.Flags().StringVar(&opts.UserCollection, "user-collection", "", "auth collection (default _superusers)")

	return cmd
}

// promptMissing fills endpoint, username and password from flags, the
// environment or an interactive prompt.
func promptMissing(in io.Reader, out io.Writer, opts *loginOptions) error {
	reader := bufio.NewReader(in)

	if opts.Endpoint == "" {
		_, _ = fmt.Fprint(out, "Endpoint: ")
		line, _ := reader.ReadString('\n')
		opts.Endpoint = strings.TrimSpace(line)
	}

	if opts.Endpoint == "" {
		return constants.ErrNoEndpoint
	}

	if opts.Username == "" {
		_, _ = fmt.Fprint(out, "Username: ")
		line, _ := reader.ReadString('\n')
		opts.Username = strings.TrimSpace(line)
	}

	if opts.Password == "" {
		opts.Password = viper.GetString("password")
	}

	if opts.Password == "" {
		_, _ = fmt.Fprint(out, "Password: ")

		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		opts.Password = string(bytePassword)

		_, _ = fmt.Fprintln(out)
	}

	return nil
}

// login authenticates and saves the target with its token to the config file
// at path, making it the current target.
func login(ctx context.Context, path string, opts *loginOptions) (string, error) {
	endpoint, err := pbclient.NormalizeEndpoint(opts.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	opts.Endpoint = endpoint

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		Endpoint:       endpoint,
		UserCollection: opts.UserCollection,
		Identity:       opts.Username,
		Password:       opts.Password,
		RetryMax:       constants.DefaultRetryMax,
		UserAgent:      userAgent,
	})

	err = manager.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	token := manager.CurrentToken()

	config, err := readConfigFile(path)
	if err != nil {
		return "", err
	}

	name := opts.Name
	if name == "" {
		name = targetNameFor(endpoint)
	}

	target := &TargetConfig{
		Endpoint:       endpoint,
		UserCollection: opts.UserCollection,
		Username:       opts.Username,
		Token:          token.AccessToken,
	}

	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt.UTC().Truncate(time.Second)
		target.TokenExpiresAt = &expiresAt
	}

	config.Targets[name] = target
	config.CurrentTarget = name

	err = writeConfigFile(path, config)
	if err != nil {
		return "", fmt.Errorf("failed to save configuration: %w", err)
	}

	return name, nil
}

func targetNameFor(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Hostname() == "" {
		return endpoint
	}

	return parsed.Hostname()
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the token of a target",
		Long:  "Remove the saved token of the current target, or of the target selected with --target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, path, err := loadConfig()
			if err != nil {
				return err
			}

			name, err := logout(path, viper.GetString("target"))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged out of target '%s'\n", name)

			return nil
		},
	}
}

func logout(path, targetName string) (string, error) {
	config, err := readConfigFile(path)
	if err != nil {
		return "", err
	}

	name, target, err := resolveTarget(config, targetName)
	if err != nil {
		return "", err
	}

	target.Token = ""
	target.TokenExpiresAt = nil

	err = writeConfigFile(path, config)
	if err != nil {
		return "", fmt.Errorf("failed to save configuration: %w", err)
	}

	return name, nil
}
