package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/auth"
	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/internal/logging"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const userAgent = "pbctl"

// clientOptions configures a client built for a saved target.
type clientOptions struct {
	TargetName string
	Target     *TargetConfig
	// Password enables re-login when the saved token is missing or rejected.
	Password  string
	Persister auth.ConfigPersister
	Logger    *logging.Logger
	Debug     bool
}

func newLogger() (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = viper.GetString("log_level")
	cfg.FilePath = viper.GetString("log_file")

	if viper.GetBool("debug") {
		cfg.Level = "debug"
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// withClient builds a client for the selected target, authenticates it and
// runs fn. Authentication failures end the command before fn runs.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	config, path, err := loadConfig()
	if err != nil {
		return err
	}

	name, target, err := resolveTarget(config, viper.GetString("target"))
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	defer func() { _ = logger.Close() }()

	pbClient, err := createClient(&clientOptions{
		TargetName: name,
		Target:     target,
		Password:   viper.GetString("password"),
		Persister:  NewConfigPersister(path),
		Logger:     logger,
		Debug:      viper.GetBool("debug"),
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	err = pbClient.Authenticate(ctx)
	if err != nil {
		return err
	}

	return fn(ctx, pbClient)
}

// createClient builds a client for a saved target.
func createClient(opts *clientOptions) (*client.Client, error) {
	tokenManager, err := createTokenManager(opts)
	if err != nil {
		return nil, err
	}

	config := &pbapi.Config{
		Endpoint:       opts.Target.Endpoint,
		UserCollection: opts.Target.UserCollection,
		Username:       opts.Target.Username,
		Password:       opts.Password,
		Token:          opts.Target.Token,
		Debug:          opts.Debug,
		UserAgent:      userAgent,
	}

	if opts.Logger != nil {
		config.Logger = opts.Logger
	}

	pbClient, err := client.NewWithTokenManager(config, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client with token manager: %w", err)
	}

	return pbClient, nil
}

// createTokenManager prefers a persisting password manager, seeded with the
// saved token, and falls back to the saved token alone.
func createTokenManager(opts *clientOptions) (auth.TokenManager, error) {
	target := opts.Target

	var expiresAt time.Time
	if target.TokenExpiresAt != nil {
		expiresAt = *target.TokenExpiresAt
	}

	if opts.Password != "" && target.Username != "" {
		warn := func(err error) {
			if opts.Logger != nil {
				opts.Logger.Warn("Failed to persist token", map[string]interface{}{
					"target": opts.TargetName,
					"error":  err.Error(),
				})
			}
		}

		return auth.NewConfigTokenManager(&auth.PasswordConfig{
			Endpoint:       target.Endpoint,
			UserCollection: target.UserCollection,
			Identity:       target.Username,
			Password:       opts.Password,
			HTTPTimeout:    constants.ShortHTTPTimeout,
			RetryMax:       constants.DefaultRetryMax,
			UserAgent:      userAgent,
		}, opts.Persister, opts.TargetName, target.Token, expiresAt, warn), nil
	}

	if target.Token == "" {
		return nil, fmt.Errorf("%w: target '%s' has no token, run 'pbctl login' or set PBCTL_PASSWORD",
			pbapi.ErrNotAuthenticated, opts.TargetName)
	}

	if !expiresAt.IsZero() && time.Now().After(expiresAt) {
		return nil, fmt.Errorf("%w: token of target '%s' expired at %s, run 'pbctl login' or set PBCTL_PASSWORD",
			pbapi.ErrNotAuthenticated, opts.TargetName, expiresAt.Format(time.RFC3339))
	}

	return auth.NewStaticTokenManager(target.Token), nil
}
