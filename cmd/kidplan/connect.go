package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kidplan-downloader/pkg/auth"
	"kidplan-downloader/pkg/config"
	"kidplan-downloader/pkg/kidplan"
	"kidplan-downloader/pkg/logger"
	"kidplan-downloader/pkg/models"
)

// loadConfig merges every configuration source with the flags the user
// actually set on cmd
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	if fs.Changed("log-level") {
		flags["log-level"] = logLevel
	}
	if fs.Changed("notifications") {
		flags["notifications"] = notifications
	}
	for _, name := range []string{"out-dir", "manifest", "kid-name"} {
		if f := fs.Lookup(name); f != nil && f.Changed {
			flags[name] = f.Value.String()
		}
	}
	for _, name := range []string{"delay", "limit"} {
		if fs.Lookup(name) != nil && fs.Changed(name) {
			v, _ := fs.GetInt(name)
			flags[name] = v
		}
	}
	if fs.Lookup("kid") != nil && fs.Changed("kid") {
		v, _ := fs.GetInt64("kid")
		flags["kid"] = v
	}
	if fs.Lookup("dry-run") != nil && fs.Changed("dry-run") {
		v, _ := fs.GetBool("dry-run")
		flags["dry-run"] = v
	}

	return config.Load(configFile, flags)
}

// resolveCredentials picks the login from the configuration or, failing
// that, from the credential manager. Kindergarten hints saved with the
// account fill in what the configuration leaves open.
func resolveCredentials(cfg *config.Config) (models.Credentials, error) {
	if accountEmail == "" && cfg.Kidplan.Username != "" && cfg.Kidplan.Password != "" {
		return cfg.Credentials(), nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return models.Credentials{}, fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var account *auth.Account
	if accountEmail != "" {
		account, err = manager.Retrieve(accountEmail)
	} else {
		account, err = manager.RetrieveDefault()
	}
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			return models.Credentials{}, errors.New("no Kidplan credentials found; run 'kidplan auth login' or set KIDPLAN_USER and KIDPLAN_PASS")
		}
		return models.Credentials{}, err
	}

	if cfg.Kidplan.KindergartenID == 0 && cfg.Kidplan.KindergartenName == "" {
		cfg.Kidplan.KindergartenID = account.KindergartenID
		cfg.Kidplan.KindergartenName = account.KindergartenName
	}
	logger.WithField("account", account.Email).Debug("Using stored credentials")
	return account.Credentials(), nil
}

// connect builds a client and logs in to the configured kindergarten
func connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*kidplan.Client, models.Kindergarten, error) {
	creds, err := resolveCredentials(cfg)
	if err != nil {
		return nil, models.Kindergarten{}, err
	}

	client, err := kidplan.NewClientFromConfig(cfg, log)
	if err != nil {
		return nil, models.Kindergarten{}, err
	}

	kid, err := client.Connect(ctx, creds, cfg.Kidplan.KindergartenID, cfg.Kidplan.KindergartenName)
	if err != nil {
		return nil, models.Kindergarten{}, err
	}
	return client, kid, nil
}

// initLogger sets up the global logger from cfg
func initLogger(cfg *config.Config) (logger.Logger, error) {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.GetLogger(), nil
}
