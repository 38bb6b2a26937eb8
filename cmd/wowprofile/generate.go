package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"wowprofile/pkg/auth"
	"wowprofile/pkg/battlenet"
	"wowprofile/pkg/collection"
	"wowprofile/pkg/config"
	"wowprofile/pkg/logger"
	"wowprofile/pkg/profile"
	"wowprofile/pkg/ratelimit"
	"wowprofile/pkg/raritycache"
	"wowprofile/pkg/storage"
	"wowprofile/pkg/ui"
	"wowprofile/pkg/wowhead"
)

var accountName string

// now is replaced in tests to pin the Mythic+ season count.
var now = time.Now

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the profile document for one character",
	Long: `Fetch every collection of a character, attach Wowhead rarity and write the
profile document.

Client credentials are taken from, in order:
  - --client-id / --client-secret
  - WOWPROFILE_CLIENT_ID / WOWPROFILE_CLIENT_SECRET (also read from .env)
  - the configuration file
  - stored credentials ('wowprofile auth login'), or --account`,
	Example: `  # Write wowProfile.ts for a US character
  wowprofile generate --realm "Area 52" --character Thrall

  # EU character as JSON on stdout, skipping Wowhead
  wowprofile generate --region eu --realm Silvermoon --character Jaina \
    --format json --output - --no-rarity

  # Use a specific stored API client
  wowprofile generate --account guild-bot`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd.Flags())
}

func addGenerateFlags(fs *pflag.FlagSet) {
	fs.String("realm", "", "realm name or slug")
	fs.String("character", "", "character name")
	fs.String("region", "", "API region (us, eu, kr, tw)")
	fs.StringP("output", "o", "", `output file ("-" for stdout, default wowProfile.ts)`)
	fs.StringP("format", "f", "", "output format (ts, json, yaml)")
	fs.String("client-id", "", "Battle.net API client ID")
	fs.String("client-secret", "", "Battle.net API client secret")
	fs.StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	fs.Bool("no-rarity", false, "skip Wowhead rarity lookups")
	fs.Bool("rarity-cache", false, "cache rarity in a local SQLite database")
	fs.String("pacing", "", "request pacing mode (stagger, rate)")
	fs.Int("max-concurrency", 0, "maximum concurrent requests per collection (0 = unbounded)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := resolveCredentials(cfg, accountName, openCredentials); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Output.Path == "" || cfg.Output.Path == storage.Stdout {
		ui.SetOutput(os.Stderr)
	}
	ui.PrintLogo()
	ui.PrintInfo("Character", fmt.Sprintf("%s @ %s (%s)", cfg.BattleNet.Character, cfg.BattleNet.Realm, cfg.BattleNet.Region))

	notifier := ui.NewNotifier(cfg.Notifications.Enabled)
	tracker := ui.NewStatusTracker()

	res, err := generate(cmd.Context(), cfg, os.Stdout, tracker.Update, logger.GetLogger())
	if err != nil {
		logger.WithError(err).Error("Profile generation failed")
		notifier.SendError("Profile generation failed", err.Error())
		return reportedError{err}
	}

	tracker.PrintSummary()
	if res.Unchanged {
		notifier.SendSuccess("Profile unchanged", res.Path)
	} else {
		notifier.SendSuccess("Profile written", fmt.Sprintf("%s (%d bytes)", res.Path, res.Bytes))
	}
	return nil
}

type accountSource interface {
	Retrieve(name string) (*auth.Account, error)
}

func openCredentials() (accountSource, error) {
	return auth.NewManager()
}

// resolveCredentials fills missing client credentials from the credential
// stores. An explicit account name always wins and must exist. A stored
// region replaces the region only while it is still the default.
func resolveCredentials(cfg *config.Config, name string, open func() (accountSource, error)) error {
	if name == "" && cfg.BattleNet.ClientID != "" && cfg.BattleNet.ClientSecret != "" {
		return nil
	}

	src, err := open()
	if err != nil {
		if name != "" {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}
		logger.WithError(err).Debug("Credential stores unavailable")
		return nil
	}

	account, err := src.Retrieve(name)
	if err != nil {
		if name != "" {
			return fmt.Errorf("account %q: %w (see 'wowprofile auth list')", name, err)
		}
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read stored credentials: %w", err)
	}

	cfg.BattleNet.ClientID = account.ClientID
	cfg.BattleNet.ClientSecret = account.ClientSecret
	if account.Region != "" && cfg.BattleNet.Region == config.DefaultConfig().BattleNet.Region {
		cfg.BattleNet.Region = account.Region
	}
	logger.WithField("account", account.Name).Info("Using stored credentials")
	return nil
}

// generate runs the whole pipeline for cfg and writes the rendered
// profile. stdout receives the document when the output path is "-".
func generate(ctx context.Context, cfg *config.Config, stdout io.Writer, progress collection.ProgressFunc, log logger.Logger) (storage.Result, error) {
	region, ok := battlenet.ParseRegion(cfg.BattleNet.Region)
	if !ok {
		log.WithField("region", cfg.BattleNet.Region).Warn("Unknown region, using us")
	}

	client := battlenet.NewClient(battlenet.Options{
		ClientID:     cfg.BattleNet.ClientID,
		ClientSecret: cfg.BattleNet.ClientSecret,
		Region:       region,
		APIBaseURL:   cfg.BattleNet.APIBaseURL,
		TokenURL:     cfg.BattleNet.TokenURL,
		Timeout:      cfg.BattleNet.Timeout,
		Logger:       log,
	})

	pacer, err := newPacer(cfg.Pacing)
	if err != nil {
		return storage.Result{}, err
	}

	opts := collection.Options{
		Fetcher:         client,
		Pacer:           pacer,
		SequentialDelay: cfg.Pacing.SequentialDelay,
		Region:          region,
		Realm:           cfg.BattleNet.Realm,
		Character:       cfg.BattleNet.Character,
		MaxConcurrency:  cfg.Pacing.MaxConcurrency,
		Progress:        progress,
		Logger:          log,
	}

	if cfg.Rarity.Enabled {
		scraperOpts := wowhead.Options{
			BaseURL:     cfg.Rarity.BaseURL,
			MaxAttempts: cfg.Rarity.MaxAttempts,
			RetryDelay:  cfg.Rarity.RetryDelay,
			Timeout:     cfg.Rarity.Timeout,
			Logger:      log,
		}
		if cfg.Rarity.CacheEnabled {
			cache, err := openRarityCache(ctx, cfg, log)
			if err != nil {
				return storage.Result{}, err
			}
			defer cache.Close()
			scraperOpts.Cache = cache
		}
		opts.Rarity = wowhead.New(scraperOpts)
	}

	aggregator, err := collection.New(opts)
	if err != nil {
		return storage.Result{}, err
	}

	started := time.Now()
	p, err := aggregator.Profile(ctx, now())
	if err != nil {
		return storage.Result{}, err
	}

	data, err := profile.Render(p, cfg.Output.Format)
	if err != nil {
		return storage.Result{}, err
	}

	res, err := storage.NewWriter(stdout).Write(cfg.Output.Path, data)
	if err != nil {
		return storage.Result{}, err
	}

	log.WithFields(map[string]interface{}{
		"path":        res.Path,
		"bytes":       res.Bytes,
		"unchanged":   res.Unchanged,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Profile generated")
	return res, nil
}

func openRarityCache(ctx context.Context, cfg *config.Config, log logger.Logger) (*raritycache.Cache, error) {
	cache, err := raritycache.Open(cfg.CachePath(), cfg.Rarity.CacheTTL, log)
	if err != nil {
		return nil, err
	}
	if pruned, err := cache.Prune(ctx); err != nil {
		log.WithError(err).Warn("Failed to prune rarity cache")
	} else if pruned > 0 {
		log.WithField("entries", pruned).Debug("Pruned stale rarity entries")
	}
	return cache, nil
}

func newPacer(cfg config.PacingConfig) (ratelimit.Pacer, error) {
	switch cfg.Mode {
	case config.PacingRate:
		return ratelimit.NewTokenRate(cfg.RequestsPerSecond, cfg.Burst)
	case config.PacingStagger, "":
		return ratelimit.Staggered{Step: cfg.StaggerStep}, nil
	default:
		return nil, fmt.Errorf("unknown pacing mode %q", cfg.Mode)
	}
}
