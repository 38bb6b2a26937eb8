package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wowprofile/internal/scheduler"
	"wowprofile/pkg/logger"
	"wowprofile/pkg/storage"
	"wowprofile/pkg/ui"
)

var runNow bool

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Regenerate the profile on a cron schedule",
	Long: `Run 'generate' repeatedly on a cron schedule until interrupted.

The schedule uses the standard five-field cron syntax or descriptors such as
@hourly and "@every 6h". A run that is still going when the next one is due
makes that tick a no-op.`,
	Example: `  # Every six hours (the default)
  wowprofile schedule --realm "Area 52" --character Thrall

  # Daily at 04:30, generating once right away
  wowprofile schedule --cron "30 4 * * *" --run-now`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	addGenerateFlags(scheduleCmd.Flags())
	scheduleCmd.Flags().String("cron", "", `cron spec (default "0 */6 * * *")`)
	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "generate once immediately before waiting for the schedule")
}

func runSchedule(cmd *cobra.Command, args []string) error {
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
		return errors.New("schedule needs an output file, not stdout")
	}

	ctx := cmd.Context()
	log := logger.GetLogger()
	notifier := ui.NewNotifier(cfg.Notifications.Enabled)

	job := func() {
		res, err := generate(ctx, cfg, os.Stdout, nil, log)
		switch {
		case err != nil && ctx.Err() != nil:
			// shutting down
		case err != nil:
			log.WithError(err).Error("Scheduled generation failed")
			notifier.SendError("Scheduled generation failed", err.Error())
		case !res.Unchanged:
			notifier.SendSuccess("Profile updated", res.Path)
		default:
			log.WithField("path", res.Path).Info("Profile unchanged")
		}
	}

	s := scheduler.New(log)
	if err := s.Add(cfg.Schedule.Cron, job); err != nil {
		return err
	}

	ui.PrintLogo()
	ui.PrintInfo("Schedule", cfg.Schedule.Cron)
	ui.PrintInfo("Output", cfg.Output.Path)

	if runNow {
		job()
	}

	err = s.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		ui.PrintSuccess(fmt.Sprintf("Scheduler stopped at %s", time.Now().Format(time.Kitchen)))
		return nil
	}
	return err
}
