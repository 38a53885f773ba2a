package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// Job is a named periodic task.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Schedule runs every job once, then on the cron spec until ctx is done.
// Job failures are logged and never stop the schedule. Schedule returns
// after the running jobs have finished.
func Schedule(ctx context.Context, spec string, jobs ...Job) error {
	c := cron.New()

	for _, job := range jobs {
		run := runner(ctx, job)
		if _, err := c.AddFunc(spec, run); err != nil {
			return fmt.Errorf("%s: %w", config.ErrSchedule, err)
		}
		run()
	}

	c.Start()
	slog.Info(config.MsgSchedStart,
		config.LogKeyComponent, config.CompWatcher,
		config.LogKeyCount, len(jobs))

	<-ctx.Done()
	slog.Info(config.MsgSchedStop, config.LogKeyComponent, config.CompWatcher)

	// Wait for a running job to finish.
	<-c.Stop().Done()
	return nil
}

func runner(ctx context.Context, job Job) func() {
	return func() {
		if err := job.Run(ctx); err != nil {
			slog.Error(config.MsgJobFailed,
				config.LogKeyComponent, job.Name,
				config.LogKeyError, err)
		}
	}
}
