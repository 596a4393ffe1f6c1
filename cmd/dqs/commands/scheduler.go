package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dqs/internal/scheduler"
	"github.com/wonny/dqs/internal/scheduler/jobs"
	"github.com/wonny/dqs/pkg/config"
	"github.com/wonny/dqs/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Periodic rescoring",
	Long: `Rescores the CSV files in a watch directory on a cron schedule.

Subcommands:
  start   - run the scheduler until interrupted
  run     - run one job now and print its result

Example:
  dqs scheduler start --dir ./exports
  dqs scheduler run rescore`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler with the rescore job. The watch directory comes from
--dir or DQS_WATCH_DIR and the schedule from DQS_RESCORE_SCHEDULE
(cron with seconds, default hourly). Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	schedulerDir     string
	schedulerWorkers int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerDir, "dir", "", "watch directory (default from DQS_WATCH_DIR)")
	schedulerCmd.PersistentFlags().IntVar(&schedulerWorkers, "workers", 4, "files scored in parallel")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	rt, sched, err := initScheduler(cmd, cfg, log)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	sched.Start()

	out := cmd.OutOrStdout()
	PrintSuccess(out, "Scheduler started")
	fmt.Fprintln(out, "Registered jobs:")
	PrintList(out, sched.GetAllJobs())
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newCLILogger(cmd, cfg)

	rt, sched, err := initScheduler(cmd, cfg, log)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	result, err := sched.RunJobSync(args[0])
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	out := cmd.OutOrStdout()
	if !result.Success {
		PrintError(out, fmt.Sprintf("Job %s failed after %d attempts: %s", result.JobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", result.JobName)
	}
	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s (%d files, %d failed)",
		result.JobName, result.Duration.Round(time.Millisecond), result.Tally.Evaluated, result.Tally.Failed))
	return nil
}

func initScheduler(cmd *cobra.Command, cfg *config.Config, log *logger.Logger) (*runtime, *scheduler.Scheduler, error) {
	dir := schedulerDir
	if dir == "" {
		dir = cfg.Scheduler.WatchDir
	}
	if dir == "" {
		return nil, nil, fmt.Errorf("no watch directory: set --dir or DQS_WATCH_DIR")
	}

	rt, err := newRuntime(cmd.Context(), cfg, log, runtimeOptions{})
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(log)
	job := jobs.NewRescoreJob(rt.evaluator, dir, cfg.Scheduler.RescoreSchedule, cfg.Scheduler.Recursive, schedulerWorkers, log)
	if err := sched.AddJob(job); err != nil {
		rt.Close()
		return nil, nil, err
	}

	return rt, sched, nil
}
