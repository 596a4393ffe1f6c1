package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/store"
	"github.com/wonny/dqs/pkg/database"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show stored evaluations",
	Long: `Lists recent evaluations from the history database, or prints one stored
report when an id is given. Requires DATABASE_URL.

Example:
  dqs history --limit 50
  dqs history --audit-hash 3f2a...
  dqs history 0b7e6f0e-... --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyLimit     int
	historyAuditHash string
	historyJSON      bool
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of evaluations to list")
	historyCmd.Flags().StringVar(&historyAuditHash, "audit-hash", "", "only evaluations of tables with this structure")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newCLILogger(cmd, cfg)

	db, err := database.New(ctx, cfg)
	if errors.Is(err, database.ErrDisabled) {
		return fmt.Errorf("history requires DATABASE_URL")
	}
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := store.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		report, err := repo.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if historyJSON {
			return PrintJSON(out, report)
		}
		PrintReport(out, report, false)
		return nil
	}

	var summaries []contracts.EvaluationSummary
	if historyAuditHash != "" {
		summaries, err = repo.ListByAuditHash(ctx, historyAuditHash)
	} else {
		summaries, err = repo.ListRecent(ctx, historyLimit)
	}
	if err != nil {
		return err
	}
	log.WithField("count", len(summaries)).Debug("Loaded evaluation history")

	if historyJSON {
		return PrintJSON(out, summaries)
	}
	if len(summaries) == 0 {
		PrintWarning(out, "No evaluations stored yet")
		return nil
	}

	widths := []int{36, 20, 30, 8, 6}
	PrintTableHeader(out, []string{"ID", "Evaluated", "Source", "Score", "Grade"}, widths)
	for _, s := range summaries {
		PrintTableRow(out, []string{
			s.ID,
			s.EvaluatedAt.Format("2006-01-02 15:04:05"),
			s.Source,
			fmt.Sprintf("%.2f", s.BaseScore),
			s.Grade,
		}, widths)
	}
	return nil
}
