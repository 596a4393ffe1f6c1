package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/dqs/internal/evaluation"
	"github.com/wonny/dqs/internal/ingest"
	"github.com/wonny/dqs/internal/source"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <dir|index-url>",
	Short: "Score every CSV in a directory or linked from an index page",
	Long: `Discovers CSV files and scores them concurrently. A directory is walked
on disk; an http(s) URL is read as an HTML index and every linked .csv
is fetched.

Example:
  dqs scan ./exports --recursive --workers 8
  dqs scan https://example.com/exports/`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var (
	scanRecursive bool
	scanWorkers   int
	scanWeights   string
	scanJSON      bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", false, "descend into subdirectories")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 4, "files scored in parallel")
	scanCmd.Flags().StringVar(&scanWeights, "weights", "", "YAML weight file (default from DQS_WEIGHTS_FILE)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print results as JSON")
}

// scanRow is one line of scan output
type scanRow struct {
	Source    string  `json:"source"`
	ID        string  `json:"id,omitempty"`
	Rows      int     `json:"rows"`
	Columns   int     `json:"columns"`
	BaseScore float64 `json:"base_score"`
	Grade     string  `json:"grade,omitempty"`
	AuditHash string  `json:"audit_hash,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newCLILogger(cmd, cfg)

	rt, err := newRuntime(ctx, cfg, log, runtimeOptions{weightsFile: scanWeights})
	if err != nil {
		return err
	}
	defer rt.Close()

	var results []evaluation.FileResult
	if source.IsRemote(target) {
		results, err = scanRemote(ctx, rt, target)
	} else {
		results, err = scanDir(ctx, rt, target)
	}
	if err != nil {
		return err
	}

	rows := make([]scanRow, 0, len(results))
	failed := 0
	for _, r := range results {
		row := scanRow{Source: r.Path}
		if r.Report != nil {
			row.ID = r.Report.ID
			row.Rows = r.Report.Metadata.RowCount
			row.Columns = r.Report.Metadata.ColumnCount()
			row.BaseScore = r.Report.BaseScore
			row.Grade = r.Report.Grade
			row.AuditHash = r.Report.Metadata.AuditHash
		}
		if r.Err != nil && r.Report == nil {
			row.Error = r.Err.Error()
			failed++
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		return PrintJSON(out, rows)
	}

	if len(rows) == 0 {
		PrintWarning(out, fmt.Sprintf("No CSV files found in %s", target))
		return nil
	}

	widths := []int{40, 8, 6, 8, 6, 12}
	PrintTableHeader(out, []string{"Source", "Rows", "Cols", "Score", "Grade", "Audit"}, widths)
	for _, row := range rows {
		if row.Error != "" {
			PrintTableRow(out, []string{row.Source, "-", "-", "-", "-", "❌ " + row.Error}, widths)
			continue
		}
		PrintTableRow(out, []string{
			row.Source,
			fmt.Sprintf("%d", row.Rows),
			fmt.Sprintf("%d", row.Columns),
			fmt.Sprintf("%.2f", row.BaseScore),
			row.Grade,
			shortHash(row.AuditHash),
		}, widths)
	}
	fmt.Fprintln(out)
	PrintSuccess(out, fmt.Sprintf("Scored %d of %d files", len(rows)-failed, len(rows)))
	return nil
}

func scanDir(ctx context.Context, rt *runtime, dir string) ([]evaluation.FileResult, error) {
	files, err := source.DiscoverFiles(dir, source.DiscoverOptions{
		Recursive: scanRecursive,
		MaxSize:   rt.cfg.Ingest.MaxUploadBytes(),
	})
	if err != nil {
		return nil, err
	}
	return rt.evaluator.EvaluateBatch(ctx, files, ingest.LoadOptions{}, scanWorkers)
}

// scanRemote fetches linked files one at a time; the fetcher paces requests
func scanRemote(ctx context.Context, rt *runtime, indexURL string) ([]evaluation.FileResult, error) {
	fetcher := rt.fetcher()
	links, err := fetcher.DiscoverLinks(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	results := make([]evaluation.FileResult, 0, len(links))
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := evaluation.FileResult{Path: link}
		table, err := fetcher.Fetch(ctx, link, ingest.LoadOptions{})
		if err != nil {
			result.Err = err
		} else {
			result.Report, result.Err = rt.evaluator.Evaluate(ctx, link, table)
		}
		results = append(results, result)
	}
	return results, nil
}
