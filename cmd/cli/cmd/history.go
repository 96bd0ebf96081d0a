package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gclog-analysis/internal/repository"
	apperrors "github.com/gclog-analysis/pkg/errors"
	"github.com/gclog-analysis/pkg/model"
)

var (
	// History command flags
	historyLimit int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted analysis runs",
	Long: `List analysis runs previously persisted with analyze --save,
newest first.`,
	RunE: runHistory,
}

// historyDeleteCmd removes a persisted run.
var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a persisted analysis run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
}

func openHistoryRepo() (*repository.GormRunRepository, error) {
	conf := GetConfig()

	repo, err := repository.OpenRunRepository(&repository.DBConfig{
		Type:     conf.Database.Type,
		Path:     conf.Database.Path,
		Host:     conf.Database.Host,
		Port:     conf.Database.Port,
		Database: conf.Database.Database,
		User:     conf.Database.User,
		Password: conf.Database.Password,
		MaxConns: conf.Database.MaxConns,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to open run history", err)
	}

	return repo, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	repo, err := openHistoryRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	runs, err := repo.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No persisted runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSOURCE\tREGION\tALLOCATIONS")
	for _, run := range runs {
		region := "unknown"
		if run.Report.HasRegionSize() {
			region = model.FormatBytes(run.Report.RegionSize)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
			run.ID, run.CreatedAt, run.Report.Source, region, run.Report.TotalAllocations)
	}

	return w.Flush()
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("invalid run id: %s", args[0]))
	}

	repo, err := openHistoryRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.DeleteRun(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Printf("Deleted run %d\n", id)
	return nil
}
