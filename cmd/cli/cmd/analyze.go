package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gclog-analysis/internal/formatter"
	"github.com/gclog-analysis/internal/parser/gclog"
	"github.com/gclog-analysis/internal/repository"
	"github.com/gclog-analysis/internal/storage"
	apperrors "github.com/gclog-analysis/pkg/errors"
	"github.com/gclog-analysis/pkg/model"
)

var (
	// Analyze command flags
	inputFile    string
	outputDir    string
	outputFormat string
	saveRun      bool
	remoteKey    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a G1 GC log for humongous allocations",
	Long: `Analyze a G1 GC log and report humongous object allocations.

The analyze command scans the log for humongous allocation requests and the
heap region size announcement, groups allocations into power-of-two region
size buckets capped at the region size, and computes allocation size
percentiles (min, p50, p75, p90, p99, max).

The rendered report goes to stdout. A machine-readable summary.json is
written to the output directory. With --save the run is persisted to the
configured run history database.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	binName := BinName()
	analyzeCmd.Example = `  # Analyze a local GC log
  ` + binName + ` analyze -i ./gc.log -o ./output

  # JSON output for scripting
  ` + binName + ` analyze -i ./gc.log --format json

  # Download the log from object storage, analyze and persist the run
  ` + binName + ` analyze --remote logs/prod/gc.log --save`

	analyzeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input GC log file")
	analyzeCmd.Flags().StringVarP(&outputDir, "output", "o", "./output", "Output directory for summary.json")
	analyzeCmd.Flags().StringVar(&outputFormat, "format", "", "Output format: table or json (default from config)")
	analyzeCmd.Flags().BoolVar(&saveRun, "save", false, "Persist the run to the history database")
	analyzeCmd.Flags().StringVar(&remoteKey, "remote", "", "Fetch the log from configured object storage by key")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	conf := GetConfig()

	if inputFile == "" && remoteKey == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "either --input or --remote is required")
	}

	localPath := inputFile
	source := inputFile

	if remoteKey != "" {
		downloaded, err := fetchRemoteLog(cmd, remoteKey)
		if err != nil {
			return err
		}
		localPath = downloaded
		source = remoteKey
	}

	info, err := os.Stat(localPath)
	if os.IsNotExist(err) {
		return apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("input file not found: %s", localPath))
	}
	if err == nil && info.Size() == 0 {
		return apperrors.New(apperrors.CodeEmptyFile, fmt.Sprintf("input file is empty: %s", localPath))
	}

	file, err := os.Open(localPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "failed to open input file", err)
	}
	defer file.Close()

	log.Info("Analyzing %s", source)
	startTime := time.Now()

	p := gclog.NewParser(&gclog.ParserOptions{Logger: log})
	rep, err := p.Parse(cmd.Context(), source, file)
	if err != nil {
		return err
	}

	log.Debug("Analysis took %s", time.Since(startTime))

	format := outputFormat
	if format == "" {
		format = conf.Analysis.DefaultFormat
	}

	f := formatter.NewRegistry().Get(format)
	rendered, err := f.Render(rep)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, rendered)

	if err := writeSummary(f, rep); err != nil {
		log.Warn("Failed to write summary: %v", err)
	}

	if saveRun {
		if err := persistRun(cmd, rep); err != nil {
			return err
		}
	}

	return nil
}

// fetchRemoteLog downloads the log behind key into the data dir and returns
// the local path.
func fetchRemoteLog(cmd *cobra.Command, key string) (string, error) {
	log := GetLogger()
	conf := GetConfig()

	store, err := storage.NewStorage(&conf.Storage)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeConfigError, "failed to create storage", err)
	}

	ok, err := store.Exists(cmd.Context(), key)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDownloadError, "failed to check remote log", err)
	}
	if !ok {
		return "", apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("remote log not found: %s", key))
	}

	if err := conf.EnsureDataDir(); err != nil {
		return "", apperrors.Wrap(apperrors.CodeConfigError, "failed to create data dir", err)
	}

	localPath := filepath.Join(conf.Analysis.DataDir, filepath.Base(key))
	log.Info("Downloading %s", store.GetURL(key))

	if err := store.DownloadFile(cmd.Context(), key, localPath); err != nil {
		return "", apperrors.Wrap(apperrors.CodeDownloadError, "failed to download log", err)
	}

	return localPath, nil
}

// writeSummary writes the machine-readable summary.json next to the report.
func writeSummary(f formatter.ResultFormatter, rep *model.Report) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(f.FormatSummary(rep), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(outputDir, "summary.json"), data, 0644)
}

// persistRun saves the finalized report to the run history database.
func persistRun(cmd *cobra.Command, rep *model.Report) error {
	log := GetLogger()
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
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to open run history", err)
	}
	defer repo.Close()

	id, err := repo.SaveRun(cmd.Context(), rep)
	if err != nil {
		return err
	}

	log.Info("Saved run %d", id)
	return nil
}
