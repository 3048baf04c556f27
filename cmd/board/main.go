package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/taskboard/taskboard/internal/board"
	"github.com/taskboard/taskboard/internal/client"
	"github.com/taskboard/taskboard/internal/domain/task"
	"github.com/taskboard/taskboard/internal/infrastructure/config"
	"github.com/taskboard/taskboard/internal/infrastructure/logger"
	"github.com/taskboard/taskboard/internal/transfer"
	"github.com/taskboard/taskboard/internal/ui"
	"go.uber.org/zap"
)

func main() {
	var (
		baseURL    string
		importPath string
		exportPath string
		showID     int64
		summary    bool
		logLevel   string
	)

	flag.StringVar(&baseURL, "url", "", "Task service base URL (default: client.base_url)")
	flag.StringVar(&importPath, "import", "", "Create the tasks of a YAML file and exit")
	flag.StringVar(&exportPath, "export", "", "Write every task as YAML to a file (- for stdout) and exit")
	flag.Int64Var(&showID, "show", 0, "Print one task as YAML and exit")
	flag.BoolVar(&summary, "summary", false, "Print the server's board metrics and exit")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}

	// The terminal belongs to the board, so logs go to a file
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "json",
		Output:     cfg.Client.LogFile,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	api, err := client.NewFromConfig(cfg.Client, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid client configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch {
	case importPath != "":
		if err := runImport(ctx, api, importPath); err != nil {
			log.Error("Import failed", zap.String("file", importPath), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		return
	case exportPath != "":
		if err := runExport(ctx, api, exportPath); err != nil {
			log.Error("Export failed", zap.String("file", exportPath), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		return
	case showID != 0:
		if err := runShow(ctx, api, showID, os.Stdout); err != nil {
			log.Error("Show failed", zap.Int64("task_id", showID), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}
		return
	case summary:
		if err := runSummary(ctx, api, os.Stdout); err != nil {
			log.Error("Summary failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Summary failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctrl := board.NewController(api,
		board.WithReloadPolicy(board.PolicyFromConfig(cfg.Client.ReloadAfterMutation)),
		board.WithLogger(log),
	)

	log.Info("Starting board", zap.String("base_url", api.BaseURL()))
	p := tea.NewProgram(ui.New(ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func runImport(ctx context.Context, api *client.Client, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := transfer.Decode(f)
	if err != nil {
		return err
	}
	n, err := transfer.Import(ctx, api, doc)
	fmt.Printf("Imported %d of %d tasks\n", n, len(doc.Tasks))
	return err
}

func runExport(ctx context.Context, api *client.Client, path string) (err error) {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	n, err := transfer.Export(ctx, api, w)
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Printf("Exported %d tasks to %s\n", n, path)
	}
	return nil
}

func runShow(ctx context.Context, api *client.Client, id int64, w io.Writer) error {
	t, err := api.Get(ctx, id)
	if err != nil {
		return err
	}
	return transfer.Encode(w, []task.Task{*t})
}

func runSummary(ctx context.Context, api *client.Client, w io.Writer) error {
	s, err := api.Summary(ctx)
	if err != nil {
		return err
	}

	parts := []string{fmt.Sprintf("Total %d", s.Total)}
	for _, status := range task.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", status.Label(), s.ByStatus[status]))
	}
	parts = append(parts,
		fmt.Sprintf("Overdue %d", s.Overdue),
		fmt.Sprintf("%d%% complete", s.CompletionRate),
	)
	_, err = fmt.Fprintln(w, strings.Join(parts, " | "))
	return err
}
