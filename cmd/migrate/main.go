package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/taskboard/taskboard/internal/infrastructure/config"
	"github.com/taskboard/taskboard/internal/infrastructure/logger"
	"github.com/taskboard/taskboard/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

// schemaCommand is one migrate subcommand. Commands with a nil apply only
// touch the migrations directory.
type schemaCommand struct {
	args    string
	summary string
	minArgs int
	local   func(w io.Writer, log *zap.Logger, dir string, args []string) error
	apply   func(m *migration.Migrator, log *zap.Logger, args []string) error
}

var commandOrder = []string{"up", "down", "step", "version", "force", "create", "list"}

var commands = map[string]schemaCommand{
	"up": {
		summary: "Apply all pending migrations",
		apply:   func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() },
	},
	"down": {
		summary: "Roll back all migrations",
		apply:   func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() },
	},
	"step": {
		args:    "<n>",
		summary: "Apply n migrations (negative rolls back)",
		minArgs: 1,
		apply: func(m *migration.Migrator, _ *zap.Logger, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		},
	},
	"version": {
		summary: "Show the applied schema version",
		apply:   printVersion,
	},
	"force": {
		args:    "<version>",
		summary: "Mark a version as applied without running it",
		minArgs: 1,
		apply: func(m *migration.Migrator, log *zap.Logger, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			log.Warn("Forcing schema version", zap.Int("version", version))
			return m.Force(version)
		},
	},
	"create": {
		args:    "<name> [description]",
		summary: "Write the next numbered up/down pair",
		minArgs: 1,
		local:   createPair,
	},
	"list": {
		summary: "List migration files",
		local:   listPairs,
	},
}

func main() {
	dir := flag.String("path", "", "Migrations directory (default: ./migrations, then ../../migrations next to the binary)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() { usage(flag.CommandLine.Output()) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.DateTime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(os.Stdout, log, *dir, flag.Args()); err != nil {
		log.Error("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func run(w io.Writer, log *zap.Logger, dir string, argv []string) error {
	name, args := argv[0], argv[1:]
	cmd, ok := commands[name]
	if !ok {
		usage(w)
		return fmt.Errorf("unknown command %q", name)
	}
	if len(args) < cmd.minArgs {
		return fmt.Errorf("usage: migrate %s %s", name, cmd.args)
	}

	dir, err := migrationsDir(dir)
	if err != nil {
		return err
	}
	log.Debug("Resolved migrations directory", zap.String("command", name), zap.String("dir", dir))

	if cmd.local != nil {
		return cmd.local(w, log, dir, args)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	m, err := openMigrator(&cfg.Database, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return cmd.apply(m, log, args)
}

// migrationsDir returns dir as an absolute path. An empty dir falls back to
// ./migrations and then to the repository layout next to the binary.
func migrationsDir(dir string) (string, error) {
	if dir == "" {
		dir = defaultMigrationsDir
		if _, err := os.Stat(dir); err != nil {
			if exe, exeErr := os.Executable(); exeErr == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsDir)
				if _, err := os.Stat(candidate); err == nil {
					dir = candidate
				}
			}
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve migrations directory: %w", err)
	}
	return abs, nil
}

func openMigrator(cfg *config.DatabaseConfig, dir string, log *zap.Logger) (*migration.Migrator, error) {
	if cfg.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("versioned migrations need the postgres driver, got %q; sqlite schemas are created on server start", cfg.Driver)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping database: %w", err), db.Close())
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return m, nil
}

func printVersion(m *migration.Migrator, log *zap.Logger, _ []string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func createPair(w io.Writer, log *zap.Logger, dir string, args []string) error {
	description := strings.Join(args[1:], " ")
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created", zap.String("version", mf.Version))
	_, err = fmt.Fprintf(w, "%s\n%s\n", mf.UpPath, mf.DownPath)
	return err
}

func listPairs(w io.Writer, _ *zap.Logger, dir string, _ []string) error {
	names, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Task board schema migrations (postgres)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: migrate [flags] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range commandOrder {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-22s %s\n", strings.TrimSpace(name+" "+cmd.args), cmd.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Connection settings come from config.toml or TASKBOARD_DATABASE_* variables.")
	fmt.Fprintln(w, "Flags:")
	flag.PrintDefaults()
}
