package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/repository/postgres"
	"github.com/andresuchdata/bizdash-go/internal/storage"
	"github.com/andresuchdata/bizdash-go/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const (
	dbKey          ctxKey = "db"
	snapshotDirKey        = "snapshot-dir"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	cfg := config.Load()
	cfg.Database.URL = c.String("db-url")

	db, err := postgres.NewDB(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

// applyGlobalFlags folds the source and date flags into the loaded config.
func applyGlobalFlags(c *cli.Context) error {
	cfg := config.Load()
	logger.Setup("debug", c.String("log-level"))

	if path := c.String("xlsx"); path != "" {
		cfg.Sheets.WorkbookPath = path
	}
	if key := c.String("snapshot-key"); key != "" {
		path, err := fetchSnapshot(c, cfg.Storage, key)
		if err != nil {
			return err
		}
		cfg.Sheets.WorkbookPath = path
	}
	if date := c.String("date"); date != "" {
		cfg.Pipeline.ReferenceDate = date
	}
	return nil
}

// fetchSnapshot downloads the stored workbook into a temp dir that
// cleanupSnapshot removes once the command finishes.
func fetchSnapshot(c *cli.Context, cfg config.StorageConfig, key string) (string, error) {
	store, err := storage.New(cfg)
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp("", "dashboard-snapshot-")
	if err != nil {
		return "", fmt.Errorf("failed creating snapshot dir: %w", err)
	}
	c.App.Metadata[snapshotDirKey] = dir

	path, err := storage.FetchWorkbook(c.Context, store, key, dir)
	if err != nil {
		return "", err
	}
	log.Info().Str("key", key).Str("path", path).Msg("snapshot downloaded")
	return path, nil
}

func cleanupSnapshot(c *cli.Context) error {
	if dir, ok := c.App.Metadata[snapshotDirKey].(string); ok {
		return os.RemoveAll(dir)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:     "dashboard",
		Metadata: map[string]interface{}{},
		Usage:    "Compute, export and archive the business dashboard report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "xlsx",
				Usage:   "Read the sources from a local Excel workbook instead of Google Sheets",
				EnvVars: []string{"WORKBOOK_PATH"},
			},
			&cli.StringFlag{
				Name:    "snapshot-key",
				Usage:   "Read the sources from an .xlsx snapshot stored in object storage under this key",
				EnvVars: []string{"SNAPSHOT_KEY"},
			},
			&cli.StringFlag{
				Name:    "date",
				Usage:   "Reference date (YYYY-MM-DD) for rotation metrics; defaults to today",
				EnvVars: []string{"PIPELINE_REFERENCE_DATE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: applyGlobalFlags,
		After:  cleanupSnapshot,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Compute the report and print it as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write to a file instead of stdout"},
				},
				Action: runReport,
			},
			{
				Name:  "export",
				Usage: "Compute the report and write it as JSON or Excel, optionally uploading it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: formatJSON, Usage: "json or xlsx"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file; defaults to dashboard-<date>.<format>"},
					&cli.BoolFlag{Name: "upload", Usage: "Upload the export to object storage"},
				},
				Action: exportReport,
			},
			{
				Name:  "archive",
				Usage: "Store report runs in postgres",
				Subcommands: []*cli.Command{
					{
						Name:   "save",
						Usage:  "Compute the report and archive the run",
						Flags:  []cli.Flag{newDBURLFlag()},
						Before: initDB,
						After:  closeDB,
						Action: archiveSave,
					},
					{
						Name:  "list",
						Usage: "List the latest archived runs",
						Flags: []cli.Flag{
							newDBURLFlag(),
							&cli.IntFlag{Name: "limit", Value: 20},
						},
						Before: initDB,
						After:  closeDB,
						Action: archiveList,
					},
				},
			},
			{
				Name:   "verify",
				Usage:  "Check access to the spreadsheet and list its sheets",
				Action: verify,
			},
			{
				Name:  "snapshot",
				Usage: "Export the spreadsheet as .xlsx through the Drive API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true},
					&cli.BoolFlag{Name: "upload", Usage: "Also upload the snapshot to object storage"},
				},
				Action: snapshot,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
