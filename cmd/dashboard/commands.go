package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/app"
	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/andresuchdata/bizdash-go/internal/export"
	"github.com/andresuchdata/bizdash-go/internal/pipeline"
	"github.com/andresuchdata/bizdash-go/internal/repository/postgres"
	"github.com/andresuchdata/bizdash-go/internal/sheets"
	"github.com/andresuchdata/bizdash-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const (
	formatJSON = "json"
	formatXLSX = "xlsx"
)

func buildReport(c *cli.Context) (*domain.DashboardReport, error) {
	a, err := app.New(c.Context, config.Load(), app.Options{})
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.Service.GetReport(c.Context, "")
}

func runReport(c *cli.Context) error {
	report, err := buildReport(c)
	if err != nil {
		return err
	}
	return writeOutput(c.String("out"), func(w io.Writer) error {
		return export.WriteJSON(report, w)
	})
}

func exportReport(c *cli.Context) error {
	format := strings.ToLower(c.String("format"))
	render, err := renderer(format)
	if err != nil {
		return err
	}

	report, err := buildReport(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render(report, &buf); err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		out = fmt.Sprintf("dashboard-%s.%s", report.ReferenceDate, format)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", out, err)
	}
	log.Info().Str("path", out).Int("bytes", buf.Len()).Msg("export written")

	if c.Bool("upload") {
		return upload(c, filepath.Base(out), buf.Bytes())
	}
	return nil
}

func renderer(format string) (func(*domain.DashboardReport, io.Writer) error, error) {
	switch format {
	case formatJSON:
		return export.WriteJSON, nil
	case formatXLSX:
		return export.WriteWorkbook, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want json or xlsx)", format)
	}
}

func upload(c *cli.Context, name string, data []byte) error {
	cfg := config.Load()
	store, err := storage.New(cfg.Storage)
	if err != nil {
		return err
	}

	key := storage.ObjectKey(cfg.Storage.Prefix, name)
	if err := store.UploadObject(c.Context, key, data); err != nil {
		return err
	}

	objects, err := store.ListObjects(c.Context, storage.ObjectKey(cfg.Storage.Prefix, ""))
	if err != nil {
		log.Warn().Err(err).Msg("uploaded, but listing the prefix failed")
	} else {
		log.Info().Str("key", key).Int("objects_under_prefix", len(objects)).Msg("export uploaded")
	}
	return nil
}

func archiveSave(c *cli.Context) error {
	db := c.Context.Value(dbKey).(*postgres.DB)
	if err := db.Migrate(c.Context, pipeline.Schema); err != nil {
		return err
	}

	a, err := app.New(c.Context, config.Load(), app.Options{Archive: pipeline.NewRepository(db.DB)})
	if err != nil {
		return err
	}
	defer a.Close()

	ref, err := a.Service.ReferenceDate("")
	if err != nil {
		return err
	}
	_, run, err := a.Orchestrator.Run(c.Context, ref)
	if err != nil {
		return err
	}

	return json.NewEncoder(c.App.Writer).Encode(run)
}

func archiveList(c *cli.Context) error {
	db := c.Context.Value(dbKey).(*postgres.DB)
	runs, err := pipeline.NewRepository(db.DB).ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tREFERENCE\tSTATUS\tSALES\tEXPENSES\tPURCHASES\tINVENTORY\tDIAGNOSTICS\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.ReferenceDate.Format("2006-01-02"), r.Status,
			r.SalesRows, r.ExpenseRows, r.PurchaseRows, r.InventoryRows,
			r.DiagnosticCount, r.StartedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func verify(c *cli.Context) error {
	backend, err := sheets.Open(c.Context, config.Load().Sheets)
	if err != nil {
		return err
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}

	info, err := backend.Verify(c.Context)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func snapshot(c *cli.Context) error {
	cfg := config.Load()
	exporter, err := sheets.NewExporter(c.Context, cfg.Sheets)
	if err != nil {
		return err
	}

	wb, raw, err := exporter.Snapshot(c.Context, cfg.Sheets.SpreadsheetID)
	if err != nil {
		return err
	}
	defer wb.Close()

	info, err := wb.Verify(c.Context)
	if err != nil {
		return err
	}

	out := c.String("out")
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", out, err)
	}
	log.Info().Str("path", out).Strs("sheets", info.Sheets).Msg("snapshot written")

	if c.Bool("upload") {
		return upload(c, filepath.Base(out), raw)
	}
	return nil
}

func writeOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
