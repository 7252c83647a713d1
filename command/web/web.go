package web

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"ci-dashboard/connectors/config"
	ccsv "ci-dashboard/connectors/csv"
	"ci-dashboard/domain/loss"
)

// Run starts the Echo web server behind the dashboard UI: JSON APIs over the
// in-memory session dataset plus an optional built SPA.
//
// Usage:
//
//	ci-dashboard web [-addr :8080] [-data ./data] [-ui ./ui/dist]
//
// The session starts from the CSVs in -data; when they are missing or
// unreadable the bundled sample dataset is loaded instead, so the dashboard
// always has something to render.
func Run(args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "http listen address (host:port)")
	dataDir := fs.String("data", "", "directory containing CSV files (default from config)")
	uiDir := fs.String("ui", "./ui/dist", "directory containing built UI (Vite dist)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	base := cfg.Data.Dir
	if *dataDir != "" {
		base = *dataDir
	}

	oae, losses := loadDataset(base, cfg)
	store := NewStore(cfg, oae, losses)
	e := echo.New()
	e.HideBanner = true
	registerRoutes(e, store)

	// Static UI (optional)
	indexPath := filepath.Join(*uiDir, "index.html")
	if fi, err := os.Stat(indexPath); err == nil && !fi.IsDir() {
		e.Static("/", *uiDir)
		e.GET("/", func(c echo.Context) error { return c.File(indexPath) })

		// Fallback to index.html for non-API 404s (SPA routing) while keeping
		// static assets working
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
				if !strings.HasPrefix(c.Request().URL.Path, "/api") {
					_ = c.File(indexPath)
					return
				}
			}
			e.DefaultHTTPErrorHandler(err, c)
		}
	}

	return e.Start(*addr)
}

// loadDataset reads the raw CSVs from dir, falling back to the bundled
// sample dataset when either file is missing or unreadable.
func loadDataset(dir string, cfg *config.Config) ([]loss.OAERecord, []loss.Record) {
	oaeTable, errOAE := ccsv.ReadTableFile(filepath.Join(dir, ccsv.OAEFile))
	lossTable, errLoss := ccsv.ReadTableFile(filepath.Join(dir, ccsv.LossFile))
	if errOAE != nil || errLoss != nil {
		if !errors.Is(errOAE, os.ErrNotExist) && errOAE != nil {
			slog.Warn(fmt.Sprintf("Failed to read %s: %v", ccsv.OAEFile, errOAE))
		}
		if !errors.Is(errLoss, os.ErrNotExist) && errLoss != nil {
			slog.Warn(fmt.Sprintf("Failed to read %s: %v", ccsv.LossFile, errLoss))
		}
		slog.Info(fmt.Sprintf("Using bundled sample dataset (no readable CSVs in %s)", dir))
		return ccsv.SampleOAE(), ccsv.SampleLosses()
	}
	slog.Info(fmt.Sprintf("Loaded dataset from %s", dir))
	return loss.NormalizeOAE(oaeTable.Headers, oaeTable.Rows, cfg.Dashboard.DefaultTargetOAE),
		loss.NormalizeLosses(lossTable.Headers, lossTable.Rows)
}
