// Package core has core logic for timesheet reports and workload strain trends.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/timesheet/core/agg"
	"github.com/huangsam/timesheet/core/strain"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/iocache"
	"github.com/huangsam/timesheet/internal/outwriter"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/huangsam/timesheet/internal/worklog"
	"github.com/huangsam/timesheet/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ErrNoSource is returned when neither a worklog file nor a snapshot was given.
var ErrNoSource = errors.New("a worklog file or --snapshot is required")

// worklogLoader reads worklog files. Tests may swap it out.
var worklogLoader contract.WorklogLoader = worklog.NewLoader()

// Source is a filtered worklog together with where it came from.
type Source struct {
	Name    string
	BaseURL string
	Entries []schema.WorklogEntry
}

// snapshotStore returns the snapshot store of mgr, or nil without one.
func snapshotStore(mgr contract.StoreManager) contract.SnapshotStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetSnapshotStore()
}

// historyStore returns the history store of mgr, or nil without one.
func historyStore(mgr contract.StoreManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}

// LoadSource resolves the worklog named by cfg and applies the date and author filters.
// A snapshot takes precedence over a worklog path. An explicit base URL overrides
// the one stored with the snapshot.
func LoadSource(cfg *contract.Config, mgr contract.StoreManager) (Source, error) {
	var src Source
	switch {
	case cfg.SnapshotID != "":
		snap, err := iocache.LoadWorklog(snapshotStore(mgr), cfg.SnapshotID)
		if errors.Is(err, iocache.ErrNotFound) {
			return src, fmt.Errorf("snapshot %s: %w", cfg.SnapshotID, err)
		}
		if err != nil {
			return src, err
		}
		src = Source{Name: snap.SourceName, BaseURL: snap.BaseURL, Entries: snap.Entries}
	case cfg.WorklogPath != "":
		entries, err := worklogLoader.Load(cfg.WorklogPath)
		if err != nil {
			return src, err
		}
		src = Source{Name: cfg.WorklogPath, Entries: entries}
	default:
		return src, ErrNoSource
	}

	if cfg.BaseURL != "" {
		src.BaseURL = cfg.BaseURL
	}
	src.Entries = FilterByDateRange(src.Entries, cfg.StartDate, cfg.EndDate)
	src.Entries = FilterByAuthor(src.Entries, cfg.Author)
	return src, nil
}

// loadHolidays reads the stored holidays, warning and continuing without them on failure.
func loadHolidays(mgr contract.StoreManager) []string {
	holidays, err := iocache.LoadHolidays(snapshotStore(mgr))
	if err != nil {
		contract.LogWarn("Failed to load holidays", err)
		return []string{}
	}
	return holidays
}

// dailyHours returns the configured working hours per day.
func dailyHours(cfg *contract.Config) float64 {
	if cfg.DailyHours <= 0 {
		return contract.DefaultDailyHours
	}
	return cfg.DailyHours
}

// readPayload decodes a strain payload file of the form {burnoutData, weeklyOvertimeData}.
func readPayload(path string) (schema.StrainPayload, error) {
	var payload schema.StrainPayload
	data, err := os.ReadFile(path)
	if err != nil {
		return payload, fmt.Errorf("failed to read payload: %w", err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("failed to decode payload %s: %w", path, err)
	}
	return payload, nil
}

// filterPayloadByAuthor keeps the strain records of one author.
func filterPayloadByAuthor(payload schema.StrainPayload, author string) schema.StrainPayload {
	if author == "" || author == schema.AllAuthors {
		return payload
	}
	kept := make([]schema.EmployeeStrainRecord, 0, 1)
	for _, rec := range payload.BurnoutData {
		if rec.Author == author {
			kept = append(kept, rec)
		}
	}
	payload.BurnoutData = kept
	return payload
}

// GetStrainPayload returns the strain aggregate for cfg and the name of its source.
// A payload file is used as is, otherwise the worklog is aggregated per week.
func GetStrainPayload(cfg *contract.Config, mgr contract.StoreManager) (schema.StrainPayload, string, error) {
	if cfg.PayloadPath != "" {
		payload, err := readPayload(cfg.PayloadPath)
		if err != nil {
			return payload, "", err
		}
		return filterPayloadByAuthor(payload, cfg.Author), cfg.PayloadPath, nil
	}

	src, err := LoadSource(cfg, mgr)
	if err != nil {
		return schema.StrainPayload{}, "", err
	}
	return agg.BuildStrainPayload(src.Entries, loadHolidays(mgr), dailyHours(cfg)), src.Name, nil
}

// GetStrainChart builds the strain chart for cfg and records the run when a history store is configured.
func GetStrainChart(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.StrainChart, error) {
	start := time.Now()
	payload, source, err := GetStrainPayload(cfg, mgr)
	if err != nil {
		return schema.StrainChart{}, err
	}
	if !shouldSuppressHeader(ctx) {
		logRunHeader(cfg, source)
	}

	chart := strain.BuildChart(payload, strain.NewSeededSource(cfg.Seed))
	if shouldRecordHistory(ctx) {
		recordStrainRun(historyStore(mgr), cfg, source, start, chart)
	}
	return chart, nil
}

// ExecuteStrain builds the strain chart and prints it.
// It serves as the main entry point for the 'strain' command.
func ExecuteStrain(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	chart, err := GetStrainChart(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteStrainChart(chart, cfg)
}

// loadLayout reads both layout preferences and lays out the combined report.
func loadLayout(mgr contract.StoreManager) schema.Layout {
	store := snapshotStore(mgr)
	capacity, err := iocache.LoadPreference(store, schema.CapacityUIPref)
	if err != nil {
		contract.LogWarn("Failed to load capacity preference", err)
	}
	overtime, err := iocache.LoadPreference(store, schema.OvertimeUIPref)
	if err != nil {
		contract.LogWarn("Failed to load overtime preference", err)
	}
	return view.PageBreaks(capacity, overtime)
}

// GetReportBundle resolves the worklog for cfg and builds every report from it.
func GetReportBundle(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.ReportBundle, Source, error) {
	src, err := LoadSource(cfg, mgr)
	if err != nil {
		return schema.ReportBundle{}, src, err
	}
	if !shouldSuppressHeader(ctx) {
		logRunHeader(cfg, src.Name)
	}
	return BuildReportBundle(cfg, mgr, src), src, nil
}

// BuildReportBundle builds every report from an already filtered source.
// The strain chart of the bundle is never recorded.
func BuildReportBundle(cfg *contract.Config, mgr contract.StoreManager, src Source) schema.ReportBundle {
	holidays := loadHolidays(mgr)
	payload := agg.BuildStrainPayload(src.Entries, holidays, dailyHours(cfg))
	author := cfg.Author
	if author == "" {
		author = schema.AllAuthors
	}
	return schema.ReportBundle{
		DateRange: view.FormatDateRange(cfg.StartDate, cfg.EndDate),
		Author:    author,
		Category:  CategoryTotals(src.Entries),
		Summary:   Summary(src.Entries),
		Detailed:  Detailed(src.Entries, src.BaseURL),
		Sprint:    SprintClosure(src.Entries, holidays),
		Strain:    strain.BuildChart(payload, strain.NewSeededSource(cfg.Seed)),
		Layout:    loadLayout(mgr),
	}
}

// ExecuteReport returns the executor that prints one report kind.
// It serves as the main entry point for the 'report' subcommands.
func ExecuteReport(kind schema.ReportKind) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
		if _, ok := schema.ValidReportKinds[kind]; !ok {
			return fmt.Errorf("unsupported report kind: %s", kind)
		}
		bundle, _, err := GetReportBundle(ctx, cfg, mgr)
		if err != nil {
			return err
		}
		return outwriter.WriteReport(kind, bundle, cfg)
	}
}
