package core

import (
	"fmt"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
)

// recordStrainRun stores one strain run with every synthesized series.
// Tracking failures are logged and never fail the command.
func recordStrainRun(store contract.HistoryStore, cfg *contract.Config, source string, start time.Time, chart schema.StrainChart) {
	if store == nil {
		return
	}
	configParams := map[string]any{
		"source":      source,
		"author":      cfg.Author,
		"seed":        cfg.Seed,
		"daily_hours": dailyHours(cfg),
		"periods":     len(chart.Labels),
	}
	runID, err := store.BeginRun(start, configParams)
	if err != nil {
		contract.LogWarn("Strain tracking initialization failed", err)
		return
	}
	if runID <= 0 {
		return
	}

	for i, series := range chart.Series {
		if err := store.RecordSeries(runID, i, series); err != nil {
			contract.LogWarn(fmt.Sprintf("Strain tracking failed for %s", series.Author), err)
		}
	}

	if err := store.EndRun(runID, time.Now(), len(chart.Series)); err != nil {
		contract.LogWarn("Failed to finalize strain tracking", err)
	}
}
