package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/timesheet/core"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/iocache"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/huangsam/timesheet/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// sourceConfig clones the base config with the worklog arguments of a request.
func (h *toolHandler) sourceConfig(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	cfg.PayloadPath = ""
	if p := request.GetString("worklog_path", ""); p != "" {
		cfg.WorklogPath = p
	}
	if id := request.GetString("snapshot_id", ""); id != "" {
		cfg.SnapshotID = id
	}
	if a := request.GetString("author", ""); a != "" {
		cfg.Author = strings.TrimSpace(a)
	}
	return cfg
}

func (h *toolHandler) handleGetStrainTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.sourceConfig(request)
	if seed := request.GetInt("seed", 0); seed > 0 {
		cfg.Seed = uint64(seed)
	}

	ctx = core.WithSuppressHeader(ctx)
	if !request.GetBool("record", false) {
		ctx = core.WithoutHistory(ctx)
	}

	chart, err := core.GetStrainChart(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("strain synthesis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(chart, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := schema.ReportKind(request.GetString("kind", ""))
	if _, ok := schema.ValidReportKinds[kind]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report kind %q. must be category, summary, detailed, sprint, all", kind)), nil
	}
	cfg := h.sourceConfig(request)
	if u := request.GetString("base_url", ""); u != "" {
		cfg.BaseURL = u
	}

	bundle, _, err := core.GetReportBundle(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	var result any
	switch kind {
	case schema.CategoryReport:
		result = bundle.Category
	case schema.SummaryReport:
		result = bundle.Summary
	case schema.DetailedReport:
		result = bundle.Detailed
	case schema.SprintReport:
		result = bundle.Sprint
	default:
		result = bundle
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetHolidays(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var store contract.SnapshotStore
	if h.mgr != nil {
		store = h.mgr.GetSnapshotStore()
	}
	holidays, err := iocache.LoadHolidays(store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load holidays: %v", err)), nil
	}

	result := map[string]any{"holidays": holidays}
	if m := request.GetString("month", ""); m != "" {
		month, err := time.Parse(contract.MonthLayout, m)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid month %q. expected YYYY-MM", m)), nil
		}
		result["month"] = month.Format(contract.MonthLayout)
		result["weeks"] = view.Calendar(month.Year(), month.Month(), holidays)
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
