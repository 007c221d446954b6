// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Timesheet MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Timesheet Strain Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_strain_trend ---
	s.AddTool(mcp.NewTool("get_strain_trend",
		mcp.WithDescription("Synthesize the smoothed workload strain trend of every employee in a worklog."),
		mcp.WithString("worklog_path", mcp.Description("Path to a CSV or XLSX worklog export.")),
		mcp.WithString("snapshot_id", mcp.Description("ID of a stored worklog snapshot. Takes precedence over worklog_path.")),
		mcp.WithString("author", mcp.Description("Only include this author. Defaults to all authors.")),
		mcp.WithNumber("seed", mcp.Description("Seed of the noise source, for reproducible trends.")),
		mcp.WithBoolean("record", mcp.Description("Record the run in the strain history store.")),
	), h.handleGetStrainTrend)

	// --- 2. Tool: get_report ---
	s.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Build a timesheet report from a worklog."),
		mcp.WithString("kind", mcp.Description("Report kind."), mcp.Required(), mcp.Enum("category", "summary", "detailed", "sprint", "all")),
		mcp.WithString("worklog_path", mcp.Description("Path to a CSV or XLSX worklog export.")),
		mcp.WithString("snapshot_id", mcp.Description("ID of a stored worklog snapshot. Takes precedence over worklog_path.")),
		mcp.WithString("author", mcp.Description("Only include this author. Defaults to all authors.")),
		mcp.WithString("base_url", mcp.Description("Issue tracker URL prefix used for ticket links.")),
	), h.handleGetReport)

	// --- 3. Tool: get_holidays ---
	s.AddTool(mcp.NewTool("get_holidays",
		mcp.WithDescription("List the configured holidays, optionally as a month calendar."),
		mcp.WithString("month", mcp.Description("Month to lay out as a Sunday-first calendar (YYYY-MM).")),
	), h.handleGetHolidays)

	return s
}

// StartMCPServer starts the Timesheet MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
