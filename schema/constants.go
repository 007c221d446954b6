package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for snapshots and history.
	DatabaseBackend string

	// RiskBand represents the strain classification of a score.
	RiskBand string

	// ReportKind represents one of the timesheet reports.
	ReportKind string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
	XLSXOut OutputMode = "xlsx"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Strain risk bands, highest first.
const (
	CriticalBand RiskBand = "Critical"
	HighRiskBand RiskBand = "High Risk"
	ModerateBand RiskBand = "Moderate"
	SafeBand     RiskBand = "Safe"
)

// All report kinds supported.
const (
	CategoryReport ReportKind = "category"
	SummaryReport  ReportKind = "summary"
	DetailedReport ReportKind = "detailed"
	SprintReport   ReportKind = "sprint"
	AllReports     ReportKind = "all"
)

// Band thresholds, inclusive on the lower bound.
const (
	CriticalThreshold = 12.0
	HighRiskThreshold = 8.0
	ModerateThreshold = 5.0
)

// CurrentPeriodLabel is the label of the terminal trend point.
const CurrentPeriodLabel = "Current"

// AllAuthors is the author filter value that disables filtering.
const AllAuthors = "All"

// UnlabeledCategory is used for worklog entries without labels.
const UnlabeledCategory = "Unlabeled"

// GrandTotalLabel names the total row and column of the burned capacity pivot.
const GrandTotalLabel = "Grand Total"

// EMAFormula is shown alongside the strain chart.
const EMAFormula = "New Score = (Current OT × 0.4) + (Previous Score × 0.6)"

// Preference names persisted for the report layout.
const (
	OvertimeUIPref = "overtimeUIEnabled"
	CapacityUIPref = "availableCapacityUIEnabled"
)

// AllRiskBands lists bands from highest to lowest.
var AllRiskBands = []RiskBand{CriticalBand, HighRiskBand, ModerateBand, SafeBand}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
	XLSXOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidReportKinds lists the kinds accepted by the report command and API.
var ValidReportKinds = map[ReportKind]struct{}{
	CategoryReport: {},
	SummaryReport:  {},
	DetailedReport: {},
	SprintReport:   {},
	AllReports:     {},
}

// ValidPreferences lists preference names that may be stored.
var ValidPreferences = map[string]struct{}{
	OvertimeUIPref: {},
	CapacityUIPref: {},
}

// bandColors maps each band to the hex color used by chart consumers.
var bandColors = map[RiskBand]string{
	CriticalBand: "#dc3545",
	HighRiskBand: "#fd7e14",
	ModerateBand: "#ffc107",
	SafeBand:     "#28a745",
}

// Color returns the hex color for the band.
func (b RiskBand) Color() string {
	if c, ok := bandColors[b]; ok {
		return c
	}
	return bandColors[SafeBand]
}

// BackgroundColor returns the translucent fill color for the band.
func (b RiskBand) BackgroundColor() string {
	return b.Color() + "20"
}
