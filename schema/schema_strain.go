package schema

// EmployeeStrainRecord is the current-period strain state of one employee.
type EmployeeStrainRecord struct {
	Author              string  `json:"author"`
	CurrentOvertime     float64 `json:"current_overtime"`
	WorkloadStrainScore float64 `json:"workload_strain_score"`
}

// WeeklyOvertimeData holds the team-wide weekly aggregate.
// Weeks is shared across all employees, oldest first. ActualHours are the
// regular hours, so ActualHours[i]+OvertimeHours[i] equals TotalHours[i].
type WeeklyOvertimeData struct {
	Weeks         []string  `json:"weeks"`
	DateRanges    []string  `json:"date_ranges,omitempty"`
	ActualHours   []float64 `json:"actual_hours,omitempty"`
	OvertimeHours []float64 `json:"overtime_hours,omitempty"`
	TotalHours    []float64 `json:"total_hours,omitempty"`
}

// StrainPayload is the aggregate handed to the strain chart.
// WeeklyOvertimeData may be nil when no history is known.
type StrainPayload struct {
	BurnoutData        []EmployeeStrainRecord `json:"burnoutData"`
	WeeklyOvertimeData *WeeklyOvertimeData    `json:"weeklyOvertimeData"`
}

// Weeks returns the period labels of the payload, or nil without history.
func (p StrainPayload) Weeks() []string {
	if p.WeeklyOvertimeData == nil {
		return nil
	}
	return p.WeeklyOvertimeData.Weeks
}

// TrendPoint is one smoothed value on an employee's strain trend.
type TrendPoint struct {
	PeriodLabel string   `json:"period_label"`
	EMAScore    float64  `json:"ema_score"`
	RiskBand    RiskBand `json:"risk_band"`
}

// StrainSeries is the plotted trend of a single employee.
// LineBand comes from the workload strain score, not from the trend.
type StrainSeries struct {
	Author              string       `json:"author"`
	CurrentOvertime     float64      `json:"current_overtime"`
	WorkloadStrainScore float64      `json:"workload_strain_score"`
	Points              []TrendPoint `json:"points"`
	LineBand            RiskBand     `json:"line_band"`
	LineColor           string       `json:"line_color"`
	BackgroundColor     string       `json:"background_color"`
}

// StrainChart is everything a chart consumer needs to draw strain trends.
type StrainChart struct {
	Labels   []string            `json:"labels"`
	Series   []StrainSeries      `json:"series"`
	YAxisMax float64             `json:"y_axis_max"`
	Formula  string              `json:"formula"`
	Weekly   *WeeklyOvertimeData `json:"weekly_overtime,omitempty"`
}

// Empty reports whether there is nothing to plot.
func (c StrainChart) Empty() bool {
	return len(c.Series) == 0
}
