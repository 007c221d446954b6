package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/timesheet/schema"
)

// Default values for configuration.
const (
	DefaultPrecision      = 2
	DefaultPerPage        = 10
	MaxPerPage            = 100
	DefaultDailyHours     = 8.0
	DefaultSnapshotMaxAge = time.Hour
	DefaultServeAddr      = ":8080"
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for reports and strain trends.
// This struct remains the "final, validated" config.
type Config struct {
	WorklogPath string
	SnapshotID  string
	PayloadPath string
	Author      string
	BaseURL     string
	StartDate   time.Time
	EndDate     time.Time
	Seed        uint64
	DailyHours  float64
	Page        int
	PerPage     int
	Month       time.Time
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext
	SnapshotMaxAge    time.Duration

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	ServeAddr string

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	WorklogPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Snapshot          string  `mapstructure:"snapshot"`
	Author            string  `mapstructure:"author"`
	BaseURL           string  `mapstructure:"base-url"`
	Start             string  `mapstructure:"start"`
	End               string  `mapstructure:"end"`
	DailyHours        float64 `mapstructure:"daily-hours"`
	Precision         int     `mapstructure:"precision"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Width             int     `mapstructure:"width"`
	SnapshotBackend   string  `mapstructure:"snapshot-backend"`
	SnapshotDBConnect string  `mapstructure:"snapshot-db-connect"`
	SnapshotMaxAge    string  `mapstructure:"snapshot-max-age"`
	HistoryBackend    string  `mapstructure:"history-backend"`
	HistoryDBConnect  string  `mapstructure:"history-db-connect"`
	Emoji             string  `mapstructure:"emoji"`
	Color             string  `mapstructure:"color"`

	// --- Fields from strainCmd.Flags() ---
	Payload string `mapstructure:"payload"`
	Seed    uint64 `mapstructure:"seed"`

	// --- Fields from reportCmd.PersistentFlags() ---
	Page    int `mapstructure:"page"`
	PerPage int `mapstructure:"per-page"`

	// --- Fields from holidaysCalendarCmd.Flags() ---
	Month string `mapstructure:"month"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processDateRange(cfg, input); err != nil {
		return err
	}
	if err := processMonth(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend converts a raw backend name, treating empty as none.
func ParseBackend(raw string) (schema.DatabaseBackend, error) {
	if raw == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(raw))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateBackendConfigs validates snapshot and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	var err error

	// --- Snapshot Backend Validation ---
	if cfg.SnapshotBackend, err = ParseBackend(input.SnapshotBackend); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect); err != nil {
		return err
	}

	cfg.SnapshotMaxAge = DefaultSnapshotMaxAge
	if input.SnapshotMaxAge != "" {
		maxAge, err := ParseLookbackDuration(input.SnapshotMaxAge)
		if err != nil {
			return fmt.Errorf("invalid --snapshot-max-age: %w", err)
		}
		cfg.SnapshotMaxAge = maxAge
	}

	// --- History Backend Validation ---
	if cfg.HistoryBackend, err = ParseBackend(input.HistoryBackend); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// SQLite stores must not share a file
	if cfg.SnapshotBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		snapshotPath := cfg.SnapshotDBConnect
		if snapshotPath == "" {
			snapshotPath = GetSnapshotDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if snapshotPath == historyPath {
			return fmt.Errorf("snapshot and history storage must use different SQLite database files. Both resolve to %q", snapshotPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.WorklogPath = strings.TrimSpace(input.WorklogPathStr)
	cfg.SnapshotID = strings.TrimSpace(input.Snapshot)
	cfg.PayloadPath = strings.TrimSpace(input.Payload)
	cfg.Author = strings.TrimSpace(input.Author)
	cfg.BaseURL = input.BaseURL
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Seed = input.Seed
	cfg.ServeAddr = input.Addr
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, xlsx", input.Output)
	}
	if cfg.Output == schema.XLSXOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for xlsx output")
	}

	// --- 2. Pagination Validation ---
	if input.Page < 1 {
		return fmt.Errorf("page must be at least 1 (received %d)", input.Page)
	}
	cfg.Page = input.Page
	if input.PerPage < 1 || input.PerPage > MaxPerPage {
		return fmt.Errorf("per-page must be between 1 and %d (received %d)", MaxPerPage, input.PerPage)
	}
	cfg.PerPage = input.PerPage

	// --- 3. Capacity Validation ---
	if input.DailyHours <= 0 || input.DailyHours > 24 {
		return fmt.Errorf("daily-hours must be in (0, 24] (received %v)", input.DailyHours)
	}
	cfg.DailyHours = input.DailyHours

	return nil
}

// processDateRange parses the optional --start and --end report filters.
func processDateRange(cfg *Config, input *ConfigRawInput) error {
	cfg.StartDate, cfg.EndDate = time.Time{}, time.Time{}
	if input.Start != "" {
		t, err := ParseDate(input.Start)
		if err != nil {
			return fmt.Errorf("invalid start date '%s': %w", input.Start, err)
		}
		cfg.StartDate = t
	}
	if input.End != "" {
		t, err := ParseDate(input.End)
		if err != nil {
			return fmt.Errorf("invalid end date '%s': %w", input.End, err)
		}
		cfg.EndDate = t
	}
	if !cfg.StartDate.IsZero() && !cfg.EndDate.IsZero() && cfg.StartDate.After(cfg.EndDate) {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)", cfg.StartDate.Format(ISODateLayout), cfg.EndDate.Format(ISODateLayout))
	}
	return nil
}

// processMonth parses the calendar month, defaulting to the current one.
func processMonth(cfg *Config, input *ConfigRawInput) error {
	if input.Month == "" {
		now := time.Now()
		cfg.Month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return nil
	}
	t, err := time.Parse(MonthLayout, strings.TrimSpace(input.Month))
	if err != nil {
		return fmt.Errorf("invalid month '%s'. expected YYYY-MM", input.Month)
	}
	cfg.Month = t
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
