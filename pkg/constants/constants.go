// Package constants provides shared constants for the goal-projection application.
package constants

// DateLayout is the calendar-day format used in config files, the HTTP API and
// all output.
const DateLayout = "2006-01-02"

// Projection constants
const (
	// DaysPerMonth is the fixed month length used for every horizon and
	// milestone date. It is an approximation and not calendar accurate.
	DaysPerMonth = 30

	// MaxTimelineMonths caps the number of projected months in a timeline.
	MaxTimelineMonths = 12

	// MinMonthsRemaining is the smallest horizon derived from a target date.
	MinMonthsRemaining = 1

	// DecimalPlaces is the precision for currency rounding (2 decimal places)
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100
)

// MilestonePercentages are the completion checkpoints reported for every goal,
// in ascending order.
var MilestonePercentages = [...]int{25, 50, 75, 100}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the indented JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultEnvFile holds optional environment overrides for the configuration
	DefaultEnvFile = ".env"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the projection API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultVersion is reported by the version endpoint when none is configured
	DefaultVersion = "dev"
)
