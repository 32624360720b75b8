package colex

import "time"

// Configuration constants for colex operations
const (
	// Date and datetime parsing
	DefaultDateFormat     = "2006-01-02"
	DefaultDateTimeFormat = time.RFC3339

	// Maximum number of validation messages rendered in an error string.
	// The full message map is always preserved on the ValidationError.
	DefaultMaxReportedErrors = 50
)

// DateTimeFormats lists the layouts tried, in order, when coercing a string
// into a datetime field without an explicit per-field format.
var DateTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Options holds per-serializer configuration
type Options struct {
	DateFormat      string
	DateTimeFormats []string
}

// DefaultOptions returns the default serializer configuration
func DefaultOptions() Options {
	return Options{
		DateFormat:      DefaultDateFormat,
		DateTimeFormats: DateTimeFormats,
	}
}

// Validate checks if the Options are valid
func (o Options) Validate() error {
	if o.DateFormat == "" {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "DateFormat",
			"reason": "must not be empty",
		})
	}
	if len(o.DateTimeFormats) == 0 {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "DateTimeFormats",
			"reason": "must list at least one layout",
		})
	}
	return nil
}
