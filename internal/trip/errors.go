package trip

import "fmt"

// DataFormatError reports a malformed required field in a trip export,
// carrying the path of the offending field (e.g. "lodgings[2].startDate").
//
// At the single-record level this error is non-fatal: the record is skipped
// with a recorded warning and processing continues. It is only fatal when it
// prevents constructing a coherent day sequence (trip.startDate/endDate).
type DataFormatError struct {
	Field string
	Err   error
}

func (e *DataFormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed field %s", e.Field)
	}
	return fmt.Sprintf("malformed field %s: %v", e.Field, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// ConfigurationError reports an unusable deployment configuration, such as a
// strict mode that forbids the UTC timezone fallback. The default resolver
// never produces it; the type is reserved for stricter configurations.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Msg }
