package dataset

import "fmt"

// DataSourceError reports that the weighing table could not be found, read or
// understood. It is terminal: callers must not continue with partial data.
type DataSourceError struct {
	Source string
	Row    int
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("data source %s: row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("data source %s: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}
