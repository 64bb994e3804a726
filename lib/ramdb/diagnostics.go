package ramdb

import (
	"fmt"

	"github.com/IDSolutions/ramdb/lib/sqf"
	"github.com/lni/dragonboat/v4/logger"
)

// diagnostic line formats, %s are the operation, the key and (for data) the value
const (
	fmtNotFound = "ArmaRAMDb: 'ramdb_db_fnc_%s' Can't find Key '%s'"
	fmtChunked  = "ArmaRAMDb: 'ramdb_db_fnc_%s' Key '%s' is being sent in chunks to external function"
	fmtData     = "ArmaRAMDb: 'ramdb_db_fnc_%s' Key '%s' Data '%s'"
)

// loggerDiagnostics writes diagnostic lines to a dragonboat logger at info level
type loggerDiagnostics struct {
	log logger.ILogger
}

// NewLoggerDiagnostics returns a sink writing to the logger of pkg
func NewLoggerDiagnostics(pkg string) IDiagnostics {
	return &loggerDiagnostics{log: logger.GetLogger(pkg)}
}

func (d *loggerDiagnostics) Logf(format string, args ...interface{}) {
	d.log.Infof(format, args...)
}

// report writes the line for a terminal outcome. A panicking sink never fails the fetch.
func report(diag IDiagnostics, op, key string, out Outcome) {
	if diag == nil {
		return
	}
	defer func() { _ = recover() }()

	switch out.Kind {
	case KindNotFound:
		diag.Logf(fmtNotFound, op, key)
	case KindChunked:
		diag.Logf(fmtChunked, op, key)
	default:
		diag.Logf(fmtData, op, key, renderValue(out.Data))
	}
}

// renderValue prints v in literal syntax, falling back to %v for values the codec rejects
func renderValue(v any) string {
	if s, err := sqf.Format(v); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v)
}
