package fault

import (
	"context"
	"fmt"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// SQL Server error numbers the sub-classifier understands
const (
	NativeNotNullViolation    = 515
	NativeUniqueViolation     = 2627
	NativeForeignKeyViolation = 547
	NativeNetworkFailure      = 0
	NativeServerNotFound      = 2
	NativeTimeout             = -2

	// nativeUnmapped is used for driver errors with no SQL Server equivalent
	nativeUnmapped = -1
)

// NativeError is a constraint failure reported by a store that has no
// driver of its own, such as the in-memory repositories. Code uses the SQL
// Server numbering.
type NativeError struct {
	Code       int
	Constraint string
}

// Error implements error interface
func (e *NativeError) Error() string {
	return fmt.Sprintf("native error %d: %s", e.Code, e.Constraint)
}

// nativeCode extracts the SQL Server error number from a driver error.
// Errors of other engines are translated to the SQL Server numbering.
func nativeCode(err error) (int, bool) {
	switch e := err.(type) {
	case *NativeError:
		return e.Code, true
	case mssql.Error:
		return int(e.Number), true
	case *mssql.Error:
		return int(e.Number), true
	case *pgconn.PgError:
		return fromSQLState(e.Code), true
	case *pgconn.ConnectError:
		// the server was never reached, so there is no SQLSTATE
		return NativeServerNotFound, true
	case *pq.Error:
		return fromSQLState(string(e.Code)), true
	case sqlite3.Error:
		return fromSQLite(e), true
	case *sqlite3.Error:
		return fromSQLite(*e), true
	}
	if isConnectionLoss(err) {
		return NativeNetworkFailure, true
	}
	if err == context.DeadlineExceeded || pgconn.Timeout(err) {
		return NativeTimeout, true
	}
	return 0, false
}

func fromSQLState(code string) int {
	switch {
	case code == "23502":
		return NativeNotNullViolation
	case code == "23505":
		return NativeUniqueViolation
	case code == "23503":
		return NativeForeignKeyViolation
	case code == "57014":
		return NativeTimeout
	case strings.HasPrefix(code, "08"):
		return NativeNetworkFailure
	}
	return nativeUnmapped
}

func fromSQLite(e sqlite3.Error) int {
	switch e.ExtendedCode {
	case sqlite3.ErrConstraintNotNull:
		return NativeNotNullViolation
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return NativeUniqueViolation
	case sqlite3.ErrConstraintForeignKey:
		return NativeForeignKeyViolation
	}
	switch e.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return NativeTimeout
	case sqlite3.ErrCantOpen:
		return NativeServerNotFound
	}
	return nativeUnmapped
}
