// Package fault turns errors raised anywhere in the storefront into a
// user-safe status code and message.
//
// Errors are converted once into a Fault, a closed set of kinds, at the point
// where they are caught. Classification then works on the Fault only, so the
// decision table is an exhaustive switch rather than a list of type checks.
package fault

import (
	"crypto/aes"
	"database/sql"
	"database/sql/driver"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"shop-api/pkg/protector"
)

// Kind identifies the family a fault belongs to
type Kind int

const (
	KindUnknown Kind = iota
	KindDivideByZero
	KindCryptographic
	KindFormat
	KindDatabase
	KindConcurrency
	KindWrapped
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindDivideByZero:  "divide_by_zero",
	KindCryptographic: "cryptographic",
	KindFormat:        "format",
	KindDatabase:      "database",
	KindConcurrency:   "concurrency",
	KindWrapped:       "wrapped",
}

// String returns the snake_case name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Fault is the classified shape of an error.
//
// NativeCode is only meaningful for KindDatabase and Inner only for
// KindWrapped, where a nil Inner means the wrapped cause was absent.
type Fault struct {
	Kind       Kind
	NativeCode int
	Inner      *Fault
	Err        error
}

// ErrDivideByZero is returned by code that checks a divisor explicitly
var ErrDivideByZero = errors.New("divide by zero")

// UpdateError reports a failed write. Err is the driver error that caused it.
type UpdateError struct {
	Op     string
	Entity string
	Err    error
}

// Error implements error interface
func (e *UpdateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s failed", e.Op, e.Entity)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the driver error
func (e *UpdateError) Unwrap() error {
	return e.Err
}

// ConcurrencyError reports a write that lost an optimistic concurrency check
type ConcurrencyError struct {
	Entity          string
	ID              uint
	ExpectedVersion int
}

// Error implements error interface
func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("%s %d was modified concurrently (expected version %d)", e.Entity, e.ID, e.ExpectedVersion)
}

// FromError builds a Fault from err.
//
// The chain of decorating wrappers is walked and the first link with a known
// identity decides the kind. An UpdateError is unwrapped exactly one level to
// find its inner fault.
func FromError(err error) Fault {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if f, ok := identify(e); ok {
			f.Err = err
			return f
		}
	}
	return Fault{Kind: KindUnknown, Err: err}
}

// identify classifies a single link of an error chain without unwrapping it
func identify(err error) (Fault, bool) {
	switch e := err.(type) {
	case *UpdateError:
		f := Fault{Kind: KindWrapped}
		if e.Err != nil {
			inner, ok := identify(e.Err)
			if !ok {
				inner = Fault{Kind: KindUnknown}
			}
			inner.Err = e.Err
			f.Inner = &inner
		}
		return f, true
	case *ConcurrencyError:
		return Fault{Kind: KindConcurrency}, true
	}

	if code, ok := nativeCode(err); ok {
		return Fault{Kind: KindDatabase, NativeCode: code}, true
	}
	if isDivideByZero(err) {
		return Fault{Kind: KindDivideByZero}, true
	}
	if isCryptographic(err) {
		return Fault{Kind: KindCryptographic}, true
	}
	if isFormat(err) {
		return Fault{Kind: KindFormat}, true
	}
	return Fault{}, false
}

func isDivideByZero(err error) bool {
	if err == ErrDivideByZero {
		return true
	}
	if re, ok := err.(runtime.Error); ok {
		return strings.Contains(re.Error(), "integer divide by zero")
	}
	return false
}

func isCryptographic(err error) bool {
	if err == protector.ErrDecrypt {
		return true
	}
	switch err.(type) {
	case aes.KeySizeError, *protector.KeyError:
		return true
	}
	return false
}

func isFormat(err error) bool {
	switch err.(type) {
	case *strconv.NumError, *time.ParseError, base64.CorruptInputError,
		*json.SyntaxError, *json.UnmarshalTypeError, hex.InvalidByteError:
		return true
	}
	return err == hex.ErrLength
}

// isConnectionLoss reports the database/sql sentinels for a dropped connection
func isConnectionLoss(err error) bool {
	return err == driver.ErrBadConn || err == sql.ErrConnDone
}
