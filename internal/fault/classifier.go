package fault

// Status codes returned to the HTTP layer. Values above 520 are private to
// this service and carry no standard HTTP meaning.
const (
	StatusDefault       = 500
	StatusDivideByZero  = 521
	StatusCryptographic = 522
	StatusFormat        = 523
	StatusNotNull       = 530
	StatusDuplicate     = 531
	StatusDependent     = 532
	StatusUnreachable   = 533
)

const (
	MessageDefault       = "Error - Please contact the site administrator"
	MessageDivideByZero  = "Divide by zero error"
	MessageCryptographic = "Decoding error"
	MessageFormat        = "Format error"
	MessageConcurrency   = "The desired information has been changed by another user. Try again"
	MessageNotNull       = "Enter Details completely"
	MessageDuplicate     = "Duplicate information"
	MessageDependent     = "Because the information is dependent on other parts, it cannot be changed"
	MessageUnreachable   = "The database cannot be accessed"
)

// Result is the user-facing outcome of a classification
type Result struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// DefaultResult is returned for anything that has no dedicated rule
func DefaultResult() Result {
	return Result{StatusCode: StatusDefault, Message: MessageDefault}
}

// ClassifyError builds a Fault from err and classifies it
func ClassifyError(err error) Result {
	if err == nil {
		return DefaultResult()
	}
	return Classify(FromError(err))
}

// Classify maps a fault to its status code and message. It never fails.
func Classify(f Fault) Result {
	switch f.Kind {
	case KindDivideByZero:
		return Result{StatusCode: StatusDivideByZero, Message: MessageDivideByZero}
	case KindCryptographic:
		return Result{StatusCode: StatusCryptographic, Message: MessageCryptographic}
	case KindFormat:
		return Result{StatusCode: StatusFormat, Message: MessageFormat}
	case KindDatabase:
		return ClassifyDatabaseFailure(f.NativeCode)
	case KindConcurrency:
		return Result{StatusCode: StatusDefault, Message: MessageConcurrency}
	case KindWrapped:
		if f.Inner != nil && f.Inner.Kind == KindDatabase {
			return ClassifyDatabaseFailure(f.Inner.NativeCode)
		}
		return DefaultResult()
	default:
		return DefaultResult()
	}
}

// ClassifyDatabaseFailure maps a SQL Server error number to a result
func ClassifyDatabaseFailure(nativeCode int) Result {
	switch nativeCode {
	case NativeNotNullViolation:
		return Result{StatusCode: StatusNotNull, Message: MessageNotNull}
	case NativeUniqueViolation:
		return Result{StatusCode: StatusDuplicate, Message: MessageDuplicate}
	case NativeForeignKeyViolation:
		return Result{StatusCode: StatusDependent, Message: MessageDependent}
	case NativeNetworkFailure, NativeServerNotFound, NativeTimeout:
		return Result{StatusCode: StatusUnreachable, Message: MessageUnreachable}
	default:
		return DefaultResult()
	}
}
