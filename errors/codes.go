package errors

// ErrorCode identifies an application error class in responses and logs
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1003

	ErrorCode_MEETING_NOT_FOUND  ErrorCode = 2000
	ErrorCode_SESSION_EXPIRED    ErrorCode = 2001
	ErrorCode_ALREADY_PROCESSING ErrorCode = 2002
	ErrorCode_SCHEDULING_FAILED  ErrorCode = 2003

	ErrorCode_STORE_FAILED      ErrorCode = 3000
	ErrorCode_FETCH_FAILED      ErrorCode = 3001
	ErrorCode_CAPABILITY_FAILED ErrorCode = 3002
	ErrorCode_NOTIFY_FAILED     ErrorCode = 3003
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:            "OK",
	ErrorCode_INTERNAL:           "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:   "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:          "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:    "INVALID_PAYLOAD",
	ErrorCode_MEETING_NOT_FOUND:  "MEETING_NOT_FOUND",
	ErrorCode_SESSION_EXPIRED:    "SESSION_EXPIRED",
	ErrorCode_ALREADY_PROCESSING: "ALREADY_PROCESSING",
	ErrorCode_SCHEDULING_FAILED:  "SCHEDULING_FAILED",
	ErrorCode_STORE_FAILED:       "STORE_FAILED",
	ErrorCode_FETCH_FAILED:       "FETCH_FAILED",
	ErrorCode_CAPABILITY_FAILED:  "CAPABILITY_FAILED",
	ErrorCode_NOTIFY_FAILED:      "NOTIFY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
