package errors

// ErrorCode identifies an application error in logs and JSON responses
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_VALIDATION

	// Authentication
	ErrorCode_UNAUTHENTICATED
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED
	ErrorCode_FORBIDDEN

	// Downstream dependencies
	ErrorCode_DEPENDENCY_UNAVAILABLE
	ErrorCode_DEPENDENCY_TIMEOUT
	ErrorCode_DEPENDENCY_REJECTED
	ErrorCode_PRECONDITION_FAILED
	ErrorCode_CIRCUIT_OPEN

	// Extraction
	ErrorCode_EXTRACTION_FAILED
	ErrorCode_EXTRACTION_INVALID_OUTPUT

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_INTEGRATION_MESSAGING_FAILED
)

var codeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                     "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:             "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:              "INVALID_PAYLOAD",
	ErrorCode_VALIDATION:                   "VALIDATION",
	ErrorCode_UNAUTHENTICATED:              "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_TOKEN:           "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:           "AUTH_TOKEN_EXPIRED",
	ErrorCode_FORBIDDEN:                    "FORBIDDEN",
	ErrorCode_DEPENDENCY_UNAVAILABLE:       "DEPENDENCY_UNAVAILABLE",
	ErrorCode_DEPENDENCY_TIMEOUT:           "DEPENDENCY_TIMEOUT",
	ErrorCode_DEPENDENCY_REJECTED:          "DEPENDENCY_REJECTED",
	ErrorCode_PRECONDITION_FAILED:          "PRECONDITION_FAILED",
	ErrorCode_CIRCUIT_OPEN:                 "CIRCUIT_OPEN",
	ErrorCode_EXTRACTION_FAILED:            "EXTRACTION_FAILED",
	ErrorCode_EXTRACTION_INVALID_OUTPUT:    "EXTRACTION_INVALID_OUTPUT",
	ErrorCode_INTEGRATION_STORAGE_FAILED:   "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:     "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_MESSAGING_FAILED: "INTEGRATION_MESSAGING_FAILED",
}

// String returns the wire name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText renders the code by name in JSON bodies
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Kind groups error codes by how callers should react to them
type Kind string

const (
	KindValidation          Kind = "validation"
	KindAuthentication      Kind = "authentication"
	KindDependencyTransient Kind = "dependency_transient"
	KindDependencyTerminal  Kind = "dependency_terminal"
	KindCircuitOpen         Kind = "circuit_open"
	KindInternal            Kind = "internal"
)
