package errors

// ErrorCode is a string identifier for a specific failure category.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK         ErrorCode = "OK"
	CodeUnknown    ErrorCode = "COMMON_000"
	CodeInternal   ErrorCode = "COMMON_001"
	CodeValidation ErrorCode = "COMMON_002"
	CodeIO         ErrorCode = "COMMON_004"
	CodeConfig     ErrorCode = "COMMON_005"
)

// Structure pipeline error codes. The batch driver classifies each failed
// file by the first of these found in its error chain.
const (
	// CodeParse marks a structure file that could not be read or parsed.
	CodeParse ErrorCode = "STRUCT_001"

	// CodePrep marks a failure while preparing hydrogens for a structure.
	CodePrep ErrorCode = "STRUCT_002"

	// CodeMonomerLib marks a missing or unreadable monomer dictionary.
	CodeMonomerLib ErrorCode = "STRUCT_003"

	// CodeOutput marks a failure while writing results to the output sink.
	CodeOutput ErrorCode = "STRUCT_004"
)
