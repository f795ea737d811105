package errbuild

import (
	"fmt"
	"strings"
)

// MessageID identifies a structural failure message template.
type MessageID string

// Structural failure messages.
const (
	MsgTypeMismatch     MessageID = "TYPE_MISMATCH"
	MsgUnionNoMatch     MessageID = "UNION_NO_MATCH"
	MsgTupleArity       MessageID = "TUPLE_ARITY"
	MsgRecordMissingKey MessageID = "RECORD_MISSING_KEY"
	MsgRecordUnknownKey MessageID = "RECORD_UNKNOWN_KEY"
	MsgNotAStruct       MessageID = "NOT_A_STRUCT"
)

// messageTemplates maps message IDs to their templates.
// Templates use {placeholder} syntax for variable substitution.
var messageTemplates = map[MessageID]string{
	MsgTypeMismatch:     "expected {expected}, got {actual}",
	MsgUnionNoMatch:     "expected {member}, got {actual} (none of {union} matched)",
	MsgTupleArity:       "expected a tuple of {want} elements, got {got}",
	MsgRecordMissingKey: "missing key '{key}' for {expected}",
	MsgRecordUnknownKey: "unknown key '{key}' for {expected}",
	MsgNotAStruct:       "expected a {kind} value, got {actual}",
}

// Format renders a message template with the given parameters.
func Format(id MessageID, params map[string]any) string {
	tmpl, ok := messageTemplates[id]
	if !ok {
		return string(id)
	}
	result := tmpl
	for key, value := range params {
		placeholder := "{" + key + "}"
		result = strings.ReplaceAll(result, placeholder, fmt.Sprint(value))
	}
	return result
}
