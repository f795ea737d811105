package typeconform

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	// KindStructural indicates the value's shape does not match its declared type.
	KindStructural ErrorKind = "structural"
	// KindPrecondition indicates the value matched structurally but a
	// precondition attached to the type rejected it.
	KindPrecondition ErrorKind = "precondition"
)

// Error is a single field-addressable validation failure.
// Multiple errors may exist for one field when a union has several failing
// members or several preconditions fail.
type Error struct {
	// Field is the declared field the failure is reported under.
	Field string `json:"field"`

	// Path points into the value, e.g. "addresses[2].street".
	// Equals Field for top-level failures.
	Path string `json:"path,omitempty"`

	// Kind is structural or precondition.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable description. For precondition failures
	// it is the predicate's own reason text, verbatim.
	Message string `json:"message"`
}

// IsStructural returns true for shape mismatches.
func (e Error) IsStructural() bool {
	return e.Kind == KindStructural
}

// IsPrecondition returns true for precondition failures.
func (e Error) IsPrecondition() bool {
	return e.Kind == KindPrecondition
}

// String returns a human-readable representation of the error.
func (e Error) String() string {
	path := e.Path
	if path == "" {
		path = e.Field
	}
	return string(e.Kind) + ": " + e.Message + " at " + path
}

// StructuralError builds a structural Error.
func StructuralError(field, path, message string) Error {
	return Error{Field: field, Path: path, Kind: KindStructural, Message: message}
}

// PrecondError builds a precondition Error.
func PrecondError(field, path, message string) Error {
	return Error{Field: field, Path: path, Kind: KindPrecondition, Message: message}
}

// FieldCategory partitions an entity kind's declared fields for introspection.
type FieldCategory string

const (
	// FieldsStructural are fields with a precise declared type, checked by
	// EnsureEntity.
	FieldsStructural FieldCategory = "structural"
	// FieldsAny are fields explicitly typed as "any"; never validated.
	FieldsAny FieldCategory = "any"
	// FieldsMetadata are fields carrying bookkeeping data outside the
	// structural type.
	FieldsMetadata FieldCategory = "metadata"
	// FieldsAssociated are externally materialized association fields,
	// excluded from structural checks but kept in the full enumeration.
	FieldsAssociated FieldCategory = "associated"
)

// IsValid returns true if this is a known field category.
func (c FieldCategory) IsValid() bool {
	switch c {
	case FieldsStructural, FieldsAny, FieldsMetadata, FieldsAssociated:
		return true
	default:
		return false
	}
}
