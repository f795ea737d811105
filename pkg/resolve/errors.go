package resolve

import "strings"

// UnknownEntityError reports a reference to an entity kind or type alias
// that is not present in the declaration snapshot. It is a configuration
// fault: generation for the offending entity kind must abort.
type UnknownEntityError struct {
	Name string
}

func (e *UnknownEntityError) Error() string {
	return "unknown entity or type " + e.Name
}

// CyclicTypeError reports an unproductive cycle: a name resolving back to
// itself with no intervening container. Cycles mediated by a container are
// legal and are represented by boxed references instead.
type CyclicTypeError struct {
	Chain []string
}

func (e *CyclicTypeError) Error() string {
	return "cyclic type " + strings.Join(e.Chain, " -> ")
}
