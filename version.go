package typeconform

// SnapshotVersion identifies a declaration snapshot format version.
type SnapshotVersion string

// Supported snapshot format versions.
const (
	// V1 is the initial tagged-object snapshot format.
	V1 SnapshotVersion = "v1"
)

// String returns the version string.
func (v SnapshotVersion) String() string {
	return string(v)
}

// IsValid returns true if this is a supported snapshot format version.
func (v SnapshotVersion) IsValid() bool {
	switch v {
	case V1:
		return true
	default:
		return false
	}
}
