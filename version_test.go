package typeconform

import "testing"

func TestSnapshotVersion(t *testing.T) {
	if !V1.IsValid() {
		t.Error("V1 should be valid")
	}
	if SnapshotVersion("v2").IsValid() {
		t.Error("v2 should not be valid")
	}
	if got := V1.String(); got != "v1" {
		t.Errorf("String() = %q", got)
	}
}
