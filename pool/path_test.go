package pool

import "testing"

func TestPathBuilderSegments(t *testing.T) {
	pb := AcquirePathBuilder()
	defer pb.Release()

	pb.Field("addresses")
	pb.Index(2)
	pb.Field("street")

	if got := pb.String(); got != "addresses[2].street" {
		t.Errorf("String() = %q", got)
	}
}

func TestPathBuilderKey(t *testing.T) {
	pb := AcquirePathBuilder()
	defer pb.Release()

	pb.Field("scores")
	pb.Key("alice")

	if got := pb.String(); got != "scores[alice]" {
		t.Errorf("String() = %q", got)
	}
}

func TestPathBuilderTruncate(t *testing.T) {
	pb := AcquirePathBuilder()
	defer pb.Release()

	pb.Field("root")
	mark := pb.Len()

	pb.Field("left")
	if got := pb.String(); got != "root.left" {
		t.Fatalf("String() = %q", got)
	}

	pb.Truncate(mark)
	pb.Field("right")
	if got := pb.String(); got != "root.right" {
		t.Errorf("String() after Truncate = %q", got)
	}

	// Out-of-range marks are ignored.
	pb.Truncate(-1)
	pb.Truncate(pb.Len() + 10)
	if got := pb.String(); got != "root.right" {
		t.Errorf("String() after bad Truncate = %q", got)
	}
}

func TestPathBuilderReset(t *testing.T) {
	pb := AcquirePathBuilder()
	defer pb.Release()

	pb.Field("a")
	pb.Reset()
	if pb.Len() != 0 || pb.String() != "" {
		t.Errorf("not empty after Reset: %q", pb.String())
	}

	// The first field after a reset has no leading dot.
	pb.Field("b")
	if got := pb.String(); got != "b" {
		t.Errorf("String() = %q", got)
	}
}

func TestPathBuilderPoolReuse(t *testing.T) {
	pb := AcquirePathBuilder()
	pb.Field("stale")
	pb.Release()

	pb2 := AcquirePathBuilder()
	defer pb2.Release()
	if pb2.Len() != 0 {
		t.Errorf("pooled builder not reset: %q", pb2.String())
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		segments []string
		want     string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b", "c"}, "a.b.c"},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.segments...); got != tt.want {
			t.Errorf("JoinPath(%v) = %q, want %q", tt.segments, got, tt.want)
		}
	}
}

func BenchmarkPathBuilder(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pb := AcquirePathBuilder()
		pb.Field("addresses")
		pb.Index(i % 10)
		pb.Field("street")
		_ = pb.String()
		pb.Release()
	}
}
