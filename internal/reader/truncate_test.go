package reader_test

import (
	"strings"
	"testing"

	"github.com/shpitdev/vc-enricher/internal/reader"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "hello", max: 10, want: "hello"},
		{name: "exact", in: "hello", max: 5, want: "hello"},
		{name: "cut mid word", in: "hello world", max: 7, want: "hello w"},
		{name: "multibyte", in: "héllo wörld", max: 4, want: "héll"},
		{name: "empty", in: "", max: 3, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := reader.Truncate(tt.in, tt.max); got != tt.want {
				t.Fatalf("Truncate(%q, %d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncate_BoundedAndIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"short",
		strings.Repeat("a", reader.DefaultMaxChars-1),
		strings.Repeat("b", reader.DefaultMaxChars),
		strings.Repeat("c", reader.DefaultMaxChars+1),
		strings.Repeat("ünïcødé ", 2000),
	}
	for _, in := range inputs {
		once := reader.Truncate(in, 0)
		if n := reader.CharCount(once); n > reader.DefaultMaxChars {
			t.Fatalf("truncated length %d exceeds %d", n, reader.DefaultMaxChars)
		}
		if twice := reader.Truncate(once, 0); twice != once {
			t.Fatalf("truncate is not idempotent for input of length %d", len(in))
		}
		if !strings.HasPrefix(in, once) {
			t.Fatalf("truncate must keep a prefix of the input")
		}
	}
}
