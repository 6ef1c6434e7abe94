package storage

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"romeo_and_juliet in silicon_valley_tech", 0, "romeo-and-juliet-in-silicon-valley-tech"},
		{"  Hello,  World!  ", 0, "hello-world"},
		{"a/b\\c:d", 0, "a-b-c-d"},
		{"???", 0, "output"},
		{"", 10, "output"},
		{"abcdef-ghij", 7, "abcdef"},
		{"café au lait", 5, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Slugify(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestArtifactName(t *testing.T) {
	now := time.Date(2025, 7, 16, 15, 30, 0, 0, time.UTC)

	got := ArtifactName("hamlet", "space_colony", "82f06b15-1111-2222-3333-444455556666", now)
	want := "2025-07-16_1530_hamlet-in-space-colony_82f06b15"
	if got != want {
		t.Errorf("ArtifactName() = %q, want %q", got, want)
	}

	if got := ArtifactName("a", "b", "xyz", now); got != "2025-07-16_1530_a-in-b_xyz" {
		t.Errorf("ArtifactName() with short id = %q", got)
	}
}
