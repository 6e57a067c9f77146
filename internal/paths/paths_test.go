package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkingAreas(t *testing.T) {
	base := filepath.Join("some", "base")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"sources", Sources(base), filepath.Join(base, "sources")},
		{"build", Build(base), filepath.Join(base, "build")},
		{"stage", Stage(base), filepath.Join(base, "stage")},
		{"images", Images(base), filepath.Join(base, "images")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestProfilesUnderToolDir(t *testing.T) {
	p := Profiles()
	if !strings.HasSuffix(p, filepath.Join(toolName, "profiles")) {
		t.Fatalf("Profiles() = %q, want suffix %q", p, filepath.Join(toolName, "profiles"))
	}
}

func TestFindProfileMissing(t *testing.T) {
	if _, err := FindProfile("does-not-exist-7f3a"); err == nil {
		t.Fatal("expected error for missing profile")
	}
}
