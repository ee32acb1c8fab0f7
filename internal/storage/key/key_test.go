package key

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerate_Format(t *testing.T) {
	got := Generate("profile", "42", "avatar.png")

	pattern := regexp.MustCompile(`^profile/42/[0-9a-f]{32}\.png$`)
	if !pattern.MatchString(got) {
		t.Errorf("Generate() = %q, want match for %q", got, pattern)
	}
}

func TestGenerate_ExtensionLowercased(t *testing.T) {
	got := Generate("profile", "7", "photo.JPG")

	if !strings.HasSuffix(got, ".jpg") {
		t.Errorf("expected key to end with .jpg, got %q", got)
	}
}

func TestGenerate_NoExtension(t *testing.T) {
	got := Generate("profile", "7", "noext")

	name := got[strings.LastIndex(got, "/")+1:]
	if strings.Contains(name, ".") {
		t.Errorf("expected no extension segment, got %q", got)
	}
	if len(name) != 32 {
		t.Errorf("expected bare 32-hex token, got %q", name)
	}
}

func TestGenerate_MultiDotFilename(t *testing.T) {
	got := Generate("event_covers", "9", "poster.final.PNG")

	if !strings.HasSuffix(got, ".png") {
		t.Errorf("expected only the last extension, got %q", got)
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		k := Generate("profile", "42", "avatar.png")
		if seen[k] {
			t.Fatalf("duplicate key generated: %s", k)
		}
		seen[k] = true
	}
}
