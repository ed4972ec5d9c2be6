package deeplink_test

import (
	"errors"
	"testing"

	"github.com/abolfazlirani/asar-backend-app/internal/deeplink"
)

func TestBuildFormatsFixedBase(t *testing.T) {
	got := deeplink.Build("post", "abc123")
	want := "asar://matna.app?id=abc123&source=post"
	if got != want {
		t.Fatalf("Build() = %q, want %q", got, want)
	}
}

func TestBuildRoundTrip(t *testing.T) {
	cases := []struct {
		source string
		id     string
	}{
		{"post", "abc123"},
		{"category", "8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999"},
		{"post", "a b&c=d?e#f"},
		{"", ""},
		{"پست", "۱۲۳"},
	}
	for _, tc := range cases {
		source, id, err := deeplink.Parse(deeplink.Build(tc.source, tc.id))
		if err != nil {
			t.Fatalf("Parse(Build(%q, %q)): %v", tc.source, tc.id, err)
		}
		if source != tc.source || id != tc.id {
			t.Fatalf("round trip mismatch: got (%q, %q) want (%q, %q)", source, id, tc.source, tc.id)
		}
	}
}

func TestBuildExternalRoundTrip(t *testing.T) {
	target := "https://example.com/news?id=7&lang=fa#top"
	link := deeplink.BuildExternal(target)

	source, id, err := deeplink.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if source != deeplink.SourceExternal || id != target {
		t.Fatalf("unexpected parse result (%q, %q)", source, id)
	}
}

func TestBuilderCustomBase(t *testing.T) {
	b := deeplink.New("asar://staging.matna.app")
	if got := b.Build("category", "7"); got != "asar://staging.matna.app?id=7&source=category" {
		t.Fatalf("unexpected link %q", got)
	}
	if deeplink.New("  ").Base() != deeplink.DefaultBase {
		t.Fatal("expected blank base to fall back to default")
	}
}

func TestParseRejectsLinksWithoutParams(t *testing.T) {
	if _, _, err := deeplink.Parse("asar://matna.app"); !errors.Is(err, deeplink.ErrInvalidLink) {
		t.Fatalf("expected ErrInvalidLink, got %v", err)
	}
}
