package urlutil

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestNormalize_StripsTrailingSlashes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		scheme := rapid.SampledFrom([]string{"http", "https"}).Draw(rt, "scheme")
		host := fmt.Sprintf(
			"%s.%s:%d",
			rapid.StringMatching(`[a-z]{3,12}`).Draw(rt, "host"),
			rapid.StringMatching(`[a-z]{2,8}`).Draw(rt, "tld"),
			rapid.IntRange(1024, 9999).Draw(rt, "port"),
		)
		slashes := strings.Repeat("/", rapid.IntRange(0, 3).Draw(rt, "slashes"))
		pad := strings.Repeat(" ", rapid.IntRange(0, 2).Draw(rt, "pad"))

		want := scheme + "://" + host
		if got := Normalize(pad + want + slashes + pad); got != want {
			rt.Fatalf("got=%s want=%s", got, want)
		}
	})
}

func TestNormalize_Blank(t *testing.T) {
	t.Parallel()
	if got := Normalize("   "); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateBase(t *testing.T) {
	t.Parallel()
	for _, ok := range []string{"https://app.example.com", "http://127.0.0.1:8080/", " https://app.example.com/ "} {
		if err := ValidateBase(ok); err != nil {
			t.Errorf("ValidateBase(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"app.example.com", "ftp://app.example.com", "https://", "://nope"} {
		if err := ValidateBase(bad); err == nil {
			t.Errorf("ValidateBase(%q) expected error", bad)
		}
	}
}

func TestSameOrigin(t *testing.T) {
	t.Parallel()
	if !SameOrigin("https://App.example.com/a", "https://app.example.com/pricing") {
		t.Error("expected same origin")
	}
	if SameOrigin("https://app.example.com", "http://app.example.com") {
		t.Error("scheme differs")
	}
	if SameOrigin("https://app.example.com", "https://billing.example.com") {
		t.Error("host differs")
	}
}
