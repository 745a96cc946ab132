package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize trims whitespace and trailing slashes from a base URL.
func Normalize(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/")
}

// ValidateBase checks that base is an absolute http(s) URL with a host.
func ValidateBase(base string) error {
	u, err := url.Parse(Normalize(base))
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", base)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", base)
	}
	return nil
}

// SameOrigin reports whether two absolute URLs share scheme and host.
func SameOrigin(a, b string) bool {
	ua, errA := url.Parse(strings.TrimSpace(a))
	ub, errB := url.Parse(strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}
