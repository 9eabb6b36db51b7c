package articles

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes an article URL so that trivially different
// spellings of the same address produce the same fingerprint: scheme and
// host are lowercased, default ports and fragments are dropped, trailing
// slashes on non-root paths are stripped and query parameters are sorted.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	// Strip default ports
	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	// Values.Encode emits keys in sorted order
	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}

	u.Fragment = ""

	return u.String(), nil
}
