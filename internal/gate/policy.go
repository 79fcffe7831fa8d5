package gate

import (
	"fmt"
	"strings"
)

// Classification is the access category of a request path.
type Classification int

const (
	// Unrestricted paths pass through regardless of session state.
	Unrestricted Classification = iota
	// Protected paths require an authenticated session.
	Protected
	// GuestOnly paths are for visitors without a session (login, register).
	GuestOnly
)

func (c Classification) String() string {
	switch c {
	case Protected:
		return "protected"
	case GuestOnly:
		return "guest_only"
	default:
		return "unrestricted"
	}
}

// RoutePolicy holds the protected and guest-only prefix lists.
// When a path matches both lists, Protected wins.
type RoutePolicy struct {
	protected []string
	guestOnly []string
}

// NewRoutePolicy normalizes the prefixes. Empty entries are dropped and
// trailing slashes trimmed, so "/dashboard/" behaves like "/dashboard".
func NewRoutePolicy(protected, guestOnly []string) *RoutePolicy {
	return &RoutePolicy{
		protected: normalizePrefixes(protected),
		guestOnly: normalizePrefixes(guestOnly),
	}
}

// Classify maps path to its classification. It is pure and safe for concurrent use.
// Matching ignores case: fiber routes case-insensitively by default, and on a
// case-sensitive router this only widens the protected set.
func (p *RoutePolicy) Classify(path string) Classification {
	path = strings.ToLower(path)
	if matchesAny(path, p.protected) {
		return Protected
	}
	if matchesAny(path, p.guestOnly) {
		return GuestOnly
	}
	return Unrestricted
}

// Protected returns a copy of the protected prefixes.
func (p *RoutePolicy) Protected() []string {
	return append([]string(nil), p.protected...)
}

// GuestOnly returns a copy of the guest-only prefixes.
func (p *RoutePolicy) GuestOnly() []string {
	return append([]string(nil), p.guestOnly...)
}

// Overlaps lists every protected/guest-only prefix pair that can match the same path.
func (p *RoutePolicy) Overlaps() [][2]string {
	var out [][2]string
	for _, prot := range p.protected {
		for _, guest := range p.guestOnly {
			if matchesPrefix(prot, guest) || matchesPrefix(guest, prot) {
				out = append(out, [2]string{prot, guest})
			}
		}
	}
	return out
}

// PolicyError reports a misconfigured route policy.
type PolicyError struct {
	Overlaps [][2]string
}

func (e *PolicyError) Error() string {
	pairs := make([]string, 0, len(e.Overlaps))
	for _, o := range e.Overlaps {
		pairs = append(pairs, fmt.Sprintf("%s~%s", o[0], o[1]))
	}
	return "route policy: protected and guest-only prefixes overlap (protected wins): " + strings.Join(pairs, ", ")
}

// Validate returns a *PolicyError when the two prefix lists are not disjoint.
func (p *RoutePolicy) Validate() error {
	if overlaps := p.Overlaps(); len(overlaps) > 0 {
		return &PolicyError{Overlaps: overlaps}
	}
	return nil
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if matchesPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// matchesPrefix reports path == prefix or path under prefix + "/".
// "/dashboard" matches "/dashboard/42" but not "/dashboard-archive".
func matchesPrefix(path, prefix string) bool {
	if prefix == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalizePrefixes(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		prefix = strings.ToLower(strings.TrimSpace(prefix))
		if prefix == "" {
			continue
		}
		if !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}
		if len(prefix) > 1 {
			prefix = strings.TrimRight(prefix, "/")
			if prefix == "" {
				prefix = "/"
			}
		}
		out = append(out, prefix)
	}
	return out
}
