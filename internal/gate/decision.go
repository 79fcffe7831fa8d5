package gate

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Outcome is what the gate does with a request.
type Outcome int

const (
	Allow Outcome = iota
	RedirectToLogin
	RedirectAway
)

func (o Outcome) String() string {
	switch o {
	case RedirectToLogin:
		return "redirect_login"
	case RedirectAway:
		return "redirect_away"
	default:
		return "allow"
	}
}

// Decision is the engine's verdict. Location is set for redirects only.
type Decision struct {
	Outcome        Outcome
	Classification Classification
	Location       string
}

// Engine applies the redirect policy table.
//
//	authenticated  classification  outcome
//	false          Protected       302 login?redirectTo=<path>
//	true           GuestOnly       302 redirectTo (if safe, not guest-only) or default
//	true           Protected       allow
//	false          GuestOnly       allow
//	any            Unrestricted    allow
type Engine struct {
	policy        *RoutePolicy
	loginPath     string
	defaultPath   string
	redirectParam string
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	LoginPath     string
	DefaultPath   string
	RedirectParam string
}

// NewEngine builds an engine over policy.
func NewEngine(policy *RoutePolicy, cfg EngineConfig) *Engine {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.DefaultPath == "" {
		cfg.DefaultPath = "/dashboard"
	}
	if cfg.RedirectParam == "" {
		cfg.RedirectParam = "redirectTo"
	}
	return &Engine{
		policy:        policy,
		loginPath:     cfg.LoginPath,
		defaultPath:   cfg.DefaultPath,
		redirectParam: cfg.RedirectParam,
	}
}

// Policy returns the route policy the engine classifies with.
func (e *Engine) Policy() *RoutePolicy {
	return e.policy
}

// LoginPath is where unauthenticated users are sent.
func (e *Engine) LoginPath() string {
	return e.loginPath
}

// RedirectParam is the query parameter carrying the post-login destination.
func (e *Engine) RedirectParam() string {
	return e.redirectParam
}

// Decide returns the outcome for a request to path. redirectTo is the raw
// value of the redirect query parameter, empty when absent.
func (e *Engine) Decide(authenticated bool, reqPath, redirectTo string) Decision {
	class := e.policy.Classify(reqPath)
	switch {
	case !authenticated && class == Protected:
		return Decision{Outcome: RedirectToLogin, Classification: class, Location: e.LoginLocation(reqPath)}
	case authenticated && class == GuestOnly:
		return Decision{Outcome: RedirectAway, Classification: class, Location: e.Destination(redirectTo)}
	default:
		return Decision{Outcome: Allow, Classification: class}
	}
}

// LoginLocation is the login URL that brings the user back to path afterwards.
func (e *Engine) LoginLocation(reqPath string) string {
	q := url.Values{}
	q.Set(e.redirectParam, reqPath)
	return e.loginPath + "?" + q.Encode()
}

// Destination resolves where an authenticated user is sent. A missing,
// off-site or guest-only redirectTo falls back to the default path, which
// keeps a crafted redirectTo=/login from looping.
func (e *Engine) Destination(redirectTo string) string {
	target, ok := localTarget(redirectTo)
	if !ok {
		return e.defaultPath
	}
	if e.policy.Classify(target.Path) == GuestOnly {
		return e.defaultPath
	}
	return target.String()
}

// Validate reports prefix overlaps together with any ValidatePaths failure.
func (e *Engine) Validate() error {
	return errors.Join(e.policy.Validate(), e.ValidatePaths())
}

// ValidatePaths checks that the login and default paths cannot redirect into each other.
func (e *Engine) ValidatePaths() error {
	if e.policy.Classify(e.loginPath) == Protected {
		return fmt.Errorf("route policy: login path %s is protected", e.loginPath)
	}
	if e.policy.Classify(e.defaultPath) == GuestOnly {
		return fmt.Errorf("route policy: default path %s is guest-only", e.defaultPath)
	}
	return nil
}

// localTarget accepts only same-origin absolute paths.
func localTarget(raw string) (*url.URL, bool) {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return nil, false
	}
	u.Path = path.Clean(u.Path)
	u.RawPath = ""
	return u, true
}
