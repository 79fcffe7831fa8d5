package gate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	policy := NewRoutePolicy(
		[]string{"/dashboard", "/shipments/", "settings"},
		[]string{"/login", "/register"},
	)

	cases := map[string]Classification{
		"/dashboard":          Protected,
		"/dashboard/":         Protected,
		"/dashboard/42":       Protected,
		"/dashboard/42/edit":  Protected,
		"/dashboard-archive":  Unrestricted,
		"/shipments":          Protected,
		"/shipments/abc":      Protected,
		"/settings":           Protected,
		"/login":              GuestOnly,
		"/login/callback":     GuestOnly,
		"/loginx":             Unrestricted,
		"/register":           GuestOnly,
		"/":                   Unrestricted,
		"/api/shipments":      Unrestricted,
		"":                    Unrestricted,
		"/Dashboard":          Protected,
		"/LOGIN":              GuestOnly,
	}
	for path, want := range cases {
		assert.Equal(t, want, policy.Classify(path), "path %q", path)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	policy := NewRoutePolicy([]string{"/dashboard"}, []string{"/login"})
	for _, path := range []string{"/dashboard/42", "/login", "/elsewhere"} {
		first := policy.Classify(path)
		assert.Equal(t, first, policy.Classify(path))
	}
}

func TestClassifyProtectedWinsOnOverlap(t *testing.T) {
	policy := NewRoutePolicy([]string{"/account"}, []string{"/account", "/account/signup"})

	assert.Equal(t, Protected, policy.Classify("/account"))
	assert.Equal(t, Protected, policy.Classify("/account/signup"))
}

func TestRootPrefixMatchesEverything(t *testing.T) {
	policy := NewRoutePolicy([]string{"/"}, nil)
	assert.Equal(t, Protected, policy.Classify("/"))
	assert.Equal(t, Protected, policy.Classify("/anything/below"))
}

func TestValidateFlagsOverlap(t *testing.T) {
	require.NoError(t, NewRoutePolicy([]string{"/dashboard"}, []string{"/login"}).Validate())

	err := NewRoutePolicy([]string{"/account", "/dashboard"}, []string{"/account/signup", "/login"}).Validate()
	require.Error(t, err)

	var policyErr *PolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, [][2]string{{"/account", "/account/signup"}}, policyErr.Overlaps)
	assert.Contains(t, err.Error(), "protected wins")
}

func TestClassifyIgnoresCase(t *testing.T) {
	policy := NewRoutePolicy([]string{"/Dashboard"}, []string{"/Login"})

	assert.Equal(t, []string{"/dashboard"}, policy.Protected())
	for _, path := range []string{"/dashboard/42", "/DASHBOARD/42", "/DashBoard"} {
		assert.Equal(t, Protected, policy.Classify(path), "path %q", path)
	}
	assert.Equal(t, GuestOnly, policy.Classify("/login"))
}

func TestNormalizePrefixes(t *testing.T) {
	policy := NewRoutePolicy([]string{" /a/ ", "", "b", "///"}, nil)
	assert.Equal(t, []string{"/a", "/b", "/"}, policy.Protected())
	assert.Empty(t, policy.GuestOnly())
}
