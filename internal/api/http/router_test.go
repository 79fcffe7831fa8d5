package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/api/http/handlers"
	"github.com/portkey-logistics/portkey/internal/auth"
	"github.com/portkey-logistics/portkey/internal/config"
	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/gate"
	"github.com/portkey-logistics/portkey/internal/observability"
	"github.com/portkey-logistics/portkey/internal/service"
)

var testCookies = auth.NewCookieSettings(config.SupabaseConfig{
	AccessCookie:  "sb-access-token",
	RefreshCookie: "sb-refresh-token",
	CookiePath:    "/",
})

// sessions accepts the token "valid" for user-1 and "boss" for the admin.
type sessions struct{}

func (sessions) ValidateAndRefresh(_ context.Context, header string) (*auth.Session, error) {
	access, _ := testCookies.SessionTokens(header)
	identity, err := sessions{}.GetUser(context.Background(), access)
	if err != nil {
		return nil, err
	}
	return &auth.Session{Identity: identity}, nil
}

func (sessions) GetUser(_ context.Context, token string) (*domain.Identity, error) {
	switch token {
	case "valid":
		return &domain.Identity{UserID: "user-1"}, nil
	case "boss":
		return &domain.Identity{UserID: "admin-1"}, nil
	}
	return nil, auth.ErrSessionRejected
}

func (sessions) ExchangeSession(context.Context, string, string) (*auth.Session, error) {
	return nil, auth.ErrSessionRejected
}

func (sessions) SignOut(context.Context, string) {}

func (sessions) Cookies() auth.CookieSettings { return testCookies }

type profiles struct{}

func (profiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if id == "admin-1" {
		return &domain.Profile{ID: id, Role: domain.RoleAdmin}, nil
	}
	return nil, pgx.ErrNoRows
}

func (profiles) Sync(_ context.Context, in service.ProfileSyncInput) (*domain.Profile, error) {
	return &domain.Profile{ID: in.ID, Role: domain.RoleClient}, nil
}

func (profiles) Get(ctx context.Context, id string) (*domain.Profile, error) {
	return profiles{}.GetByID(ctx, id)
}

func (profiles) SyncIdentity(_ context.Context, identity *domain.Identity) (*domain.Profile, error) {
	return &domain.Profile{ID: identity.UserID, Role: domain.RoleClient}, nil
}

func (profiles) List(context.Context, service.Actor, int, int) ([]domain.Profile, error) {
	return []domain.Profile{{ID: "admin-1", Role: domain.RoleAdmin}, {ID: "user-1", Role: domain.RoleClient}}, nil
}

func (profiles) SetRole(_ context.Context, _ service.Actor, id string, role domain.ProfileRole) (*domain.Profile, error) {
	return &domain.Profile{ID: id, Role: role}, nil
}

func (profiles) Delete(context.Context, service.Actor, string) error { return nil }

type shipments struct{}

func (shipments) Create(context.Context, service.Actor, service.ShipmentCreateInput) (*domain.Shipment, error) {
	panic("unexpected create")
}

func (shipments) List(context.Context, service.Actor, service.ShipmentListFilter) ([]domain.Shipment, error) {
	return []domain.Shipment{{ID: "s-1"}}, nil
}

func (shipments) Get(context.Context, service.Actor, string) (*domain.Shipment, error) {
	return nil, pgx.ErrNoRows
}

func (shipments) Update(context.Context, service.Actor, string, service.ShipmentUpdateInput) (*domain.Shipment, error) {
	return nil, pgx.ErrNoRows
}

func (shipments) Delete(context.Context, service.Actor, string) error { return nil }

type documents struct{}

func (documents) Attach(context.Context, service.Actor, string, service.DocumentCreateInput) (*domain.ShipmentDocument, error) {
	return nil, pgx.ErrNoRows
}

func (documents) List(context.Context, service.Actor, string) ([]domain.ShipmentDocument, error) {
	return nil, nil
}

func (documents) Delete(context.Context, service.Actor, string, string) error { return nil }

type dashboard struct{}

func (dashboard) Status() service.DashboardStatus { return service.DashboardStatus{Status: "ok"} }

func (dashboard) Metrics(context.Context, service.Actor) (*domain.DashboardMetrics, error) {
	return domain.NewDashboardMetrics(), nil
}

func newServer(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	policy := gate.NewRoutePolicy([]string{"/dashboard", "/shipments", "/admin"}, []string{"/login", "/register"})
	engine := gate.NewEngine(policy, gate.EngineConfig{})
	require.NoError(t, engine.Validate())

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("portkey", "test", nil),
		Session:        handlers.NewSessionHandler(sessions{}, nil, engine, logger),
		Users:          handlers.NewUsersHandler(profiles{}),
		AdminUsers:     handlers.NewAdminUsersHandler(profiles{}),
		Shipments:      handlers.NewShipmentsHandler(shipments{}, documents{}),
		Dashboard:      handlers.NewDashboardHandler(dashboard{}),
		Pages:          handlers.NewPagesHandler(),
		AuthMiddleware: auth.NewAuthMiddleware(sessions{}, profiles{}, testCookies),
		Gate:           gate.New(gate.NewSessionReader(sessions{}, logger), engine, logger, metrics),
		Metrics:        metrics,
	})
	return app, metrics
}

func call(t *testing.T, app *fiber.App, method, target string, headers map[string]string, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestPagesAreGated(t *testing.T) {
	app, _ := newServer(t)

	resp, _ := call(t, app, http.MethodGet, "/dashboard/42", nil, "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirectTo=%2Fdashboard%2F42", resp.Header.Get("Location"))

	resp, _ = call(t, app, http.MethodGet, "/login", map[string]string{"Cookie": "sb-access-token=valid"}, "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, body := call(t, app, http.MethodGet, "/dashboard/42", map[string]string{"Cookie": "sb-access-token=valid"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"user_id":"user-1"`)

	resp, body = call(t, app, http.MethodGet, "/about", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"authenticated":false`)
}

func TestAPIUsesBearerAuthNotRedirects(t *testing.T) {
	app, _ := newServer(t)

	resp, body := call(t, app, http.MethodGet, "/api/shipments", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))
	assert.Contains(t, body, `"code":"UNAUTHORIZED"`)

	resp, _ = call(t, app, http.MethodGet, "/api/shipments", map[string]string{"Authorization": "Bearer valid"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/shipments", map[string]string{"Cookie": "sb-access-token=valid"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/api/shipments/abc", map[string]string{"Authorization": "Bearer valid"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"code":"NOT_FOUND"`)

	resp, _ = call(t, app, http.MethodGet, "/api/dashboard/status", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app, _ := newServer(t)

	resp, _ := call(t, app, http.MethodGet, "/api/admin/metrics", map[string]string{"Authorization": "Bearer valid"}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/admin/metrics", map[string]string{"Authorization": "Bearer boss"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	client := map[string]string{"Authorization": "Bearer valid", "Content-Type": "application/json"}
	boss := map[string]string{"Authorization": "Bearer boss", "Content-Type": "application/json"}

	resp, _ = call(t, app, http.MethodGet, "/api/admin/users", client, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodPatch, "/api/admin/users/user-1/role", client, `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodDelete, "/api/admin/users/user-1", client, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := call(t, app, http.MethodGet, "/api/admin/users", boss, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"id":"user-1"`)
	resp, body = call(t, app, http.MethodPatch, "/api/admin/users/user-1/role", boss, `{"role":"broker"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"role":"broker"`)
	resp, _ = call(t, app, http.MethodDelete, "/api/admin/users/user-1", boss, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestErrorMiddleware(t *testing.T) {
	app, _ := newServer(t)

	resp, body := call(t, app, http.MethodPost, "/api/shipments",
		map[string]string{"Authorization": "Bearer valid", "Content-Type": "application/json"}, `{"bl_number":"X"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, "panics are recovered")
	assert.Contains(t, body, `"code":"INTERNAL_ERROR"`)

	resp, body = call(t, app, http.MethodPost, "/about", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Contains(t, body, `"code":"METHOD_NOT_ALLOWED"`)

	resp, _ = call(t, app, http.MethodPost, "/auth/session",
		map[string]string{"Content-Type": "application/json"}, `{"access_token":"x","refresh_token":"y"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newServer(t)

	call(t, app, http.MethodGet, "/dashboard", nil, "")
	call(t, app, http.MethodGet, "/api/shipments", nil, "")

	resp, body := call(t, app, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `portkey_gate_decisions_total{classification="protected",outcome="redirect_login"} 1`)
	assert.Contains(t, body, `portkey_http_errors_total`)
	assert.Contains(t, body, `portkey_http_requests_total`)
}

func TestHealthLive(t *testing.T) {
	app, _ := newServer(t)
	resp, body := call(t, app, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"alive"`)
}
