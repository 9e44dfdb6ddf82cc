package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/account"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/drivingschool_backend/pkg/paseto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/reqctx"
)

// fakeAccounts implements the two methods the middleware calls.
type fakeAccounts struct {
	account.Service
	live     map[uuid.UUID]bool
	resolved principal.Principal
}

func (f *fakeAccounts) ValidateSession(_ context.Context, sid, _ uuid.UUID) error {
	if f.live[sid] {
		return nil
	}
	return account.ErrSessionNotFound
}

func (f *fakeAccounts) Resolve(context.Context, uuid.UUID) (principal.Principal, error) {
	return f.resolved, nil
}

func newManager(t *testing.T) *pasetotoken.Manager {
	t.Helper()
	keys := pasetotoken.NewLocalKeys()
	m, err := pasetotoken.New(pasetotoken.Config{
		Mode:       keys.Mode,
		Issuer:     "drivingschool",
		Audience:   "drivingschool-api",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, keys)
	require.NoError(t, err)
	return m
}

func get(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthRequired(t *testing.T) {
	mgr := newManager(t)
	uid, live, dead := uuid.New(), uuid.New(), uuid.New()
	accounts := &fakeAccounts{live: map[uuid.UUID]bool{live: true}}

	var seen uuid.UUID
	app := fiber.New()
	app.Get("/", AuthRequired(mgr, accounts), func(c fiber.Ctx) error {
		id, _ := reqctx.UserIDFromContext(c.Context())
		seen = id
		return c.SendStatus(fiber.StatusOK)
	})

	access, err := mgr.IssueAccess(uid, &live)
	require.NoError(t, err)
	expired, err := mgr.IssueAccess(uid, &dead)
	require.NoError(t, err)
	refresh, err := mgr.IssueRefresh(uid, &live)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "not-a-token").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, refresh).StatusCode, "refresh tokens are rejected")
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, expired).StatusCode, "session gone")

	assert.Equal(t, fiber.StatusOK, get(t, app, access).StatusCode)
	assert.Equal(t, uid, seen)
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	mgr := newManager(t)
	accounts := &fakeAccounts{resolved: principal.ForAdmin(uuid.New())}

	var kind principal.Kind
	app := fiber.New()
	app.Get("/", OptionalAuth(mgr, accounts), ResolvePrincipal(accounts), func(c fiber.Ctx) error {
		kind = principal.From(c.Context()).Kind
		return c.SendStatus(fiber.StatusOK)
	})

	assert.Equal(t, fiber.StatusOK, get(t, app, "").StatusCode)
	assert.Equal(t, principal.Anonymous, kind)

	tok, err := mgr.IssueAccess(uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, get(t, app, tok).StatusCode)
	assert.Equal(t, principal.Admin, kind)
}

func TestRequirePermission(t *testing.T) {
	mgr := newManager(t)
	auth, err := authorize.NewDefault(context.Background())
	require.NoError(t, err)

	cases := []struct {
		name     string
		p        principal.Principal
		resource authorize.Resource
		action   authorize.Action
		want     int
	}{
		{"student books", principal.ForStudent(uuid.New(), uuid.New()), authorize.ResourceAppointment, authorize.ActionCreate, fiber.StatusOK},
		{"student checks out", principal.ForStudent(uuid.New(), uuid.New()), authorize.ResourceCart, authorize.ActionExecute, fiber.StatusOK},
		{"student admin portal", principal.ForStudent(uuid.New(), uuid.New()), authorize.ResourcePortalAdmin, authorize.ActionRead, fiber.StatusForbidden},
		{"instructor completes", principal.ForInstructor(uuid.New(), uuid.New()), authorize.ResourceAppointment, authorize.ActionComplete, fiber.StatusOK},
		{"instructor books", principal.ForInstructor(uuid.New(), uuid.New()), authorize.ResourceAppointment, authorize.ActionCreate, fiber.StatusForbidden},
		{"admin manages plans", principal.ForAdmin(uuid.New()), authorize.ResourcePlan, authorize.ActionDelete, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accounts := &fakeAccounts{resolved: tc.p}
			app := fiber.New()
			app.Get("/",
				OptionalAuth(mgr, accounts),
				ResolvePrincipal(accounts),
				RequirePermission(auth, tc.resource, tc.action),
				func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
			)

			tok, err := mgr.IssueAccess(uuid.New(), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, get(t, app, tok).StatusCode)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		accounts := &fakeAccounts{}
		app := fiber.New()
		app.Get("/", ResolvePrincipal(accounts),
			RequirePermission(auth, authorize.ResourceCart, authorize.ActionManage),
			func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
		)
		assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "").StatusCode)
	})
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID(nil))
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(reqctx.RequestIDFromContext(c.Context()))
	})

	resp := get(t, app, "")
	generated := resp.Header.Get(HeaderRequestID)
	assert.NotEmpty(t, generated)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "has space")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "has space", resp.Header.Get(HeaderRequestID))
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
}
