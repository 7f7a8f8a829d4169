package http

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"monicore/pkg/core/fiber_handle"
	"monicore/pkg/core/security"
	"monicore/pkg/monitoring"
	"monicore/pkg/monitoring/alerting"
	internalapp "monicore/system/monitor/internal/app"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app   *internalapp.App
	fiber *fiber.App
	auth  *security.AdminAuth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := alerting.NewMemoryStore()
	mon := monitoring.New(monitoring.Config{}, store, nil, nil)
	a := internalapp.NewApp(internalapp.Deps{Monitor: mon, Store: store})
	auth := security.NewAdminAuth([]byte("test-secret"), time.Hour)

	f := fiber.New(fiber.Config{ErrorHandler: fiber_handle.ErrHandler})
	NewMonitorController(a).RegisterRoutes(f)
	NewAlertAdminController(a, auth).RegisterRoutes(f.Group("/admin"))

	return &testEnv{app: a, fiber: f, auth: auth}
}

func (e *testEnv) token(t *testing.T, tenant string, roles ...string) string {
	t.Helper()
	tok, _, err := e.auth.CreateAdminToken(&security.AdminClaims{ID: 1, Account: "ops", AdminType: roles, TenantID: tenant})
	require.NoError(t, err)
	return tok
}

func (e *testEnv) superToken(t *testing.T) string {
	return e.token(t, "", security.SuperAdmin)
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := jsoniter.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}
