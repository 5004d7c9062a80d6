package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-ledger/internal/audit"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/pkg/jwt"
)

func newApp(issuer *jwt.Issuer) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", RequireAuth(issuer), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"actor": audit.ActorFrom(c.UserContext()),
			"role":  c.Locals(LocalRole),
		})
	})
	app.Delete("/sales", RequireAuth(issuer), RequirePrivilege(model.PrivSaleDelete), func(c *fiber.Ctx) error {
		return c.SendStatus(204)
	})
	app.Get("/reports", RequireAuth(issuer), RequireAnyPrivilege(model.PrivAuditView, model.PrivDashboardView), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	issuer := jwt.NewIssuer("secret", time.Hour)
	app := newApp(issuer)

	token, err := issuer.GenerateToken("u1", "Fatou", model.RoleCashier)
	require.NoError(t, err)
	unknownRole, err := issuer.GenerateToken("u2", "Guest", "GUEST")
	require.NoError(t, err)
	foreign, err := jwt.NewIssuer("other", time.Hour).GenerateToken("u3", "Eve", model.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", 401},
		{"wrong scheme", "Basic abc", 401},
		{"bad signature", "Bearer " + foreign, 401},
		{"unknown role", "Bearer " + unknownRole, 401},
		{"valid", "Bearer " + token, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Fatou", out["actor"])
	assert.Equal(t, model.RoleCashier, out["role"])
}

func TestRequirePrivilege(t *testing.T) {
	issuer := jwt.NewIssuer("secret", time.Hour)
	app := newApp(issuer)

	cashier, _ := issuer.GenerateToken("u1", "Fatou", model.RoleCashier)
	manager, _ := issuer.GenerateToken("u2", "Ibrahima", model.RoleManager)

	tests := []struct {
		name  string
		path  string
		verb  string
		token string
		want  int
	}{
		{"cashier cannot delete", "/sales", "DELETE", cashier, 403},
		{"manager deletes", "/sales", "DELETE", manager, 204},
		{"cashier has no reports", "/reports", "GET", cashier, 403},
		{"manager sees dashboard", "/reports", "GET", manager, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.verb, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
