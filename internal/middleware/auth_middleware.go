package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-pos-ledger/internal/audit"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/pkg/jwt"
)

// Locals keys set by RequireAuth
const (
	LocalOperatorID = "operator_id"
	LocalOperator   = "operator_name"
	LocalRole       = "role_code"
	LocalPrivileges = "operator_privileges"
)

// RequireAuth validates the bearer token and derives the operator's
// privileges from the role it carries. The operator name travels on the
// request's user context so audit entries are stamped with it.
func RequireAuth(issuer *jwt.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := issuer.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		role, ok := model.FindRole(claims.RoleCode)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Unknown role '" + claims.RoleCode + "'"})
		}

		name := claims.Name
		if name == "" {
			name = claims.OperatorID
		}

		c.Locals(LocalOperatorID, claims.OperatorID)
		c.Locals(LocalOperator, name)
		c.Locals(LocalRole, role.Code)
		c.Locals(LocalPrivileges, role.Privileges)
		c.SetUserContext(audit.WithActor(c.UserContext(), name))

		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated operator has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return RequireAnyPrivilege(requiredPrivilege)
}

// RequireAnyPrivilege checks if the operator has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, granted := range privileges {
			for _, required := range requiredPrivileges {
				if granted == required {
					return c.Next()
				}
			}
		}

		if len(requiredPrivileges) == 1 {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + requiredPrivileges[0] + "' privilege",
			})
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
