package model

// Role codes as constants
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
)

// Privilege codes checked by the HTTP layer
const (
	PrivSaleView       = "sale:view"
	PrivSaleCreate     = "sale:create"
	PrivSaleUpdate     = "sale:update"
	PrivSaleDelete     = "sale:delete"
	PrivPaymentManage  = "payment:manage"
	PrivProductView    = "product:view"
	PrivClientView     = "client:view"
	PrivClientCreate   = "client:create"
	PrivDashboardView  = "dashboard:view"
	PrivAuditView      = "audit:view"
	PrivSnapshotExport = "snapshot:export"
)

// Role represents an operator role and the privileges it grants
type Role struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Privileges  []string `json:"privileges"`
}

// DefaultRoles defines the roles an operator token can carry
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full access including audit trail and backups",
		Privileges: []string{
			PrivSaleView, PrivSaleCreate, PrivSaleUpdate, PrivSaleDelete,
			PrivPaymentManage, PrivProductView, PrivClientView, PrivClientCreate,
			PrivDashboardView, PrivAuditView, PrivSnapshotExport,
		},
	},
	{
		Code:        RoleManager,
		Name:        "Shop Manager",
		Description: "Sales, payments and cancellations",
		Privileges: []string{
			PrivSaleView, PrivSaleCreate, PrivSaleUpdate, PrivSaleDelete,
			PrivPaymentManage, PrivProductView, PrivClientView, PrivClientCreate,
			PrivDashboardView,
		},
	},
	{
		Code:        RoleCashier,
		Name:        "Cashier",
		Description: "Checkout and payment collection",
		Privileges: []string{
			PrivSaleView, PrivSaleCreate, PrivPaymentManage, PrivProductView,
			PrivClientView, PrivClientCreate,
		},
	},
}

// FindRole returns the role with the given code
func FindRole(code string) (Role, bool) {
	for _, r := range DefaultRoles {
		if r.Code == code {
			return r, true
		}
	}
	return Role{}, false
}

// HasPrivilege checks if the role grants a specific privilege
func (r Role) HasPrivilege(code string) bool {
	for _, p := range r.Privileges {
		if p == code {
			return true
		}
	}
	return false
}
