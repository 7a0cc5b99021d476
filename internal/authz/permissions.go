package authz

// Subscription flags a company can have enabled. A permission tagged with a
// subscription is only granted through client-interface roles when the user's
// company carries the flag.
const (
	SubscriptionERP = "erp"
)

// Permission is a "<resource>:<action>" grant, optionally subscription-gated.
type Permission struct {
	Name         string
	Subscription string
}

// PermissionTable maps a role name to the permissions it grants. Built once
// at startup, read-only afterwards.
type PermissionTable map[string][]Permission

type right struct {
	permission   string
	subscription string
	roles        []string
}

// rights is the platform's static permission list. One line per permission,
// listing every role allowed to hold it.
var rights = []right{
	{permission: "events:read", roles: []string{RoleAuxiliary, RolePlanningReferent, RoleCoach, RoleClientAdmin}},
	{permission: "events:edit", roles: []string{RolePlanningReferent, RoleCoach, RoleClientAdmin}},
	{permission: "events:own:edit", roles: []string{RoleAuxiliary}},
	{permission: "customers:read", roles: []string{RoleAuxiliary, RolePlanningReferent, RoleCoach, RoleClientAdmin}},
	{permission: "customers:edit", roles: []string{RoleCoach, RoleClientAdmin}},
	{permission: "customers:administrative:edit", subscription: SubscriptionERP, roles: []string{RoleClientAdmin}},
	{permission: "users:list", roles: []string{RoleCoach, RoleClientAdmin, RoleVendorAdmin, RoleHoldingAdmin}},
	{permission: "users:edit", roles: []string{RoleCoach, RoleClientAdmin, RoleVendorAdmin, RoleHoldingAdmin}},
	{permission: "contracts:edit", subscription: SubscriptionERP, roles: []string{RoleClientAdmin, RoleVendorAdmin}},
	{permission: "pay:read", subscription: SubscriptionERP, roles: []string{RoleClientAdmin}},
	{permission: "pay:edit", subscription: SubscriptionERP, roles: []string{RoleClientAdmin}},
	{permission: "bills:read", subscription: SubscriptionERP, roles: []string{RoleClientAdmin}},
	{permission: "bills:edit", subscription: SubscriptionERP, roles: []string{RoleClientAdmin}},
	{permission: "payments:list", subscription: SubscriptionERP, roles: []string{RoleClientAdmin}},
	{permission: "exports:read", roles: []string{RoleCoach, RoleClientAdmin}},
	{permission: "exports:edit", roles: []string{RoleClientAdmin}},
	{permission: "config:read", roles: []string{RoleClientAdmin, RoleHoldingAdmin}},
	{permission: "config:edit", roles: []string{RoleClientAdmin}},
	{permission: "companies:create", roles: []string{RoleVendorAdmin, RoleHoldingAdmin}},
	{permission: "companies:read", roles: []string{RoleClientAdmin, RoleVendorAdmin, RoleHoldingAdmin}},
	{permission: "companies:edit", roles: []string{RoleVendorAdmin, RoleHoldingAdmin}},
	{permission: "roles:read", roles: []string{RoleCoach, RoleClientAdmin, RoleVendorAdmin}},
	{permission: "email:send", roles: []string{RoleCoach, RoleClientAdmin, RoleVendorAdmin}},
	{permission: "sms:send", roles: []string{RoleCoach, RoleClientAdmin}},
	{permission: "scripts:run", roles: []string{RoleVendorAdmin}},
	{permission: "courses:create", roles: []string{RoleVendorAdmin, RoleTrainingManager}},
	{permission: "courses:edit", roles: []string{RoleVendorAdmin, RoleTrainingManager, RoleHoldingAdmin}},
	{permission: "attendances:read", roles: []string{RoleVendorAdmin, RoleTrainingManager, RoleTrainer}},
	{permission: "attendances:edit", roles: []string{RoleVendorAdmin, RoleTrainer}},
	{permission: "holdings:read", roles: []string{RoleVendorAdmin, RoleHoldingAdmin}},
	{permission: "holdings:edit", roles: []string{RoleVendorAdmin}},
}

// DefaultPermissionTable inverts the rights list into a role-indexed table.
func DefaultPermissionTable() PermissionTable {
	table := make(PermissionTable)
	for _, r := range rights {
		for _, role := range r.roles {
			table[role] = append(table[role], Permission{
				Name:         r.permission,
				Subscription: r.subscription,
			})
		}
	}
	return table
}
