package authz

import (
	"context"
	"fmt"
	"time"
)

// RoleInterface is the tenancy axis a role belongs to. Client roles govern a
// single care company, vendor roles the platform operator side, holding roles
// a group of companies.
type RoleInterface string

const (
	InterfaceClient  RoleInterface = "client"
	InterfaceVendor  RoleInterface = "vendor"
	InterfaceHolding RoleInterface = "holding"
)

// Canonical role names.
const (
	RoleClientAdmin      = "client_admin"
	RoleCoach            = "coach"
	RoleAuxiliary        = "auxiliary"
	RolePlanningReferent = "planning_referent"
	RoleVendorAdmin      = "vendor_admin"
	RoleTrainingManager  = "training_organisation_manager"
	RoleTrainer          = "trainer"
	RoleHoldingAdmin     = "holding_admin"
)

type Role struct {
	ID        int64
	Name      string
	Interface RoleInterface
}

// RoleSlots holds up to one role per interface. Unpopulated slots are nil.
type RoleSlots struct {
	Client  *Role
	Vendor  *Role
	Holding *Role
}

// Populated returns the non-nil roles, client first.
func (s RoleSlots) Populated() []*Role {
	var roles []*Role
	for _, r := range []*Role{s.Client, s.Vendor, s.Holding} {
		if r != nil {
			roles = append(roles, r)
		}
	}
	return roles
}

type Identity struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type Company struct {
	ID            int64
	Name          string
	HoldingID     *int64
	Subscriptions map[string]bool
}

type Holding struct {
	ID   int64
	Name string
}

// Membership is one slice of a time-bounded company or holding history.
type Membership struct {
	EntityID  int64
	StartDate time.Time
	EndDate   *time.Time
}

// ResolvedUser is everything the store resolves for one validation pass.
type ResolvedUser struct {
	ID                 int64
	Identity           Identity
	Email              string
	Roles              RoleSlots
	CompanyMemberships []Membership
	HoldingMemberships []Membership
}

// RoleNames is the name-only projection returned inside credentials.
type RoleNames struct {
	Client  *string `json:"client,omitempty"`
	Vendor  *string `json:"vendor,omitempty"`
	Holding *string `json:"holding,omitempty"`
}

// Credentials is the per-request authorization result. It is recomputed on
// every authenticated request and never persisted.
type Credentials struct {
	ID       int64    `json:"_id"`
	Identity Identity `json:"identity"`
	Email    string   `json:"email"`
	Company  *Company `json:"-"`
	Holding  *Holding `json:"-"`
	Role     RoleNames `json:"role"`
	Scope    []string `json:"scope"`
}

// HasScope reports whether the credentials carry the given scope token.
func (c *Credentials) HasScope(scope string) bool {
	for _, s := range c.Scope {
		if s == scope {
			return true
		}
	}
	return false
}

// CompanyID returns the user's current company id, or 0 when none.
func (c *Credentials) CompanyID() int64 {
	if c.Company == nil {
		return 0
	}
	return c.Company.ID
}

// TokenValidation is the outcome of Validate. A failed validation carries no
// credentials and no error: authorization fails closed.
type TokenValidation struct {
	IsValid     bool
	Credentials *Credentials
}

// DecodedToken is the already-verified token payload handed to Validate.
type DecodedToken struct {
	UserID int64
}

// Synthetic scope builders.

func UserReadScope(userID int64) string {
	return fmt.Sprintf("user:read-%d", userID)
}

func UserEditScope(userID int64) string {
	return fmt.Sprintf("user:edit-%d", userID)
}

func CompanyScope(companyID int64) string {
	return fmt.Sprintf("company-%d", companyID)
}

func CustomerScope(customerID int64) string {
	return fmt.Sprintf("customer-%d", customerID)
}

type credentialsCtxKey struct{}

func ContextWithCredentials(ctx context.Context, creds *Credentials) context.Context {
	return context.WithValue(ctx, credentialsCtxKey{}, creds)
}

func CredentialsFromContext(ctx context.Context) (*Credentials, bool) {
	creds, ok := ctx.Value(credentialsCtxKey{}).(*Credentials)
	return creds, ok
}
