package authz

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var errNoUserID = errors.New("token carries no user id")

// Repository resolves the persisted state a validation pass needs. Every
// method returns plain values, never lazily-populated references.
type Repository interface {
	GetUserForValidation(ctx context.Context, userID int64) (*ResolvedUser, error)
	GetCompany(ctx context.Context, companyID int64) (*Company, error)
	GetHolding(ctx context.Context, holdingID int64) (*Holding, error)
	GetHoldingCompanyIDs(ctx context.Context, holdingID int64) ([]int64, error)
	GetReferredCustomerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Service resolves decoded tokens into scoped credentials. It runs on the
// authentication hot path: side-effect free, one validation per request.
type Service struct {
	repo   Repository
	table  PermissionTable
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, table PermissionTable, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		table:  table,
		logger: logger,
		now:    time.Now,
	}
}

// Validate turns a decoded token into credentials. It fails closed: any
// resolution error is logged and reported as an invalid token, never
// propagated to the caller.
func (s *Service) Validate(ctx context.Context, token DecodedToken) TokenValidation {
	creds, err := s.resolve(ctx, token)
	if err != nil {
		s.logger.Warn("token validation failed", "error", err, "user_id", token.UserID)
		return TokenValidation{IsValid: false}
	}
	return TokenValidation{IsValid: true, Credentials: creds}
}

func (s *Service) resolve(ctx context.Context, token DecodedToken) (*Credentials, error) {
	if token.UserID == 0 {
		return nil, errNoUserID
	}

	user, err := s.repo.GetUserForValidation(ctx, token.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	var company *Company
	if m := PickCurrentMembership(user.CompanyMemberships, now); m != nil {
		company, err = s.repo.GetCompany(ctx, m.EntityID)
		if err != nil {
			return nil, err
		}
	}

	var holding *Holding
	if m := PickCurrentMembership(user.HoldingMemberships, now); m != nil {
		holding, err = s.repo.GetHolding(ctx, m.EntityID)
		if err != nil {
			return nil, err
		}
	}

	scope := newScopeSet()
	for _, role := range user.Roles.Populated() {
		scope.add(role.Name)
		for _, perm := range s.rolePermissions(role, company) {
			scope.add(perm)
		}
	}

	scope.add(UserReadScope(user.ID))
	scope.add(UserEditScope(user.ID))
	if company != nil {
		scope.add(CompanyScope(company.ID))
	}
	if holding != nil {
		ids, err := s.repo.GetHoldingCompanyIDs(ctx, holding.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			scope.add(CompanyScope(id))
		}
	}

	// Planning referents carry one scope per customer they are referent of.
	customerIDs, err := s.repo.GetReferredCustomerIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range customerIDs {
		scope.add(CustomerScope(id))
	}

	return &Credentials{
		ID:       user.ID,
		Identity: user.Identity,
		Email:    user.Email,
		Company:  company,
		Holding:  holding,
		Role:     roleNames(user.Roles),
		Scope:    scope.values(),
	}, nil
}

// rolePermissions expands one role through the static table. Client-interface
// roles have subscription-gated permissions filtered against the company's
// flags; no company means no gated permission at all. Vendor and holding
// roles get their full set, ungated.
func (s *Service) rolePermissions(role *Role, company *Company) []string {
	perms := s.table[role.Name]
	granted := make([]string, 0, len(perms))
	for _, p := range perms {
		if role.Interface == InterfaceClient && p.Subscription != "" {
			if company == nil || !company.Subscriptions[p.Subscription] {
				continue
			}
		}
		granted = append(granted, p.Name)
	}
	return granted
}

func roleNames(slots RoleSlots) RoleNames {
	var names RoleNames
	if slots.Client != nil {
		names.Client = &slots.Client.Name
	}
	if slots.Vendor != nil {
		names.Vendor = &slots.Vendor.Name
	}
	if slots.Holding != nil {
		names.Holding = &slots.Holding.Name
	}
	return names
}

// scopeSet deduplicates scope tokens while preserving insertion order.
type scopeSet struct {
	seen  map[string]struct{}
	order []string
}

func newScopeSet() *scopeSet {
	return &scopeSet{seen: make(map[string]struct{})}
}

func (s *scopeSet) add(scope string) {
	if _, ok := s.seen[scope]; ok {
		return
	}
	s.seen[scope] = struct{}{}
	s.order = append(s.order, scope)
}

func (s *scopeSet) values() []string {
	return s.order
}
