package authz

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestAuthz(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Authz Module Suite")
}

// Mock repository for testing
type mockAuthzRepository struct {
	users              map[int64]*ResolvedUser
	companies          map[int64]*Company
	holdings           map[int64]*Holding
	holdingCompanies   map[int64][]int64
	referredCustomers  map[int64][]int64
	returnError        bool
	errorToReturn      error
	holdingLookupFail  bool
	customerLookupFail bool
}

func newMockAuthzRepository() *mockAuthzRepository {
	return &mockAuthzRepository{
		users:             make(map[int64]*ResolvedUser),
		companies:         make(map[int64]*Company),
		holdings:          make(map[int64]*Holding),
		holdingCompanies:  make(map[int64][]int64),
		referredCustomers: make(map[int64][]int64),
	}
}

func (m *mockAuthzRepository) GetUserForValidation(ctx context.Context, userID int64) (*ResolvedUser, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockAuthzRepository) GetCompany(ctx context.Context, companyID int64) (*Company, error) {
	if c, ok := m.companies[companyID]; ok {
		return c, nil
	}
	return nil, errors.New("company not found")
}

func (m *mockAuthzRepository) GetHolding(ctx context.Context, holdingID int64) (*Holding, error) {
	if h, ok := m.holdings[holdingID]; ok {
		return h, nil
	}
	return nil, errors.New("holding not found")
}

func (m *mockAuthzRepository) GetHoldingCompanyIDs(ctx context.Context, holdingID int64) ([]int64, error) {
	if m.holdingLookupFail {
		return nil, errors.New("holding companies lookup failed")
	}
	return m.holdingCompanies[holdingID], nil
}

func (m *mockAuthzRepository) GetReferredCustomerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.customerLookupFail {
		return nil, errors.New("referred customers lookup failed")
	}
	return m.referredCustomers[userID], nil
}

func clientRole(id int64, name string) *Role {
	return &Role{ID: id, Name: name, Interface: InterfaceClient}
}

func openMembership(entityID int64, start time.Time) Membership {
	return Membership{EntityID: entityID, StartDate: start}
}

var _ = ginkgo.Describe("Authz Service", func() {
	var (
		service *Service
		repo    *mockAuthzRepository
		now     time.Time
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2022, time.March, 10, 12, 0, 0, 0, time.UTC)
		repo = newMockAuthzRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		service = NewService(repo, DefaultPermissionTable(), logger)
		service.now = func() time.Time { return now }
	})

	ginkgo.Describe("Validate", func() {
		ginkgo.It("should fail closed when the token has no user id", func() {
			result := service.Validate(ctx, DecodedToken{})
			gomega.Expect(result.IsValid).To(gomega.BeFalse())
			gomega.Expect(result.Credentials).To(gomega.BeNil())
		})

		ginkgo.It("should fail closed on any lookup error", func() {
			repo.returnError = true
			repo.errorToReturn = errors.New("db down")

			result := service.Validate(ctx, DecodedToken{UserID: 1})
			gomega.Expect(result.IsValid).To(gomega.BeFalse())
		})

		ginkgo.It("should validate a user with no role and no company with only the self scopes", func() {
			repo.users[7] = &ResolvedUser{
				ID:       7,
				Identity: Identity{FirstName: "Jeanne", LastName: "Duval"},
				Email:    "jeanne@alenvi.io",
			}

			result := service.Validate(ctx, DecodedToken{UserID: 7})
			gomega.Expect(result.IsValid).To(gomega.BeTrue())
			gomega.Expect(result.Credentials.Scope).To(gomega.ConsistOf("user:read-7", "user:edit-7"))
			gomega.Expect(result.Credentials.Company).To(gomega.BeNil())
		})

		ginkgo.It("should include the role name and its permissions in scope", func() {
			repo.companies[10] = &Company{ID: 10, Name: "Alenvi Paris", Subscriptions: map[string]bool{}}
			repo.users[1] = &ResolvedUser{
				ID:                 1,
				Email:              "aux@alenvi.io",
				Roles:              RoleSlots{Client: clientRole(1, RoleAuxiliary)},
				CompanyMemberships: []Membership{openMembership(10, now.AddDate(-1, 0, 0))},
			}

			result := service.Validate(ctx, DecodedToken{UserID: 1})
			gomega.Expect(result.IsValid).To(gomega.BeTrue())
			gomega.Expect(result.Credentials.Scope).To(gomega.ContainElements(
				RoleAuxiliary, "events:read", "events:own:edit", "customers:read", "company-10"))
			gomega.Expect(result.Credentials.Role.Client).ToNot(gomega.BeNil())
			gomega.Expect(*result.Credentials.Role.Client).To(gomega.Equal(RoleAuxiliary))
		})

		ginkgo.It("should never repeat a scope granted by several roles", func() {
			repo.companies[10] = &Company{ID: 10, Name: "Alenvi Paris", Subscriptions: map[string]bool{}}
			repo.users[1] = &ResolvedUser{
				ID:    1,
				Email: "admin@alenvi.io",
				Roles: RoleSlots{
					Client: clientRole(1, RoleClientAdmin),
					Vendor: &Role{ID: 9, Name: RoleVendorAdmin, Interface: InterfaceVendor},
				},
				CompanyMemberships: []Membership{openMembership(10, now.AddDate(-1, 0, 0))},
			}

			result := service.Validate(ctx, DecodedToken{UserID: 1})
			gomega.Expect(result.IsValid).To(gomega.BeTrue())

			seen := map[string]int{}
			for _, s := range result.Credentials.Scope {
				seen[s]++
			}
			for scope, count := range seen {
				gomega.Expect(count).To(gomega.Equal(1), "scope %s appeared %d times", scope, count)
			}
			// users:edit is granted by both roles and must appear exactly once
			gomega.Expect(seen["users:edit"]).To(gomega.Equal(1))
		})

		ginkgo.Describe("subscription gating", func() {
			ginkgo.BeforeEach(func() {
				repo.users[1] = &ResolvedUser{
					ID:                 1,
					Email:              "admin@alenvi.io",
					Roles:              RoleSlots{Client: clientRole(1, RoleClientAdmin)},
					CompanyMemberships: []Membership{openMembership(10, now.AddDate(-1, 0, 0))},
				}
			})

			ginkgo.It("should withhold erp-gated permissions when the subscription is off", func() {
				repo.companies[10] = &Company{ID: 10, Subscriptions: map[string]bool{SubscriptionERP: false}}

				result := service.Validate(ctx, DecodedToken{UserID: 1})
				gomega.Expect(result.Credentials.Scope).ToNot(gomega.ContainElement("contracts:edit"))
				gomega.Expect(result.Credentials.Scope).ToNot(gomega.ContainElement("pay:read"))
				gomega.Expect(result.Credentials.Scope).To(gomega.ContainElement("config:edit"))
			})

			ginkgo.It("should grant exactly the erp-gated permissions when the subscription is on", func() {
				repo.companies[10] = &Company{ID: 10, Subscriptions: map[string]bool{SubscriptionERP: true}}

				result := service.Validate(ctx, DecodedToken{UserID: 1})
				gomega.Expect(result.Credentials.Scope).To(gomega.ContainElements(
					"contracts:edit", "pay:read", "pay:edit", "bills:read"))
			})

			ginkgo.It("should withhold gated permissions for a client role without a company", func() {
				repo.users[1].CompanyMemberships = nil

				result := service.Validate(ctx, DecodedToken{UserID: 1})
				gomega.Expect(result.IsValid).To(gomega.BeTrue())
				gomega.Expect(result.Credentials.Scope).ToNot(gomega.ContainElement("contracts:edit"))
				gomega.Expect(result.Credentials.Scope).To(gomega.ContainElement("config:edit"))
			})

			ginkgo.It("should not gate vendor-interface roles on subscriptions", func() {
				repo.users[1].Roles = RoleSlots{Vendor: &Role{ID: 9, Name: RoleVendorAdmin, Interface: InterfaceVendor}}
				repo.users[1].CompanyMemberships = nil

				result := service.Validate(ctx, DecodedToken{UserID: 1})
				gomega.Expect(result.Credentials.Scope).To(gomega.ContainElement("contracts:edit"))
			})
		})

		ginkgo.Describe("holding expansion", func() {
			ginkgo.It("should grant a company scope for every company of the holding", func() {
				repo.companies[10] = &Company{ID: 10, Subscriptions: map[string]bool{}}
				repo.holdings[3] = &Holding{ID: 3, Name: "Groupe Nord"}
				repo.holdingCompanies[3] = []int64{10, 11, 12}
				repo.users[1] = &ResolvedUser{
					ID:                 1,
					Email:              "holding@alenvi.io",
					Roles:              RoleSlots{Holding: &Role{ID: 5, Name: RoleHoldingAdmin, Interface: InterfaceHolding}},
					CompanyMemberships: []Membership{openMembership(10, now.AddDate(-1, 0, 0))},
					HoldingMemberships: []Membership{openMembership(3, now.AddDate(-1, 0, 0))},
				}

				result := service.Validate(ctx, DecodedToken{UserID: 1})
				gomega.Expect(result.IsValid).To(gomega.BeTrue())
				gomega.Expect(result.Credentials.Scope).To(gomega.ContainElements(
					"company-10", "company-11", "company-12"))
			})

			ginkgo.It("should fail closed when the holding companies lookup fails", func() {
				repo.holdings[3] = &Holding{ID: 3}
				repo.holdingLookupFail = true
				repo.users[1] = &ResolvedUser{
					ID:                 1,
					HoldingMemberships: []Membership{openMembership(3, now.AddDate(-1, 0, 0))},
				}

				result := service.Validate(ctx, DecodedToken{UserID: 1})
				gomega.Expect(result.IsValid).To(gomega.BeFalse())
			})
		})

		ginkgo.Describe("referent customer scopes", func() {
			ginkgo.It("should grant a customer scope for every customer the user is referent of", func() {
				repo.companies[10] = &Company{ID: 10, Subscriptions: map[string]bool{}}
				repo.users[1] = &ResolvedUser{
					ID:                 1,
					Email:              "aux@alenvi.io",
					Roles:              RoleSlots{Client: clientRole(1, RolePlanningReferent)},
					CompanyMemberships: []Membership{openMembership(10, now.AddDate(-1, 0, 0))},
				}
				repo.referredCustomers[1] = []int64{101, 102}

				result := service.Validate(ctx, DecodedToken{UserID: 1})
				gomega.Expect(result.IsValid).To(gomega.BeTrue())
				gomega.Expect(result.Credentials.Scope).To(gomega.ContainElements(
					"customer-101", "customer-102"))
			})

			ginkgo.It("should grant no customer scope to a user without referent links", func() {
				repo.users[7] = &ResolvedUser{ID: 7, Email: "jeanne@alenvi.io"}

				result := service.Validate(ctx, DecodedToken{UserID: 7})
				gomega.Expect(result.IsValid).To(gomega.BeTrue())
				for _, s := range result.Credentials.Scope {
					gomega.Expect(s).ToNot(gomega.HavePrefix("customer-"))
				}
			})

			ginkgo.It("should fail closed when the referred customers lookup fails", func() {
				repo.users[1] = &ResolvedUser{ID: 1}
				repo.customerLookupFail = true

				result := service.Validate(ctx, DecodedToken{UserID: 1})
				gomega.Expect(result.IsValid).To(gomega.BeFalse())
			})
		})

		ginkgo.It("should resolve the company from an expired-then-current membership history", func() {
			repo.companies[20] = &Company{ID: 20, Subscriptions: map[string]bool{}}
			past := now.AddDate(-2, 0, 0)
			pastEnd := now.AddDate(-1, 0, 0)
			repo.users[1] = &ResolvedUser{
				ID: 1,
				CompanyMemberships: []Membership{
					{EntityID: 20, StartDate: now.AddDate(0, -6, 0)},
					{EntityID: 10, StartDate: past, EndDate: &pastEnd},
				},
			}

			result := service.Validate(ctx, DecodedToken{UserID: 1})
			gomega.Expect(result.IsValid).To(gomega.BeTrue())
			gomega.Expect(result.Credentials.Company.ID).To(gomega.Equal(int64(20)))
		})
	})

	ginkgo.Describe("PickCurrentMembership", func() {
		ginkgo.It("should return nil for an empty history", func() {
			gomega.Expect(PickCurrentMembership(nil, now)).To(gomega.BeNil())
		})

		ginkgo.It("should skip memberships that have not started", func() {
			history := []Membership{{EntityID: 1, StartDate: now.AddDate(0, 1, 0)}}
			gomega.Expect(PickCurrentMembership(history, now)).To(gomega.BeNil())
		})

		ginkgo.It("should skip memberships that already ended", func() {
			end := now.AddDate(0, -1, 0)
			history := []Membership{{EntityID: 1, StartDate: now.AddDate(0, -2, 0), EndDate: &end}}
			gomega.Expect(PickCurrentMembership(history, now)).To(gomega.BeNil())
		})

		ginkgo.It("should pick a membership ending in the future", func() {
			end := now.AddDate(0, 1, 0)
			history := []Membership{{EntityID: 4, StartDate: now.AddDate(0, -1, 0), EndDate: &end}}
			m := PickCurrentMembership(history, now)
			gomega.Expect(m).ToNot(gomega.BeNil())
			gomega.Expect(m.EntityID).To(gomega.Equal(int64(4)))
		})
	})
})
