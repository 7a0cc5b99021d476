package user

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

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockUserRepository struct {
	users           map[int64]*User
	pushed          []string
	pulled          []string
	inactivityDates map[int64]*time.Time
	inactivitySet   bool
	assignedRoles   map[int64]string
	openContracts   int64
	countErr        error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:           make(map[int64]*User),
		inactivityDates: make(map[int64]*time.Time),
		assignedRoles:   make(map[int64]string),
	}
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) PushContractID(ctx context.Context, userID int64, contractID string) error {
	m.pushed = append(m.pushed, contractID)
	return nil
}

func (m *mockUserRepository) PullContractID(ctx context.Context, userID int64, contractID string) error {
	m.pulled = append(m.pulled, contractID)
	return nil
}

func (m *mockUserRepository) SetInactivityDate(ctx context.Context, userID int64, date *time.Time) error {
	m.inactivityDates[userID] = date
	m.inactivitySet = true
	return nil
}

func (m *mockUserRepository) AssignClientRole(ctx context.Context, userID int64, roleName string) error {
	m.assignedRoles[userID] = roleName
	return nil
}

func (m *mockUserRepository) CountOpenContracts(ctx context.Context, userID int64) (int64, error) {
	return m.openContracts, m.countErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = ginkgo.Describe("User Service", func() {
	var (
		repo    *mockUserRepository
		service *Service
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepository()
		service = NewService(repo, testLogger())
		ctx = context.Background()
	})

	ginkgo.Describe("PushContract", func() {
		ginkgo.It("records the contract and clears the inactivity date", func() {
			past := time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC)
			repo.users[1] = &User{ID: 1, InactivityDate: &past}

			err := service.PushContract(ctx, 1, "contract-1")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.pushed).To(gomega.Equal([]string{"contract-1"}))
			gomega.Expect(repo.inactivityDates[1]).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("EnsureAuxiliaryRole", func() {
		ginkgo.It("assigns the auxiliary role to a roleless user", func() {
			repo.users[1] = &User{ID: 1}

			err := service.EnsureAuxiliaryRole(ctx, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.assignedRoles[1]).To(gomega.Equal(RoleAuxiliary))
		})

		ginkgo.It("leaves an existing client role untouched", func() {
			roleID := int64(4)
			repo.users[1] = &User{ID: 1, ClientRoleID: &roleID}

			err := service.EnsureAuxiliaryRole(ctx, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.assignedRoles).To(gomega.BeEmpty())
		})

		ginkgo.It("leaves a vendor-interface user untouched", func() {
			roleID := int64(9)
			repo.users[1] = &User{ID: 1, VendorRoleID: &roleID}

			err := service.EnsureAuxiliaryRole(ctx, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.assignedRoles).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("RefreshInactivityDate", func() {
		ginkgo.It("sets the date to the end of the month after the contract end", func() {
			repo.openContracts = 0
			end := time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC)

			err := service.RefreshInactivityDate(ctx, 1, end)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			got := repo.inactivityDates[1]
			gomega.Expect(got).ToNot(gomega.BeNil())
			gomega.Expect(got.Month()).To(gomega.Equal(time.April))
			gomega.Expect(got.Day()).To(gomega.Equal(30))
		})

		ginkgo.It("does nothing while another contract is still open", func() {
			repo.openContracts = 1

			err := service.RefreshInactivityDate(ctx, 1, time.Now())

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.inactivitySet).To(gomega.BeFalse())
		})

		ginkgo.It("propagates repository errors", func() {
			repo.countErr = errors.New("db gone")

			err := service.RefreshInactivityDate(ctx, 1, time.Now())

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(repo.inactivitySet).To(gomega.BeFalse())
		})
	})
})

var _ = ginkgo.Describe("MissingMandatoryInfo", func() {
	strPtr := func(s string) *string { return &s }

	ginkgo.It("returns nothing for a complete profile", func() {
		birth := time.Date(1990, 3, 12, 0, 0, 0, 0, time.UTC)
		u := &User{
			FirstName: "Jeanne",
			LastName:  "Martin",
			Phone:     strPtr("0601020304"),
			SSN:       strPtr("290037512345678"),
			Address:   strPtr("12 rue des Lilas"),
			BirthDate: &birth,
		}

		gomega.Expect(u.MissingMandatoryInfo()).To(gomega.BeEmpty())
	})

	ginkgo.It("lists every absent field", func() {
		u := &User{FirstName: "Jeanne"}

		missing := u.MissingMandatoryInfo()

		gomega.Expect(missing).To(gomega.ConsistOf(
			MandatoryIdentity, MandatoryPhone, MandatoryBirthDate, MandatorySSN, MandatoryAddress))
	})

	ginkgo.It("treats an empty string pointer as missing", func() {
		birth := time.Date(1990, 3, 12, 0, 0, 0, 0, time.UTC)
		u := &User{
			FirstName: "Jeanne",
			LastName:  "Martin",
			Phone:     strPtr(""),
			SSN:       strPtr("290037512345678"),
			Address:   strPtr("12 rue des Lilas"),
			BirthDate: &birth,
		}

		gomega.Expect(u.MissingMandatoryInfo()).To(gomega.Equal([]string{MandatoryPhone}))
	})
})
