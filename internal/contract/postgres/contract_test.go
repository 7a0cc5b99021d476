package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/care-management/internal"
	"github.com/frahmantamala/care-management/internal/contract"
	contractmodel "github.com/frahmantamala/care-management/internal/core/datamodel/contract"
	"github.com/frahmantamala/care-management/internal/core/common/dates"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestContractRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Contract Repository Suite")
}

var _ = ginkgo.Describe("ContractRepository", func() {
	var (
		db   *gorm.DB
		repo *ContractRepository
		ctx  context.Context

		companyID int64 = 7
		userID    int64 = 42
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(db.AutoMigrate(&contractmodel.Contract{})).To(gomega.Succeed())

		repo = NewContractRepository(db)
		ctx = context.Background()
	})

	newContract := func(id string) *contract.Contract {
		return &contract.Contract{
			ID:        id,
			CompanyID: companyID,
			UserID:    userID,
			StartDate: time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC),
			Versions: []contract.Version{
				{
					ID:              "v-1",
					StartDate:       time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC),
					WeeklyHours:     24,
					GrossHourlyRate: 11.5,
					Signature:       &contract.Signature{EversignID: "hash-abc"},
					AuxiliaryDoc:    &contract.Document{DriveID: "drive-1", Link: "https://drive/1"},
				},
			},
		}
	}

	ginkgo.It("round-trips the serialized version array", func() {
		gomega.Expect(repo.Create(ctx, newContract("c-1"))).To(gomega.Succeed())

		got, err := repo.GetByID(ctx, companyID, "c-1")

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(got.Versions).To(gomega.HaveLen(1))
		v := got.Versions[0]
		gomega.Expect(v.ID).To(gomega.Equal("v-1"))
		gomega.Expect(v.WeeklyHours).To(gomega.Equal(24.0))
		gomega.Expect(v.Signature.EversignID).To(gomega.Equal("hash-abc"))
		gomega.Expect(v.AuxiliaryDoc.DriveID).To(gomega.Equal("drive-1"))
	})

	ginkgo.It("stamps creation and update times on insert", func() {
		gomega.Expect(repo.Create(ctx, newContract("c-1"))).To(gomega.Succeed())

		got, err := repo.GetByID(ctx, companyID, "c-1")

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(got.CreatedAt).NotTo(gomega.BeZero())
		gomega.Expect(got.UpdatedAt).NotTo(gomega.BeZero())
	})

	ginkgo.It("scopes reads to the requesting company", func() {
		gomega.Expect(repo.Create(ctx, newContract("c-1"))).To(gomega.Succeed())

		_, err := repo.GetByID(ctx, companyID+1, "c-1")

		gomega.Expect(err).To(gomega.MatchError(internal.ErrContractNotFound))
	})

	ginkgo.It("persists contract-level end fields through Update", func() {
		c := newContract("c-1")
		gomega.Expect(repo.Create(ctx, c)).To(gomega.Succeed())

		end := dates.EndOfDay(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC))
		reason := "resignation"
		c.EndDate = &end
		c.EndReason = &reason
		c.Versions[0].EndDate = &end
		gomega.Expect(repo.Update(ctx, c)).To(gomega.Succeed())

		got, err := repo.GetByID(ctx, companyID, "c-1")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(got.EndDate).NotTo(gomega.BeNil())
		gomega.Expect(*got.EndReason).To(gomega.Equal("resignation"))
		gomega.Expect(got.Versions[0].EndDate).NotTo(gomega.BeNil())
	})

	ginkgo.It("finds contracts by signature document hash", func() {
		gomega.Expect(repo.Create(ctx, newContract("c-1"))).To(gomega.Succeed())
		other := newContract("c-2")
		other.Versions[0].Signature = nil
		gomega.Expect(repo.Create(ctx, other)).To(gomega.Succeed())

		found, err := repo.ListByEversignID(ctx, "hash-abc")

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(found).To(gomega.HaveLen(1))
		gomega.Expect(found[0].ID).To(gomega.Equal("c-1"))
	})

	ginkgo.Describe("ApplyVersionEdition", func() {
		ginkgo.It("archives the superseded document and applies set keys", func() {
			gomega.Expect(repo.Create(ctx, newContract("c-1"))).To(gomega.Succeed())

			hours := 30.0
			edition := contract.VersionEdition{
				VersionID: "v-1",
				Unset:     contract.VersionUnset{AuxiliaryDoc: true},
				Set: contract.VersionSet{
					WeeklyHours:  &hours,
					AuxiliaryDoc: &contract.Document{DriveID: "drive-2"},
				},
				ArchivePush: &contract.Document{DriveID: "drive-1", Link: "https://drive/1"},
			}
			gomega.Expect(repo.ApplyVersionEdition(ctx, companyID, "c-1", edition)).To(gomega.Succeed())

			got, err := repo.GetByID(ctx, companyID, "c-1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			v := got.Versions[0]
			gomega.Expect(v.WeeklyHours).To(gomega.Equal(30.0))
			gomega.Expect(v.AuxiliaryDoc.DriveID).To(gomega.Equal("drive-2"))
			gomega.Expect(v.AuxiliaryArchives).To(gomega.HaveLen(1))
			gomega.Expect(v.AuxiliaryArchives[0].DriveID).To(gomega.Equal("drive-1"))
		})

		ginkgo.It("mirrors a first-version start date change onto the contract row", func() {
			gomega.Expect(repo.Create(ctx, newContract("c-1"))).To(gomega.Succeed())

			newStart := time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)
			edition := contract.VersionEdition{
				VersionID:         "v-1",
				Set:               contract.VersionSet{StartDate: &newStart},
				ContractStartDate: &newStart,
			}
			gomega.Expect(repo.ApplyVersionEdition(ctx, companyID, "c-1", edition)).To(gomega.Succeed())

			got, err := repo.GetByID(ctx, companyID, "c-1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(got.StartDate.Equal(newStart)).To(gomega.BeTrue())
			gomega.Expect(got.Versions[0].StartDate.Equal(newStart)).To(gomega.BeTrue())
		})

		ginkgo.It("re-derives the predecessor end date for a later version", func() {
			c := newContract("c-1")
			prevEnd := dates.PreviousDayEnd(time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC))
			c.Versions[0].EndDate = &prevEnd
			c.Versions = append(c.Versions, contract.Version{
				ID:              "v-2",
				StartDate:       time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
				WeeklyHours:     30,
				GrossHourlyRate: 12,
			})
			gomega.Expect(repo.Create(ctx, c)).To(gomega.Succeed())

			newStart := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
			newPrevEnd := dates.PreviousDayEnd(newStart)
			edition := contract.VersionEdition{
				VersionID:       "v-2",
				Set:             contract.VersionSet{StartDate: &newStart},
				PreviousEndDate: &newPrevEnd,
			}
			gomega.Expect(repo.ApplyVersionEdition(ctx, companyID, "c-1", edition)).To(gomega.Succeed())

			got, err := repo.GetByID(ctx, companyID, "c-1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(got.Versions[0].EndDate.Equal(newPrevEnd)).To(gomega.BeTrue())
			gomega.Expect(got.Versions[1].StartDate.Equal(newStart)).To(gomega.BeTrue())
		})

		ginkgo.It("fails on an unknown version id", func() {
			gomega.Expect(repo.Create(ctx, newContract("c-1"))).To(gomega.Succeed())

			err := repo.ApplyVersionEdition(ctx, companyID, "c-1", contract.VersionEdition{VersionID: "v-9"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrVersionNotFound))
		})
	})
})
