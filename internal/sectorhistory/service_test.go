package sectorhistory

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/care-management/internal"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestSectorHistory(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "SectorHistory Module Suite")
}

type mockHistoryRepository struct {
	created         []*History
	open            *History
	movedStart      map[int64]time.Time
	closedAt        map[int64]time.Time
	deleted         []int64
	referentCleared []int64
}

func newMockHistoryRepository() *mockHistoryRepository {
	return &mockHistoryRepository{
		movedStart: make(map[int64]time.Time),
		closedAt:   make(map[int64]time.Time),
	}
}

func (m *mockHistoryRepository) Create(ctx context.Context, h *History) error {
	m.created = append(m.created, h)
	return nil
}

func (m *mockHistoryRepository) FindOpen(ctx context.Context, companyID, auxiliaryID int64) (*History, error) {
	return m.open, nil
}

func (m *mockHistoryRepository) UpdateStartDate(ctx context.Context, historyID int64, startDate time.Time) error {
	m.movedStart[historyID] = startDate
	return nil
}

func (m *mockHistoryRepository) CloseAt(ctx context.Context, historyID int64, endDate time.Time) error {
	m.closedAt[historyID] = endDate
	return nil
}

func (m *mockHistoryRepository) Delete(ctx context.Context, historyID int64) error {
	m.deleted = append(m.deleted, historyID)
	return nil
}

func (m *mockHistoryRepository) ClearReferent(ctx context.Context, companyID, auxiliaryID int64) error {
	m.referentCleared = append(m.referentCleared, auxiliaryID)
	return nil
}

var _ = ginkgo.Describe("SectorHistory Service", func() {
	var (
		repo    *mockHistoryRepository
		service *Service
		ctx     context.Context
	)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ginkgo.BeforeEach(func() {
		repo = newMockHistoryRepository()
		service = NewService(repo, logger)
		ctx = context.Background()
	})

	ginkgo.Describe("CreateHistoryOnContractCreation", func() {
		ginkgo.It("opens an entry starting at the contract start date", func() {
			start := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)

			err := service.CreateHistoryOnContractCreation(ctx, 10, 1, 3, start)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.created).To(gomega.HaveLen(1))
			gomega.Expect(repo.created[0].SectorID).To(gomega.Equal(int64(3)))
			gomega.Expect(repo.created[0].StartDate).To(gomega.Equal(start))
			gomega.Expect(repo.created[0].EndDate).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("UpdateHistoryOnContractUpdate", func() {
		ginkgo.It("moves the open entry's start date", func() {
			repo.open = &History{ID: 7, StartDate: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)}
			newStart := time.Date(2022, 4, 15, 0, 0, 0, 0, time.UTC)

			err := service.UpdateHistoryOnContractUpdate(ctx, 10, 1, newStart)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.movedStart[7]).To(gomega.Equal(newStart))
		})

		ginkgo.It("is a no-op when no entry is open", func() {
			err := service.UpdateHistoryOnContractUpdate(ctx, 10, 1, time.Now())

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.movedStart).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("UpdateEndDate", func() {
		ginkgo.It("closes the open entry at the contract end date", func() {
			repo.open = &History{ID: 7, StartDate: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)}
			end := time.Date(2022, 8, 31, 0, 0, 0, 0, time.UTC)

			err := service.UpdateEndDate(ctx, 10, 1, end)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.closedAt[7]).To(gomega.Equal(end))
		})

		ginkgo.It("refuses an end date before the entry start", func() {
			repo.open = &History{ID: 7, StartDate: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)}

			err := service.UpdateEndDate(ctx, 10, 1, time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC))

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeEndBeforeVersionStart))
			gomega.Expect(repo.closedAt).To(gomega.BeEmpty())
		})

		ginkgo.It("is a no-op when no entry is open", func() {
			err := service.UpdateEndDate(ctx, 10, 1, time.Now())

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.closedAt).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("UpdateHistoryOnContractDeletion", func() {
		ginkgo.It("deletes the open entry", func() {
			repo.open = &History{ID: 7}

			err := service.UpdateHistoryOnContractDeletion(ctx, 10, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.deleted).To(gomega.Equal([]int64{7}))
		})
	})

	ginkgo.Describe("UnassignReferentOnContractEnd", func() {
		ginkgo.It("clears the referent link for the auxiliary", func() {
			err := service.UnassignReferentOnContractEnd(ctx, 10, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.referentCleared).To(gomega.Equal([]int64{1}))
		})
	})
})
