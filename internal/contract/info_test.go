package contract

import (
	"time"

	"github.com/frahmantamala/care-management/internal/core/common/dates"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("GetContractInfo", func() {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	ginkgo.It("pro-rates hours against the reference month", func() {
		// March 7 to 10 2022 is Monday to Thursday: four business days
		versions := []Version{
			{ID: "v-1", StartDate: day(2022, time.March, 1), WeeklyHours: 20},
		}
		query := dates.DateRange{Start: day(2022, time.March, 7), End: day(2022, time.March, 10)}
		monthRatio := dates.MonthDayRatio{BusinessDays: 10}

		info := GetContractInfo(versions, query, monthRatio)

		gomega.Expect(info.WorkedDaysRatio).To(gomega.BeNumerically("~", 0.4, 1e-9))
		gomega.Expect(info.ContractHours).To(gomega.BeNumerically("~", 8, 1e-9))
		gomega.Expect(info.HolidaysHours).To(gomega.BeZero())
	})

	ginkgo.It("clips the version window to the query range", func() {
		// version starts mid-window; only March 9 and 10 count
		versions := []Version{
			{ID: "v-1", StartDate: day(2022, time.March, 9), WeeklyHours: 20},
		}
		query := dates.DateRange{Start: day(2022, time.March, 7), End: day(2022, time.March, 10)}
		monthRatio := dates.MonthDayRatio{BusinessDays: 10}

		info := GetContractInfo(versions, query, monthRatio)

		gomega.Expect(info.WorkedDaysRatio).To(gomega.BeNumerically("~", 0.2, 1e-9))
	})

	ginkgo.It("uses the version end date when it falls inside the query range", func() {
		end := dates.EndOfDay(day(2022, time.March, 8))
		versions := []Version{
			{ID: "v-1", StartDate: day(2022, time.March, 1), EndDate: &end, WeeklyHours: 20},
		}
		query := dates.DateRange{Start: day(2022, time.March, 7), End: day(2022, time.March, 10)}
		monthRatio := dates.MonthDayRatio{BusinessDays: 10}

		info := GetContractInfo(versions, query, monthRatio)

		// March 7 and 8 only
		gomega.Expect(info.WorkedDaysRatio).To(gomega.BeNumerically("~", 0.2, 1e-9))
	})

	ginkgo.It("counts public holidays at a sixth of the weekly hours per day", func() {
		// July 11 to 16 2022: five business days plus July 14
		versions := []Version{
			{ID: "v-1", StartDate: day(2022, time.July, 1), WeeklyHours: 24},
		}
		query := dates.DateRange{Start: day(2022, time.July, 11), End: day(2022, time.July, 16)}
		monthRatio := dates.MonthDayRatio{BusinessDays: 25, Holidays: 1}

		info := GetContractInfo(versions, query, monthRatio)

		gomega.Expect(info.HolidaysHours).To(gomega.BeNumerically("~", 4, 1e-9))
		gomega.Expect(info.WorkedDaysRatio).To(gomega.BeNumerically("~", 6.0/26.0, 1e-9))
	})

	ginkgo.It("accumulates across overlapping versions", func() {
		firstEnd := dates.EndOfDay(day(2022, time.March, 8))
		versions := []Version{
			{ID: "v-1", StartDate: day(2022, time.March, 1), EndDate: &firstEnd, WeeklyHours: 20},
			{ID: "v-2", StartDate: day(2022, time.March, 9), WeeklyHours: 30},
		}
		query := dates.DateRange{Start: day(2022, time.March, 7), End: day(2022, time.March, 10)}
		monthRatio := dates.MonthDayRatio{BusinessDays: 10}

		info := GetContractInfo(versions, query, monthRatio)

		// two days at 20h weekly plus two days at 30h weekly
		gomega.Expect(info.WorkedDaysRatio).To(gomega.BeNumerically("~", 0.4, 1e-9))
		gomega.Expect(info.ContractHours).To(gomega.BeNumerically("~", 20*0.2+30*0.2, 1e-9))
	})

	ginkgo.It("skips versions outside the query range entirely", func() {
		end := dates.EndOfDay(day(2022, time.January, 31))
		versions := []Version{
			{ID: "v-1", StartDate: day(2022, time.January, 1), EndDate: &end, WeeklyHours: 20},
		}
		query := dates.DateRange{Start: day(2022, time.March, 7), End: day(2022, time.March, 10)}
		monthRatio := dates.MonthDayRatio{BusinessDays: 10}

		info := GetContractInfo(versions, query, monthRatio)

		gomega.Expect(info).To(gomega.Equal(ContractInfoDTO{}))
	})

	ginkgo.It("returns zeroes for an empty reference month", func() {
		versions := []Version{{ID: "v-1", StartDate: day(2022, time.March, 1), WeeklyHours: 20}}
		query := dates.DateRange{Start: day(2022, time.March, 7), End: day(2022, time.March, 10)}

		info := GetContractInfo(versions, query, dates.MonthDayRatio{})

		gomega.Expect(info).To(gomega.Equal(ContractInfoDTO{}))
	})
})
