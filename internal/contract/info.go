package contract

import (
	"github.com/frahmantamala/care-management/internal/core/common/dates"
)

// GetContractInfo aggregates pay-relevant figures for the versions
// overlapping the query window. Pure computation: each version's effective
// window is clipped to the query range, counted in business days and
// holidays, then pro-rated against the reference month.
func GetContractInfo(versions []Version, query dates.DateRange, monthRatio dates.MonthDayRatio) ContractInfoDTO {
	var info ContractInfoDTO

	totalMonthDays := monthRatio.BusinessDays + monthRatio.Holidays
	if totalMonthDays == 0 {
		return info
	}

	for i := range versions {
		v := &versions[i]

		start := v.StartDate
		if query.Start.After(start) {
			start = query.Start
		}
		end := query.End
		if v.EndDate != nil && v.EndDate.Before(end) {
			end = *v.EndDate
		}
		if end.Before(start) {
			continue
		}

		worked := dates.CountWorkedDays(start, end)
		windowDays := worked.BusinessDays + worked.Holidays
		ratio := float64(windowDays) / float64(totalMonthDays)

		info.WorkedDaysRatio += ratio
		info.ContractHours += v.WeeklyHours * ratio
		info.HolidaysHours += v.WeeklyHours / 6 * float64(worked.Holidays)
	}

	return info
}
