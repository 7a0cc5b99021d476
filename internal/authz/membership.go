package authz

import "time"

// PickCurrentMembership selects the membership active at now: started already
// and either open-ended or ending after now. Histories are small (a handful
// of entries), so a linear scan is fine.
func PickCurrentMembership(history []Membership, now time.Time) *Membership {
	for i := range history {
		m := &history[i]
		if m.StartDate.After(now) {
			continue
		}
		if m.EndDate == nil || m.EndDate.After(now) {
			return m
		}
	}
	return nil
}
