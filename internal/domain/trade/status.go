package trade

import "time"

// DisplayStatus is the status shown in rental listings, derived from dates
type DisplayStatus string

const (
	DisplayActive       DisplayStatus = "ACTIVE"
	DisplayExpired      DisplayStatus = "EXPIRED"
	DisplayScheduled    DisplayStatus = "SCHEDULED"
	DisplayExpiringSoon DisplayStatus = "EXPIRING_SOON"
	DisplayCancelled    DisplayStatus = "CANCELLED"
	DisplayCompleted    DisplayStatus = "COMPLETED"
)

// ExpiringSoonWindow is how close to its end a rental is flagged
const ExpiringSoonWindow = 7 * 24 * time.Hour

// DeriveDisplayStatus computes the listing status. Cancelled and completed
// rentals keep their stored status.
func DeriveDisplayStatus(r *Rental, now time.Time) DisplayStatus {
	switch r.Status {
	case RentalStatusCancelled:
		return DisplayCancelled
	case RentalStatusCompleted:
		return DisplayCompleted
	}
	if r.EndDate != nil && r.EndDate.Before(now) {
		return DisplayExpired
	}
	if r.StartDate.After(now) {
		return DisplayScheduled
	}
	if r.EndDate != nil && !r.EndDate.After(now.Add(ExpiringSoonWindow)) {
		return DisplayExpiringSoon
	}
	return DisplayActive
}

// PeriodState is where a period sits relative to now
type PeriodState string

const (
	PeriodUpcoming  PeriodState = "UPCOMING"
	PeriodActive    PeriodState = "ACTIVE"
	PeriodCompleted PeriodState = "COMPLETED"
)

// DerivePeriodState computes a period's state
func DerivePeriodState(p *RentalPeriod, now time.Time) PeriodState {
	if p.StartDate.After(now) {
		return PeriodUpcoming
	}
	if p.EndDate.Before(now) {
		return PeriodCompleted
	}
	return PeriodActive
}
