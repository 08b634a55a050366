package subscriptions

import "time"

const day = 24 * time.Hour

// TrialDaysLeft returns the whole days remaining in the trial, rounded up
// and floored at zero. A snapshot without a trial end date has zero days.
func TrialDaysLeft(trialEndsAt *time.Time, now time.Time) int {
	if trialEndsAt == nil {
		return 0
	}
	remaining := trialEndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int((remaining + day - 1) / day)
	return days
}

// Evaluate derives the gating flags from a snapshot. Pure function of
// (snapshot, now); alert precedence is first match wins:
// lifetime access suppresses everything, a trial in its last week warns,
// canceled and overdue block, an expired trial blocks, otherwise silent.
func Evaluate(s Snapshot, now time.Time) Gate {
	daysLeft := TrialDaysLeft(s.TrialEndsAt, now)

	needsPayment := !s.LifetimeAccess &&
		(s.Status == StatusOverdue ||
			s.Status == StatusCanceled ||
			(s.Status == StatusTrial && daysLeft <= 0))

	gate := Gate{NeedsPayment: needsPayment, TrialDaysLeft: daysLeft, Alert: AlertNone}
	switch {
	case s.LifetimeAccess:
		gate.Alert = AlertNone
	case s.Status == StatusTrial && daysLeft > 0 && daysLeft <= 7:
		gate.Alert = AlertWarning
	case s.Status == StatusCanceled:
		gate.Alert = AlertBlocking
	case s.Status == StatusOverdue:
		gate.Alert = AlertBlocking
	case s.Status == StatusTrial && daysLeft <= 0:
		gate.Alert = AlertBlocking
	}
	return gate
}
