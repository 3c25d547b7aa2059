package notification

import (
	"sort"

	"github.com/google/uuid"
)

// ChannelResult is the per-recipient, per-channel line of a dispatch.
type ChannelResult struct {
	NotificationID    uuid.UUID
	RecipientID       string
	Channel           Channel
	Outcome           Outcome
	ProviderMessageID string
	Error             string
}

// DispatchOutcome is returned to the caller of a dispatch. Failures are data.
type DispatchOutcome struct {
	EventID uuid.UUID
	Results []ChannelResult
}

// Find returns the result of one (recipient, channel) pair.
func (o DispatchOutcome) Find(recipientID string, channel Channel) (ChannelResult, bool) {
	for _, r := range o.Results {
		if r.RecipientID == recipientID && r.Channel == channel {
			return r, true
		}
	}
	return ChannelResult{}, false
}

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusPending   Status = "pending"
)

// Status summarises a dispatch. It is best effort and not authoritative.
func (o DispatchOutcome) Status() Status {
	outcomes := make([]Outcome, 0, len(o.Results))
	for _, r := range o.Results {
		outcomes = append(outcomes, r.Outcome)
	}
	return aggregate(outcomes)
}

// FinalAttempts keeps, per channel, the latest terminal attempt.
// Channels with only pending rows keep their latest pending row.
func FinalAttempts(attempts []DeliveryAttempt) map[Channel]DeliveryAttempt {
	sorted := make([]DeliveryAttempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AttemptedAt.Before(sorted[j].AttemptedAt)
	})
	final := make(map[Channel]DeliveryAttempt)
	for _, a := range sorted {
		current, ok := final[a.Channel]
		if !ok || a.Outcome.IsTerminal() || !current.Outcome.IsTerminal() {
			final[a.Channel] = a
		}
	}
	return final
}

// Aggregate computes the notification outcome from its delivery log.
func Aggregate(attempts []DeliveryAttempt) Status {
	final := FinalAttempts(attempts)
	outcomes := make([]Outcome, 0, len(final))
	for _, a := range final {
		outcomes = append(outcomes, a.Outcome)
	}
	return aggregate(outcomes)
}

func aggregate(outcomes []Outcome) Status {
	if len(outcomes) == 0 {
		return StatusPending
	}
	var success, pending int
	for _, o := range outcomes {
		switch o {
		case Success:
			success++
		case Pending:
			pending++
		}
	}
	switch {
	case success == len(outcomes):
		return StatusDelivered
	case success > 0:
		return StatusPartial
	case pending > 0:
		return StatusPending
	default:
		return StatusFailed
	}
}
