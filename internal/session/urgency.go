package session

// Urgency classifies how close the countdown is to expiry.
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyWarning
	UrgencyDanger
)

const (
	dangerThreshold  = 10
	warningThreshold = 20
)

// Classify maps remaining seconds to an urgency level.
func Classify(secondsRemaining int) Urgency {
	switch {
	case secondsRemaining <= dangerThreshold:
		return UrgencyDanger
	case secondsRemaining <= warningThreshold:
		return UrgencyWarning
	default:
		return UrgencyNone
	}
}

// Pulses reports whether the urgency level carries the pulse animation.
func (u Urgency) Pulses() bool {
	return u == UrgencyDanger
}

func (u Urgency) String() string {
	switch u {
	case UrgencyWarning:
		return "warning"
	case UrgencyDanger:
		return "danger"
	default:
		return ""
	}
}
