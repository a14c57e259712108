package webhook

import "time"

// MaxAttempts is the delivery attempt ceiling. A log that fails its fifth
// attempt is terminally failed.
const MaxAttempts = 5

// RetryDelay returns how long to wait before the given attempt number
// (1-based, the upcoming attempt). The fast profile exists for tests and
// staging; production waits out the long tail.
func RetryDelay(attempt int, fastProfile bool) time.Duration {
	if fastProfile {
		switch attempt {
		case 1:
			return 0
		case 2:
			return 5 * time.Second
		case 3:
			return 10 * time.Second
		case 4:
			return 15 * time.Second
		case 5:
			return 20 * time.Second
		default:
			return 0
		}
	}
	switch attempt {
	case 1:
		return 0
	case 2:
		return time.Minute
	case 3:
		return 5 * time.Minute
	case 4:
		return 30 * time.Minute
	case 5:
		return 2 * time.Hour
	default:
		return 0
	}
}
