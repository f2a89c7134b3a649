// Package biometric abstracts the device biometric challenge behind a
// single call returning a classified result. Sensor integration itself is
// out of scope; the workflow only consumes the outcome.
package biometric

import "context"

// Result classifies the outcome of a biometric challenge.
type Result int

const (
	Matched Result = iota
	NotMatched
	Cancelled
	SensorUnavailable
)

func (r Result) String() string {
	switch r {
	case Matched:
		return "matched"
	case NotMatched:
		return "not matched"
	case Cancelled:
		return "cancelled"
	case SensorUnavailable:
		return "sensor unavailable"
	default:
		return "unknown"
	}
}

// Authenticator runs one biometric challenge. The error return is for
// infrastructure faults only; user outcomes come back as a Result.
type Authenticator interface {
	Challenge(ctx context.Context, reason string) (Result, error)
}

// Unavailable is the headless default: every challenge reports the sensor
// missing, pushing the user to the PIN path.
type Unavailable struct{}

func (Unavailable) Challenge(context.Context, string) (Result, error) {
	return SensorUnavailable, nil
}

// Scripted replays a fixed sequence of results, for tests and demos. Once
// exhausted it keeps returning the last result.
type Scripted struct {
	Results []Result
	next    int
}

func (s *Scripted) Challenge(context.Context, string) (Result, error) {
	if len(s.Results) == 0 {
		return SensorUnavailable, nil
	}
	r := s.Results[s.next]
	if s.next < len(s.Results)-1 {
		s.next++
	}
	return r, nil
}
