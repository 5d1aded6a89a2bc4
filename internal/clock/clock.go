package clock

import "time"

// Clock supplies "now" to the lifecycle jobs so they can be tested
// deterministically. Dates are truncated to UTC midnight.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type systemClock struct{}

func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	return Midnight(time.Now().UTC())
}

// Midnight truncates t to its UTC date.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fixed returns a Clock pinned to t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t.UTC()}
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time {
	return f.t
}

func (f fixedClock) Today() time.Time {
	return Midnight(f.t)
}
