package timectrl

import "time"

// Clock supplies the instant at which TLE records are evaluated. The router
// freezes every orbit at a single instant, so the only thing it ever asks a
// clock for is "now"; abstracting it keeps loader tests reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// ParseInstant resolves an optional RFC 3339 timestamp into a Clock: an
// empty value means the system clock, anything else must parse.
func ParseInstant(raw string) (Clock, error) {
	if raw == "" {
		return SystemClock{}, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return FixedClock{At: at.UTC()}, nil
}
