// Package clock provides the time source used to decide what "today" and
// "now" mean for the register.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current instant in the register's local time zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type system struct{ loc *time.Location }

// NewSystem returns a wall clock reporting times in loc.
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return system{loc: loc}
}

func (s system) Now() time.Time            { return time.Now().In(s.loc) }
func (s system) Location() *time.Location { return s.loc }

// Today returns the civil date of c.Now() formatted as YYYY-MM-DD.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

// DateLayout is the layout of every report date.
const DateLayout = "2006-01-02"

// Fake is a manually driven clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

func NewFake(t time.Time) *Fake {
	return &Fake{now: t, loc: t.Location()}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Location() *time.Location { return f.loc }

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.In(f.loc)
	f.mu.Unlock()
}
