// Package dummy generates placeholder task records.
package dummy

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

const (
	// MinDueDays is the smallest due date offset from today.
	MinDueDays = 1

	// MaxDueDays is the largest due date offset from today.
	MaxDueDays = 60

	// ISODateLayout is the due date layout for API payloads.
	ISODateLayout = "2006-01-02"

	// USDateLayout is the due date layout for CSV output.
	USDateLayout = "01/02/2006"
)

// Source supplies the random values a Generator needs.
// *gofakeit.Faker satisfies it.
type Source interface {
	IntRange(min, max int) int
	Bool() bool
}

// Record is a single synthetic task.
type Record struct {
	Name      string
	Notes     string
	DueOn     time.Time // UTC midnight
	Completed bool
}

// ISODate returns the due date as YYYY-MM-DD.
func (r Record) ISODate() string {
	return r.DueOn.Format(ISODateLayout)
}

// USDate returns the due date as MM/DD/YYYY.
func (r Record) USDate() string {
	return r.DueOn.Format(USDateLayout)
}

// Generator builds records from a random source and a clock.
type Generator struct {
	src Source
	now func() time.Time
}

// NewGenerator creates a Generator. If now is nil, time.Now is used.
func NewGenerator(src Source, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{src: src, now: now}
}

// NewDefault creates a Generator seeded from the clock.
func NewDefault() *Generator {
	return NewGenerator(gofakeit.New(0), nil)
}

// NewSeeded creates a Generator whose random stream is reproducible.
func NewSeeded(seed int64, now func() time.Time) *Generator {
	return NewGenerator(gofakeit.New(seed), now)
}

// Name returns the task name for index i.
func Name(i int) string {
	return fmt.Sprintf("Task %d", i)
}

// Notes returns the notes text derived from a task name.
func Notes(name string) string {
	return fmt.Sprintf("These are detailed notes for %s.", name)
}

// Record builds the synthetic record for index i.
func (g *Generator) Record(i int) Record {
	name := Name(i)
	return Record{
		Name:      name,
		Notes:     Notes(name),
		DueOn:     g.DueDate(),
		Completed: g.src.Bool(),
	}
}

// Records builds records for indices first..last inclusive.
func (g *Generator) Records(first, last int) []Record {
	if last < first {
		return nil
	}
	out := make([]Record, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, g.Record(i))
	}
	return out
}

// DueDate returns today (UTC) plus a random offset in [MinDueDays, MaxDueDays].
func (g *Generator) DueDate() time.Time {
	days := g.src.IntRange(MinDueDays, MaxDueDays)
	// The source is external; keep the window even if it misbehaves.
	if days < MinDueDays {
		days = MinDueDays
	} else if days > MaxDueDays {
		days = MaxDueDays
	}
	return Today(g.now()).AddDate(0, 0, days)
}

// Today truncates t to midnight UTC.
func Today(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
