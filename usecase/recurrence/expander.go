// Package recurrence turns a recurrence template into a bounded, ordered
// batch of concrete task instances.
package recurrence

import (
	"time"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/pkg/dates"
)

// DefaultHorizon caps how many instances one expansion call may produce. The
// cap exists so a daily interval-1 template against a multi-year end date
// cannot generate unbounded work or storage in a single request.
const DefaultHorizon = 100

// Result carries the expanded batch. Truncated is set when the template's
// window holds more dates than the horizon allowed; the caller may surface
// "more instances will need a future regeneration" to the user.
type Result struct {
	Tasks     []domain.TaskInstance
	Truncated bool
}

// Expander enumerates due dates for recurrence templates. It is a pure
// function of (template, today, horizon): the clock is injected, instances
// carry no IDs (those are assigned at persistence time), so two calls with
// identical inputs yield identical output.
type Expander struct {
	clock   dates.Clock
	horizon int
}

// NewExpander builds an Expander. A nil clock falls back to the system clock;
// a non-positive horizon falls back to DefaultHorizon.
func NewExpander(clock dates.Clock, horizon int) *Expander {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Expander{clock: clock, horizon: horizon}
}

// Expand walks the template's window from its start date in steps of
// (kind, interval) and emits one pending task per due date on or after today.
// The end boundary is inclusive: a date equal to the template's end date is
// generated. Dates before today are skipped, never shifted — the phase is
// always anchored at the start date. Emission stops once horizon instances
// exist even if the window has dates left.
func (e *Expander) Expand(tpl *domain.RecurrenceTemplate, horizon int) (Result, error) {
	if err := tpl.Validate(); err != nil {
		return Result{}, err
	}
	// Callers may tighten the horizon but never widen it past the
	// configured cap; the cap is the whole point of the horizon.
	if horizon <= 0 || horizon > e.horizon {
		horizon = e.horizon
	}

	today := e.clock.Today()
	end := dates.Day(tpl.ExpansionEnd())
	start := dates.Day(tpl.StartDate)

	var out []domain.TaskInstance
	truncated := false
	// Each occurrence is derived from the start date, not the previous
	// occurrence, so month-end clamping never drifts the anchor day: a
	// template on the 31st yields Feb 29 and then Mar 31, not Mar 29.
	for n := 0; ; n++ {
		due := dates.AddUnits(start, string(tpl.Kind), n*tpl.Interval)
		if !dates.SameOrBefore(due, end) {
			break
		}
		if dates.SameOrBefore(today, due) {
			if len(out) == horizon {
				truncated = true
				break
			}
			out = append(out, instantiate(tpl, due))
		}
	}

	return Result{Tasks: out, Truncated: truncated}, nil
}

func instantiate(tpl *domain.RecurrenceTemplate, due time.Time) domain.TaskInstance {
	return domain.TaskInstance{
		Title:            tpl.Title,
		Description:      tpl.Description,
		Category:         tpl.Category,
		Priority:         tpl.Priority,
		AssignedTo:       tpl.AssignedTo,
		Status:           domain.StatusPending,
		DueDate:          due,
		Progress:         0,
		CreatedBy:        tpl.CreatedBy,
		SourceTemplateID: tpl.ID,
	}
}
