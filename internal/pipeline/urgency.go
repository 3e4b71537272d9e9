package pipeline

import (
	"math"
	"time"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// dateLayouts are the required-by date formats the source system emits.
var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// daysUntil computes calendar days from the simulation date to the deadline,
// rounding partial days up.
func daysUntil(deadline, simDate time.Time) int {
	return int(math.Ceil(deadline.Sub(simDate).Hours() / 24))
}

// ScoreUrgency assigns the urgency tier from the required-by date and lead
// time, anchored to the fixed simulation date. Records without a usable
// deadline default to normal.
func ScoreUrgency(rec *model.PRRecord, simDate time.Time, urgentDays, normalDays int) {
	deadline, ok := parseDate(rec.RequiredBy)
	if !ok {
		rec.Urgency = model.UrgencyNormal
		rec.UrgencySignal = model.UrgencyNormal.Signal()
		return
	}

	rec.DaysUntilDeadline = daysUntil(deadline, simDate)
	rec.RemainingDays = rec.DaysUntilDeadline - rec.LeadTimeDays

	switch {
	case rec.RemainingDays <= urgentDays:
		rec.Urgency = model.UrgencyUrgent
	case rec.RemainingDays <= normalDays:
		rec.Urgency = model.UrgencyNormal
	default:
		rec.Urgency = model.UrgencyFlexible
	}
	rec.UrgencySignal = rec.Urgency.Signal()
}

// ScoreUrgencies scores the working set and returns per-tier counts.
func ScoreUrgencies(recs []*model.PRRecord, simDate time.Time, urgentDays, normalDays int) map[model.Urgency]int {
	counts := make(map[model.Urgency]int)
	for _, rec := range recs {
		ScoreUrgency(rec, simDate, urgentDays, normalDays)
		counts[rec.Urgency]++
	}
	return counts
}
