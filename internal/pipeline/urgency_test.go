package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

var simDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScoreUrgency_Tiers(t *testing.T) {
	tests := []struct {
		name       string
		requiredBy string
		leadTime   int
		remaining  int
		expected   model.Urgency
	}{
		{"no slack is urgent", "2026-01-08", 7, 0, model.UrgencyUrgent},
		{"negative slack is urgent", "2026-01-05", 7, -3, model.UrgencyUrgent},
		{"boundary two days is urgent", "2026-01-10", 7, 2, model.UrgencyUrgent},
		{"three days is normal", "2026-01-11", 7, 3, model.UrgencyNormal},
		{"boundary five days is normal", "2026-01-13", 7, 5, model.UrgencyNormal},
		{"six days is flexible", "2026-01-14", 7, 6, model.UrgencyFlexible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &model.PRRecord{RequiredBy: tt.requiredBy, LeadTimeDays: tt.leadTime}
			ScoreUrgency(rec, simDate, 2, 5)
			assert.Equal(t, tt.expected, rec.Urgency)
			assert.Equal(t, tt.remaining, rec.RemainingDays)
			assert.Equal(t, rec.Urgency.Signal(), rec.UrgencySignal)
		})
	}
}

func TestScoreUrgency_DateFormats(t *testing.T) {
	for _, raw := range []string{"2026-01-14", "2026/01/14", "2026.01.14"} {
		rec := &model.PRRecord{RequiredBy: raw, LeadTimeDays: 7}
		ScoreUrgency(rec, simDate, 2, 5)
		assert.Equal(t, model.UrgencyFlexible, rec.Urgency, raw)
	}
}

func TestScoreUrgency_UnparseableDefaultsNormal(t *testing.T) {
	rec := &model.PRRecord{RequiredBy: "next month", LeadTimeDays: 7}
	ScoreUrgency(rec, simDate, 2, 5)

	assert.Equal(t, model.UrgencyNormal, rec.Urgency)
	assert.Zero(t, rec.DaysUntilDeadline)
	assert.Zero(t, rec.RemainingDays)
}

func TestScoreUrgency_Monotone(t *testing.T) {
	// An earlier deadline never yields a lower tier than a later one.
	rank := func(day int) int {
		rec := &model.PRRecord{
			RequiredBy:   time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			LeadTimeDays: 3,
		}
		ScoreUrgency(rec, simDate, 2, 5)
		return rec.Urgency.Order()
	}

	prev := rank(2)
	for day := 3; day <= 28; day++ {
		cur := rank(day)
		assert.LessOrEqual(t, prev, cur)
		prev = cur
	}
}

func TestScoreUrgencies_Counts(t *testing.T) {
	recs := []*model.PRRecord{
		{RequiredBy: "2026-01-08", LeadTimeDays: 7},
		{RequiredBy: "2026-01-11", LeadTimeDays: 7},
		{RequiredBy: "2026-01-30", LeadTimeDays: 7},
		{RequiredBy: "2026-01-30", LeadTimeDays: 7},
	}

	counts := ScoreUrgencies(recs, simDate, 2, 5)

	assert.Equal(t, 1, counts[model.UrgencyUrgent])
	assert.Equal(t, 1, counts[model.UrgencyNormal])
	assert.Equal(t, 2, counts[model.UrgencyFlexible])
}
