package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

func quotationRec(id string, method model.ContractMethod, estimated, recent float64) *model.PRRecord {
	rec := validPR(id, "H123PZAF01")
	rec.Quantity = 1
	rec.ContractMethod = method
	rec.EstimatedTotal = estimated
	rec.RecentUnitPrice = recent
	return rec
}

func TestGradeCompetitiveness(t *testing.T) {
	tests := []struct {
		name      string
		quoted    float64
		estimated float64
		recent    float64
		expected  model.Competitiveness
	}{
		{"below estimate is excellent", 900, 1000, 1200, model.CompetitivenessExcellent},
		{"at estimate is excellent", 1000, 1000, 1200, model.CompetitivenessExcellent},
		{"between estimate and recent is fair", 1100, 1000, 1200, model.CompetitivenessFair},
		{"above recent is poor", 1300, 1000, 1200, model.CompetitivenessPoor},
		{"no recent falls back to estimate", 1100, 1000, 0, model.CompetitivenessPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gradeCompetitiveness(tt.quoted, tt.estimated, tt.recent))
		})
	}
}

func TestReview_BidBranch(t *testing.T) {
	pcfg := testPipelineConfig()

	tests := []struct {
		name       string
		quoteRatio float64
		verdict    model.Verdict
		state      model.ProcessState
		approval   model.ApprovalState
	}{
		{"reasonable quote auto-completes", 0.9, model.VerdictAppropriate, model.ProcessStateAutoComplete, model.ApprovalStatePending},
		{"too-cheap quote flags dumping", 0.6, model.VerdictSuspectedDumping, model.ProcessStateNeedsReview, model.ApprovalStateReview},
		{"expensive quote needs review", 1.3, model.VerdictNeedsReview, model.ProcessStateNeedsReview, model.ApprovalStateReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := quotationRec("PR001", model.ContractMethodDesignatedBid, 1000, 1000)
			Review([]*model.PRRecord{rec}, fixedQuoteSource{ratio: tt.quoteRatio}, pcfg)

			assert.Equal(t, tt.verdict, rec.Verdict)
			assert.Equal(t, tt.state, rec.ProcessState)
			assert.Equal(t, tt.approval, rec.ApprovalState)
			assert.Equal(t, rec.Competitiveness.Signal(), rec.CompSignal)
		})
	}
}

func TestReview_DumpingBoundary(t *testing.T) {
	// Exactly at the threshold is cheap but not dumping.
	rec := quotationRec("PR001", model.ContractMethodDesignatedBid, 1000, 1000)
	Review([]*model.PRRecord{rec}, fixedQuoteSource{ratio: 0.7}, testPipelineConfig())

	assert.Equal(t, model.VerdictAppropriate, rec.Verdict)
	assert.Equal(t, model.CompetitivenessExcellent, rec.Competitiveness)
}

func TestReview_PrivateBranch(t *testing.T) {
	pcfg := testPipelineConfig()

	t.Run("within change limit auto-completes", func(t *testing.T) {
		rec := quotationRec("PR001", model.ContractMethodPrivate, 1000, 1000)
		Review([]*model.PRRecord{rec}, fixedQuoteSource{ratio: 1.1}, pcfg)

		assert.Equal(t, model.VerdictAppropriate, rec.Verdict)
		assert.Equal(t, model.ProcessStateAutoComplete, rec.ProcessState)
		assert.InDelta(t, 10, rec.ChangeRatePct, 0.001)
	})

	t.Run("over change limit requires negotiation", func(t *testing.T) {
		rec := quotationRec("PR002", model.ContractMethodPrivate, 1000, 1000)
		Review([]*model.PRRecord{rec}, fixedQuoteSource{ratio: 1.2}, pcfg)

		assert.Equal(t, model.VerdictNegotiation, rec.Verdict)
		assert.Equal(t, model.ProcessStateNeedsReview, rec.ProcessState)
		assert.Equal(t, model.ApprovalStateReview, rec.ApprovalState)
	})

	t.Run("limit itself is appropriate", func(t *testing.T) {
		rec := quotationRec("PR003", model.ContractMethodPrivate, 1000, 1000)
		Review([]*model.PRRecord{rec}, fixedQuoteSource{ratio: 1.15}, pcfg)

		assert.Equal(t, model.VerdictAppropriate, rec.Verdict)
	})

	t.Run("no reference price falls back to estimate", func(t *testing.T) {
		rec := quotationRec("PR004", model.ContractMethodPrivate, 1000, 0)
		Review([]*model.PRRecord{rec}, fixedQuoteSource{ratio: 1.2}, pcfg)

		assert.InDelta(t, 20, rec.ChangeRatePct, 0.001)
		assert.Equal(t, model.VerdictNegotiation, rec.Verdict)
	})
}

func TestReview_DerivesUnitPrices(t *testing.T) {
	rec := quotationRec("PR001", model.ContractMethodDesignatedBid, 5000, 0)
	rec.Quantity = 5
	counts := Review([]*model.PRRecord{rec}, fixedQuoteSource{ratio: 1.0}, testPipelineConfig())

	assert.Equal(t, 1000.0, rec.EstimatedUnitPrice)
	assert.Equal(t, 1000.0, rec.QuotedUnitPrice)
	assert.Equal(t, 1, counts.AutoComplete)
	assert.Zero(t, counts.NeedsReview)
}

func TestSimulatedQuoteSource(t *testing.T) {
	rec := quotationRec("PR001", model.ContractMethodDesignatedBid, 1_000_000, 0)

	src := NewSimulatedQuoteSource(42)
	for i := 0; i < 100; i++ {
		q := src.QuoteTotal(rec)
		assert.GreaterOrEqual(t, q, 800_000.0)
		assert.LessOrEqual(t, q, 1_200_000.0)
	}

	// Same seed replays the same sequence.
	a := NewSimulatedQuoteSource(7)
	b := NewSimulatedQuoteSource(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.QuoteTotal(rec), b.QuoteTotal(rec))
	}
}

func TestSortByUrgency_StableUrgentFirst(t *testing.T) {
	flexible := &model.PRRecord{RequisitionID: "PR001", Urgency: model.UrgencyFlexible}
	urgentA := &model.PRRecord{RequisitionID: "PR002", Urgency: model.UrgencyUrgent}
	normal := &model.PRRecord{RequisitionID: "PR003", Urgency: model.UrgencyNormal}
	urgentB := &model.PRRecord{RequisitionID: "PR004", Urgency: model.UrgencyUrgent}

	recs := []*model.PRRecord{flexible, urgentA, normal, urgentB}
	SortByUrgency(recs)

	assert.Equal(t, []*model.PRRecord{urgentA, urgentB, normal, flexible}, recs)
}
