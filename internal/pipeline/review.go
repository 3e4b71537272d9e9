package pipeline

import (
	"math"
	"math/rand"
	"sort"

	"github.com/0JaeminKim0/pipe-prpo/internal/config"
	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// QuoteSource supplies the incoming quotation total for a record. Production
// would connect a real bid inbox; runs use the simulated source.
type QuoteSource interface {
	QuoteTotal(rec *model.PRRecord) float64
}

// simulatedQuoteSource draws a quote uniformly from 80% to 120% of the
// estimated total. Seeded, so a run replays identically.
type simulatedQuoteSource struct {
	rng *rand.Rand
}

// NewSimulatedQuoteSource returns a deterministic QuoteSource for the seed.
func NewSimulatedQuoteSource(seed int64) QuoteSource {
	return &simulatedQuoteSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *simulatedQuoteSource) QuoteTotal(rec *model.PRRecord) float64 {
	return math.Round(rec.EstimatedTotal * (0.8 + s.rng.Float64()*0.4))
}

// ReviewCounts aggregates the terminal states of one review pass.
type ReviewCounts struct {
	AutoComplete int
	NeedsReview  int
}

// Review grades each quotation's incoming quote against the estimated and
// recent prices, renders the appropriateness verdict, and derives the
// terminal process and approval states.
//
// Private-contract records are judged on the price change rate against the
// reference unit price; bid records on competitiveness, with an excellent
// quote below the dumping ratio flagged as suspected dumping.
func Review(quotations []*model.PRRecord, quotes QuoteSource, pcfg config.PipelineConfig) ReviewCounts {
	var counts ReviewCounts
	for _, rec := range quotations {
		qty := rec.EffectiveQuantity()

		rec.QuotedTotal = quotes.QuoteTotal(rec)
		rec.QuotedUnitPrice = rec.QuotedTotal / qty
		rec.EstimatedUnitPrice = rec.EstimatedTotal / qty

		rec.Competitiveness = gradeCompetitiveness(rec.QuotedUnitPrice, rec.EstimatedUnitPrice, rec.RecentUnitPrice)
		rec.CompSignal = rec.Competitiveness.Signal()

		if rec.ContractMethod == model.ContractMethodPrivate {
			reviewPrivate(rec, pcfg.PrivateChangeLimit)
		} else {
			reviewBid(rec, pcfg.DumpingRatio)
		}

		if rec.ReviewRequired {
			rec.ProcessState = model.ProcessStateNeedsReview
			rec.ApprovalState = model.ApprovalStateReview
			counts.NeedsReview++
		} else {
			rec.ProcessState = model.ProcessStateAutoComplete
			rec.ApprovalState = model.ApprovalStatePending
			counts.AutoComplete++
		}
	}
	return counts
}

// gradeCompetitiveness compares the quoted unit price against the estimated
// and most recent contracted unit prices. A missing recent price falls back
// to the estimate for the fair band.
func gradeCompetitiveness(quoted, estimated, recent float64) model.Competitiveness {
	if quoted <= estimated {
		return model.CompetitivenessExcellent
	}
	ceiling := recent
	if ceiling <= 0 {
		ceiling = estimated
	}
	if quoted <= ceiling {
		return model.CompetitivenessFair
	}
	return model.CompetitivenessPoor
}

// reviewPrivate judges a private-contract record by how far the quote moved
// from the reference unit price. Within the limit the record auto-completes;
// past it a negotiation is required.
func reviewPrivate(rec *model.PRRecord, changeLimitPct float64) {
	ref := rec.RecentUnitPrice
	if ref <= 0 {
		ref = rec.EstimatedUnitPrice
	}
	if ref > 0 {
		rec.ChangeRatePct = (rec.QuotedUnitPrice/ref - 1) * 100
	}

	if rec.ChangeRatePct <= changeLimitPct {
		rec.Verdict = model.VerdictAppropriate
		rec.ReviewRequired = false
	} else {
		rec.Verdict = model.VerdictNegotiation
		rec.ReviewRequired = true
	}
}

// reviewBid judges a competitive-bid record by competitiveness grade. An
// excellent quote under the dumping threshold is suspicious rather than good.
func reviewBid(rec *model.PRRecord, dumpingRatio float64) {
	switch rec.Competitiveness {
	case model.CompetitivenessExcellent:
		if rec.QuotedUnitPrice < rec.EstimatedUnitPrice*dumpingRatio {
			rec.Verdict = model.VerdictSuspectedDumping
			rec.ReviewRequired = true
		} else {
			rec.Verdict = model.VerdictAppropriate
			rec.ReviewRequired = false
		}
	case model.CompetitivenessPoor:
		rec.Verdict = model.VerdictNeedsReview
		rec.ReviewRequired = true
	default:
		rec.Verdict = model.VerdictAppropriate
		rec.ReviewRequired = false
	}
}

// SortByUrgency orders quotations urgent first, preserving input order within
// a tier.
func SortByUrgency(quotations []*model.PRRecord) {
	sort.SliceStable(quotations, func(i, j int) bool {
		return quotations[i].Urgency.Order() < quotations[j].Urgency.Order()
	})
}
