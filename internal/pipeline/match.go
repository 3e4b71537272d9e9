package pipeline

import (
	"strings"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// Index maps a composite key (material key + uppercased description) to the
// first PO history record seen with that key. Later duplicates are ignored.
type Index map[string]*model.PORecord

// UnitPriceGroups maps a material key to the per-unit prices of every PO
// history record sharing that key, regardless of description.
type UnitPriceGroups map[string][]float64

// CompositeKey joins the normalized material key with the trimmed,
// uppercased description. Description matching is case-insensitive; the
// material key is compared as normalized.
func CompositeKey(materialKey, description string) string {
	return materialKey + "_" + strings.ToUpper(strings.TrimSpace(description))
}

// BuildIndex constructs the composite-key lookup from PO history.
// First-write-wins: rebuilt fresh each run.
func BuildIndex(pos []*model.PORecord) Index {
	idx := make(Index, len(pos))
	for _, po := range pos {
		key := CompositeKey(po.MaterialKey, po.Description)
		if _, ok := idx[key]; !ok {
			idx[key] = po
		}
	}
	return idx
}

// BuildUnitPriceGroups collects unit prices per material key for the
// group-average estimation tier.
func BuildUnitPriceGroups(pos []*model.PORecord) UnitPriceGroups {
	groups := make(UnitPriceGroups)
	for _, po := range pos {
		groups[po.MaterialKey] = append(groups[po.MaterialKey], po.UnitPrice())
	}
	return groups
}

// MaterialKeySet returns the set of material keys present anywhere in the PO
// history, used for private-contract eligibility.
func MaterialKeySet(pos []*model.PORecord) map[string]struct{} {
	keys := make(map[string]struct{}, len(pos))
	for _, po := range pos {
		keys[po.MaterialKey] = struct{}{}
	}
	return keys
}

// MatchSuppliers joins each requisition to the PO history on the composite
// key. On a hit the vendor fields are copied over; on a miss only the
// matched flag is set. Returns the hit count.
func MatchSuppliers(recs []*model.PRRecord, idx Index) int {
	matched := 0
	for _, rec := range recs {
		po, ok := idx[CompositeKey(rec.MaterialKey, rec.Description)]
		if !ok {
			rec.Match = model.MatchResult{Matched: false}
			continue
		}
		rec.Match = model.MatchResult{
			Matched:    true,
			VendorCode: po.VendorCode,
			VendorName: po.VendorName,
			Quantity:   po.Quantity,
			AmountKRW:  po.AmountKRW,
			Weight:     po.ResolveWeight(),
		}
		matched++
	}
	return matched
}

// FilterPZAF returns the records flagged as PZAF materials; only these enter
// the quotation sub-pipeline.
func FilterPZAF(recs []*model.PRRecord) []*model.PRRecord {
	var out []*model.PRRecord
	for _, rec := range recs {
		if rec.PZAF {
			out = append(out, rec)
		}
	}
	return out
}
