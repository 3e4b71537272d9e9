package pipeline

import (
	"strings"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// ClassifyContract assigns the contract classification from the two optional
// contract attributes. A record with no unit-price contract needs quotation
// regardless of its allocation group.
func ClassifyContract(rec *model.PRRecord) model.ContractClass {
	hasContract := strings.TrimSpace(rec.ContractNo) != ""
	hasAutoAlloc := strings.TrimSpace(rec.AutoAllocGroup) != ""

	switch {
	case hasContract && hasAutoAlloc:
		return model.ContractClassStandard
	case hasContract:
		return model.ContractClassNonStandard
	default:
		return model.ContractClassNA
	}
}

// ClassifyContracts runs ClassifyContract over the working set and returns a
// classification histogram.
func ClassifyContracts(recs []*model.PRRecord) map[model.ContractClass]int {
	hist := make(map[model.ContractClass]int)
	for _, rec := range recs {
		rec.ContractClass = ClassifyContract(rec)
		hist[rec.ContractClass]++
	}
	return hist
}
