package pipeline

import (
	"strings"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
	"github.com/0JaeminKim0/pipe-prpo/internal/policy"
)

// ResolveOrderMethods decides how each PZAF requisition is fulfilled and
// returns the quotation set: records routed to bid/quotation. Standard-price
// records allocate against their contract and skip quotation entirely.
//
// For quotation records it also resolves the contract method, stamps the
// policy reason text and fixed auxiliary fields, and flags technical
// evaluation.
func ResolveOrderMethods(pzaf []*model.PRRecord, historyKeys map[string]struct{}, pol *policy.Policy) []*model.PRRecord {
	var quotations []*model.PRRecord

	for _, rec := range pzaf {
		if rec.ContractClass == model.ContractClassStandard {
			rec.OrderMethod = model.OrderMethodAllocate
			continue
		}
		rec.OrderMethod = model.OrderMethodQuotation
		quotations = append(quotations, rec)
	}

	for _, rec := range quotations {
		_, rec.PrivateEligible = historyKeys[rec.MaterialKey]

		switch {
		case rec.ContractClass == model.ContractClassNonStandard:
			rec.ContractMethod = model.ContractMethodNonStandard
			rec.ReasonText = ""
		case rec.PrivateEligible:
			rec.ContractMethod = model.ContractMethodPrivate
			rec.ReasonText = pol.ReasonPrivate
		default:
			rec.ContractMethod = model.ContractMethodDesignatedBid
			rec.ReasonText = pol.ReasonDesignatedBid
		}

		if pol.IsUrgentCreationType(rec.CreationType) {
			rec.ResponseWindowDays = pol.ResponseWindowShort
		} else {
			rec.ResponseWindowDays = pol.ResponseWindowLong
		}

		rec.NonApprovalCode = pol.NonApprovalCode
		rec.NonApprovalText = pol.NonApprovalText

		rec.TechEvalRequired = rec.Match.VendorCode != "" &&
			strings.HasPrefix(rec.Match.VendorCode, pol.TechEvalVendorPrefix)
	}

	return quotations
}
