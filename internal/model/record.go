package model

import "time"

// ContractClass is the contract classification derived from the unit-price
// contract number and auto-allocation group attributes.
type ContractClass string

const (
	ContractClassStandard    ContractClass = "standard_price"
	ContractClassNonStandard ContractClass = "non_standard_price"
	ContractClassNA          ContractClass = "not_applicable"
)

// Urgency is the deadline-derived urgency tier.
type Urgency string

const (
	UrgencyUrgent   Urgency = "urgent"
	UrgencyNormal   Urgency = "normal"
	UrgencyFlexible Urgency = "flexible"
)

// Signal returns the display marker for the tier.
func (u Urgency) Signal() string {
	switch u {
	case UrgencyUrgent:
		return "🔴"
	case UrgencyFlexible:
		return "🟢"
	default:
		return "🟡"
	}
}

// Order returns the sort rank for the tier (urgent first).
func (u Urgency) Order() int {
	switch u {
	case UrgencyUrgent:
		return 0
	case UrgencyFlexible:
		return 2
	default:
		return 1
	}
}

// OrderMethod describes how a PZAF requisition is fulfilled.
type OrderMethod string

const (
	OrderMethodAllocate  OrderMethod = "allocate_then_order"
	OrderMethodQuotation OrderMethod = "bid_quotation"
)

// ContractMethod is the resolved contracting route for a quotation record.
type ContractMethod string

const (
	ContractMethodNonStandard   ContractMethod = "non_standard_price_contract"
	ContractMethodPrivate       ContractMethod = "private_contract"
	ContractMethodDesignatedBid ContractMethod = "designated_competitive_bid"
)

// PriceMethod identifies which estimation strategy produced the price.
type PriceMethod string

const (
	PriceMethodExactMatch   PriceMethod = "exact_match"
	PriceMethodGroupAverage PriceMethod = "group_average"
	PriceMethodLLM          PriceMethod = "llm_estimated"
	PriceMethodDefault      PriceMethod = "default_fallback"
)

// Competitiveness grades the simulated quotation against reference prices.
type Competitiveness string

const (
	CompetitivenessExcellent Competitiveness = "excellent"
	CompetitivenessFair      Competitiveness = "fair"
	CompetitivenessPoor      Competitiveness = "poor"
)

// Signal returns the display marker for the grade.
func (c Competitiveness) Signal() string {
	switch c {
	case CompetitivenessExcellent:
		return "🟢"
	case CompetitivenessPoor:
		return "🔴"
	default:
		return "🟡"
	}
}

// Verdict is the appropriateness review outcome.
type Verdict string

const (
	VerdictAppropriate      Verdict = "appropriate"
	VerdictNegotiation      Verdict = "negotiation_required"
	VerdictSuspectedDumping Verdict = "suspected_dumping"
	VerdictNeedsReview      Verdict = "needs_review"
)

// ProcessState is the terminal pipeline state of a quotation record.
type ProcessState string

const (
	ProcessStateAutoComplete ProcessState = "auto_complete"
	ProcessStateNeedsReview  ProcessState = "needs_review"
)

// ApprovalState is derived from ProcessState and mutated by the approval API.
type ApprovalState string

const (
	ApprovalStatePending ApprovalState = "pending_approval"
	ApprovalStateReview  ApprovalState = "pending_review"
	ApprovalStateDone    ApprovalState = "approved"
)

// MatchResult carries the vendor fields copied from a matched PO history record.
type MatchResult struct {
	Matched    bool    `json:"matched"`
	VendorCode string  `json:"vendor_code,omitempty"`
	VendorName string  `json:"vendor_name,omitempty"`
	Quantity   float64 `json:"quantity,omitempty"`
	AmountKRW  float64 `json:"amount_krw,omitempty"`
	Weight     float64 `json:"weight,omitempty"`
}

// PRRecord is one purchase-requisition line. Input fields come from the
// ingested sheet; the remaining fields are filled in stage order and stay
// zero-valued until their stage runs.
type PRRecord struct {
	// Input fields.
	RequisitionID   string  `json:"requisition_id"`
	MaterialNo      string  `json:"material_no"`
	Description     string  `json:"description"`
	RequisitionDate string  `json:"requisition_date"`
	RequiredBy      string  `json:"required_by"`
	LeadTimeDays    int     `json:"lead_time_days"`
	LeadTimeRaw     string  `json:"lead_time_raw,omitempty"`
	SourcingGroup   string  `json:"sourcing_group"`
	MaterialGroup   string  `json:"material_group"`
	Requester       string  `json:"requester,omitempty"`
	ContractNo      string  `json:"contract_no,omitempty"`
	AutoAllocGroup  string  `json:"auto_alloc_group,omitempty"`
	CreationType    string  `json:"creation_type,omitempty"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit,omitempty"`
	DataSource      string  `json:"data_source,omitempty"`

	// Key normalization.
	MaterialKey string `json:"material_key,omitempty"`
	PZAF        bool   `json:"pzaf"`

	// Validation.
	Valid         bool   `json:"valid"`
	MissingFields string `json:"missing_fields,omitempty"`

	// Contract classification.
	ContractClass ContractClass `json:"contract_class,omitempty"`

	// Urgency.
	Urgency           Urgency `json:"urgency,omitempty"`
	UrgencySignal     string  `json:"urgency_signal,omitempty"`
	DaysUntilDeadline int     `json:"days_until_deadline,omitempty"`
	RemainingDays     int     `json:"remaining_days,omitempty"`

	// Supplier matching.
	Match MatchResult `json:"match"`

	// Order / contract method.
	OrderMethod        OrderMethod    `json:"order_method,omitempty"`
	ContractMethod     ContractMethod `json:"contract_method,omitempty"`
	PrivateEligible    bool           `json:"private_eligible"`
	ResponseWindowDays int            `json:"response_window_days,omitempty"`
	ReasonText         string         `json:"reason_text,omitempty"`
	NonApprovalCode    string         `json:"non_approval_code,omitempty"`
	NonApprovalText    string         `json:"non_approval_text,omitempty"`
	TechEvalRequired   bool           `json:"tech_eval_required"`

	// Price estimation.
	EstimatedUnitPrice float64     `json:"estimated_unit_price,omitempty"`
	EstimatedTotal     float64     `json:"estimated_total,omitempty"`
	PriceMethod        PriceMethod `json:"price_method,omitempty"`
	RecentUnitPrice    float64     `json:"recent_unit_price,omitempty"`

	// Appropriateness review.
	QuotedTotal     float64         `json:"quoted_total,omitempty"`
	QuotedUnitPrice float64         `json:"quoted_unit_price,omitempty"`
	Competitiveness Competitiveness `json:"competitiveness,omitempty"`
	CompSignal      string          `json:"competitiveness_signal,omitempty"`
	ChangeRatePct   float64         `json:"change_rate_pct,omitempty"`
	Verdict         Verdict         `json:"verdict,omitempty"`
	ReviewRequired  bool            `json:"review_required"`
	ProcessState    ProcessState    `json:"process_state,omitempty"`
	ApprovalState   ApprovalState   `json:"approval_state,omitempty"`

	// Post-run mutations via the approval API.
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	Modified   bool       `json:"modified"`
}

// EffectiveQuantity returns the requested quantity, defaulting to 1 when the
// sheet value was zero or unparseable. Division by quantity relies on this.
func (r *PRRecord) EffectiveQuantity() float64 {
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}

// PORecord is one historical purchase-order line, read-only for a run.
type PORecord struct {
	MaterialNo  string  `json:"material_no"`
	Description string  `json:"description"`
	VendorCode  string  `json:"vendor_code"`
	VendorName  string  `json:"vendor_name"`
	Quantity    float64 `json:"quantity"`
	AmountKRW   float64 `json:"amount_krw"`
	Weight      float64 `json:"weight,omitempty"`
	TotalWeight float64 `json:"total_weight,omitempty"`

	MaterialKey string `json:"material_key,omitempty"`
}

// EffectiveQuantity returns the ordered quantity, defaulting to 1.
func (r *PORecord) EffectiveQuantity() float64 {
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}

// UnitPrice returns the converted order amount divided by the ordered
// quantity (quantity defaults to 1).
func (r *PORecord) UnitPrice() float64 {
	return r.AmountKRW / r.EffectiveQuantity()
}

// ResolveWeight returns the first present weight value, falling back from the
// weight field to the total-weight field to the ordered quantity.
func (r *PORecord) ResolveWeight() float64 {
	if r.Weight > 0 {
		return r.Weight
	}
	if r.TotalWeight > 0 {
		return r.TotalWeight
	}
	return r.Quantity
}
