package model

import "time"

// RunStatus represents the current state of a processing run.
type RunStatus string

const (
	RunStatusIdle     RunStatus = "idle"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// LogEntry is a single progress log line visible to status readers.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
}

// Progress tracks which stage an in-flight run is on. Readers may observe
// intermediate values while a run executes.
type Progress struct {
	Step       int        `json:"step"`
	TotalSteps int        `json:"total_steps"`
	StepName   string     `json:"step_name"`
	Percent    int        `json:"percent"`
	Logs       []LogEntry `json:"logs"`
}

// NotificationEntry is one queued missing-field notification, grouped by
// requester.
type NotificationEntry struct {
	Timestamp time.Time          `json:"timestamp"`
	Recipient string             `json:"recipient"`
	Email     string             `json:"email"`
	Subject   string             `json:"subject"`
	PRCount   int                `json:"pr_count"`
	Items     []NotificationItem `json:"items"`
	Status    string             `json:"status"`
}

// NotificationItem identifies one invalid requisition inside a notification.
type NotificationItem struct {
	RequisitionID string `json:"requisition_id"`
	MaterialNo    string `json:"material_no"`
	Missing       string `json:"missing"`
}

// PricingEntry records one successful external price estimation for audit.
type PricingEntry struct {
	Timestamp     time.Time     `json:"timestamp"`
	RequisitionID string        `json:"requisition_id"`
	MaterialNo    string        `json:"material_no"`
	Result        PriceEstimate `json:"result"`
}

// PriceEstimate is the structured answer of the pricing collaborator.
type PriceEstimate struct {
	UnitPrice  float64 `json:"estimated_unit_price"`
	Rationale  string  `json:"rationale"`
	Confidence string  `json:"confidence"` // high, medium, low
}

// Summary aggregates counters for one run.
type Summary struct {
	Total          int                   `json:"total"`
	Urgent         int                   `json:"urgent"`
	Normal         int                   `json:"normal"`
	Flexible       int                   `json:"flexible"`
	AutoComplete   int                   `json:"auto_complete"`
	NeedsReview    int                   `json:"needs_review"`
	Contract       map[ContractClass]int `json:"contract"`
	PriceMethods   map[PriceMethod]int   `json:"price_methods"`
	LLMCalls       int                   `json:"llm_calls"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
}

// Result is the immutable snapshot produced by one completed run.
type Result struct {
	RunID         string              `json:"run_id"`
	Summary       Summary             `json:"summary"`
	Quotations    []*PRRecord         `json:"quotations"`
	InvalidPRs    []*PRRecord         `json:"invalid_prs"`
	Notifications []NotificationEntry `json:"notifications"`
	PricingLog    []PricingEntry      `json:"pricing_log"`
	CompletedAt   time.Time           `json:"completed_at"`
}

// FindQuotation returns the quotation record with the given requisition id,
// or nil. The requisition id is the record identity the approval API uses.
func (r *Result) FindQuotation(requisitionID string) *PRRecord {
	for _, q := range r.Quotations {
		if q.RequisitionID == requisitionID {
			return q
		}
	}
	return nil
}
