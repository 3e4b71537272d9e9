package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0JaeminKim0/pipe-prpo/internal/config"
	"github.com/0JaeminKim0/pipe-prpo/internal/model"
	"github.com/0JaeminKim0/pipe-prpo/internal/policy"
	"github.com/0JaeminKim0/pipe-prpo/pkg/anthropic"
)

// ErrRunInProgress is returned when Process is called while a run is active.
var ErrRunInProgress = errors.New("pipeline: run already in progress")

// ErrNoPRData is returned when Process is called before any requisition data
// has been loaded.
var ErrNoPRData = errors.New("pipeline: no requisition data loaded")

// ErrNoResult is returned by post-run operations before a run has completed.
var ErrNoResult = errors.New("pipeline: no completed run")

// ErrQuotationNotFound is returned when a requisition id does not resolve to
// a quotation in the latest result.
var ErrQuotationNotFound = errors.New("pipeline: quotation not found")

const totalSteps = 7

var stepNames = [totalSteps]string{
	"데이터 검증 및 키 정규화",
	"필수항목 점검 및 통보",
	"계약 분류",
	"긴급도 평가",
	"공급사 매칭 및 발주방식 결정",
	"입찰 예정가 산정",
	"적정성 검토 및 승인상태 부여",
}

// Agent owns the loaded dataset and runs the triage pipeline over it. One
// run at a time; loads and post-run mutations serialize on the same lock.
type Agent struct {
	cfg    *config.Config
	pol    *policy.Policy
	client anthropic.Client
	quotes QuoteSource

	mu       sync.Mutex
	running  bool
	status   model.RunStatus
	progress model.Progress
	pr       []*model.PRRecord
	po       []*model.PORecord
	result   *model.Result
}

// NewAgent wires an Agent. client may be nil (external pricing disabled);
// quotes may be nil, in which case each run gets a time-seeded simulated
// source.
func NewAgent(cfg *config.Config, pol *policy.Policy, client anthropic.Client, quotes QuoteSource) *Agent {
	return &Agent{
		cfg:    cfg,
		pol:    pol,
		client: client,
		quotes: quotes,
		status: model.RunStatusIdle,
	}
}

// SetData replaces the loaded dataset. Rejected while a run is active.
func (a *Agent) SetData(pr []*model.PRRecord, po []*model.PORecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return ErrRunInProgress
	}
	if pr != nil {
		a.pr = pr
	}
	if po != nil {
		a.po = po
	}
	return nil
}

// AppendPR adds requisition rows to the loaded dataset.
func (a *Agent) AppendPR(pr []*model.PRRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return ErrRunInProgress
	}
	a.pr = append(a.pr, pr...)
	return nil
}

// DataSummary describes what is currently loaded.
type DataSummary struct {
	PRTotal   int  `json:"pr_total"`
	POTotal   int  `json:"po_total"`
	PZAFCount int  `json:"pzaf_count"`
	HasData   bool `json:"has_data"`
}

// Data returns counts for the loaded dataset. PZAF counting applies key
// normalization on the fly so the summary is accurate before a run.
func (a *Agent) Data() DataSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	pzaf := 0
	for _, rec := range a.pr {
		if rec.PZAF || strings.Contains(rec.MaterialNo, pzafMarker) {
			pzaf++
		}
	}
	return DataSummary{
		PRTotal:   len(a.pr),
		POTotal:   len(a.po),
		PZAFCount: pzaf,
		HasData:   len(a.pr) > 0,
	}
}

// Status returns the run status and a snapshot of current progress.
func (a *Agent) Status() (model.RunStatus, model.Progress) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := a.progress
	snap.Logs = append([]model.LogEntry(nil), a.progress.Logs...)
	return a.status, snap
}

// Result returns the latest completed run, or nil.
func (a *Agent) Result() *model.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Process runs the full pipeline over the loaded dataset and publishes the
// result. Exactly one run may be active; concurrent calls get
// ErrRunInProgress.
func (a *Agent) Process(ctx context.Context) (*model.Result, error) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return nil, ErrRunInProgress
	}
	if len(a.pr) == 0 {
		a.mu.Unlock()
		return nil, ErrNoPRData
	}
	a.running = true
	a.status = model.RunStatusRunning
	a.progress = model.Progress{TotalSteps: totalSteps}
	pr := a.pr
	po := a.po
	a.mu.Unlock()

	result, err := a.run(ctx, pr, po)

	a.mu.Lock()
	a.running = false
	if err != nil {
		a.status = model.RunStatusFailed
	} else {
		a.status = model.RunStatusComplete
		a.result = result
	}
	a.mu.Unlock()

	return result, err
}

func (a *Agent) run(ctx context.Context, pr []*model.PRRecord, po []*model.PORecord) (*model.Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	zap.L().Info("pipeline: run started",
		zap.String("run_id", runID),
		zap.Int("pr_count", len(pr)),
		zap.Int("po_count", len(po)),
	)

	// Step 1: keys and validation.
	a.step(1)
	ApplyKeys(pr, po)
	valid, invalid := PartitionValid(pr)
	a.logf("유효 PR %d건 / 누락 PR %d건", len(valid), len(invalid))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 2: missing-field notifications.
	a.step(2)
	notifications := BuildNotifications(invalid, start)
	a.logf("담당자 통보 %d건 대기", len(notifications))

	// Step 3: contract classification.
	a.step(3)
	contractCounts := ClassifyContracts(valid)
	a.logf("단가계약 %d건 / 비단가계약 %d건",
		contractCounts[model.ContractClassStandard],
		contractCounts[model.ContractClassNonStandard],
	)

	// Step 4: urgency.
	a.step(4)
	pcfg := a.cfg.Pipeline
	urgencyCounts := ScoreUrgencies(valid, pcfg.SimDate(), pcfg.UrgentDays, pcfg.NormalDays)
	a.logf("긴급 %d건 / 보통 %d건 / 여유 %d건",
		urgencyCounts[model.UrgencyUrgent],
		urgencyCounts[model.UrgencyNormal],
		urgencyCounts[model.UrgencyFlexible],
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 5: supplier matching and order method for PZAF records.
	a.step(5)
	idx := BuildIndex(po)
	histKeys := MaterialKeySet(po)
	matched := MatchSuppliers(valid, idx)
	pzaf := FilterPZAF(valid)
	quotations := ResolveOrderMethods(pzaf, histKeys, a.pol)
	a.logf("공급사 매칭 %d건, PZAF %d건, 견적대상 %d건", matched, len(pzaf), len(quotations))

	// Step 6: price estimation.
	a.step(6)
	est := NewEstimator(idx, BuildUnitPriceGroups(po), po, a.client, a.cfg.Anthropic, pcfg)
	priceMethods := est.Run(ctx, quotations)
	a.logf("가격 산정 완료 (외부 산정 %d건)", est.Calls())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 7: appropriateness review, approval states, ordering.
	a.step(7)
	quotes := a.quotes
	if quotes == nil {
		quotes = NewSimulatedQuoteSource(start.UnixNano())
	}
	reviewed := Review(quotations, quotes, pcfg)
	SortByUrgency(quotations)
	a.logf("자동완료 %d건 / 검토필요 %d건", reviewed.AutoComplete, reviewed.NeedsReview)

	elapsed := time.Since(start)
	result := &model.Result{
		RunID: runID,
		Summary: model.Summary{
			Total:          len(quotations),
			Urgent:         urgencyCounts[model.UrgencyUrgent],
			Normal:         urgencyCounts[model.UrgencyNormal],
			Flexible:       urgencyCounts[model.UrgencyFlexible],
			AutoComplete:   reviewed.AutoComplete,
			NeedsReview:    reviewed.NeedsReview,
			Contract:       contractCounts,
			PriceMethods:   priceMethods,
			LLMCalls:       est.Calls(),
			ElapsedSeconds: elapsed.Seconds(),
		},
		Quotations:    quotations,
		InvalidPRs:    invalid,
		Notifications: notifications,
		PricingLog:    est.Log(),
		CompletedAt:   start.Add(elapsed),
	}

	zap.L().Info("pipeline: run complete",
		zap.String("run_id", runID),
		zap.Int("quotations", len(quotations)),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// step advances the progress pointer to the given 1-based step.
func (a *Agent) step(n int) {
	a.mu.Lock()
	a.progress.Step = n
	a.progress.StepName = stepNames[n-1]
	a.progress.Percent = n * 100 / totalSteps
	a.mu.Unlock()
	zap.L().Info("pipeline: step", zap.Int("step", n), zap.String("name", stepNames[n-1]))
}

// logf appends a progress log line visible through Status.
func (a *Agent) logf(format string, args ...any) {
	a.mu.Lock()
	a.progress.Logs = append(a.progress.Logs, model.LogEntry{
		Timestamp: time.Now(),
		Message:   fmt.Sprintf(format, args...),
		Level:     "info",
	})
	a.mu.Unlock()
}

// Approve marks one quotation approved. Only records already past review
// (pending approval) can be approved directly.
func (a *Agent) Approve(requisitionID string) (*model.PRRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.approveLocked(requisitionID)
}

// BatchApprove approves several quotations; ids that fail are reported
// per-id and do not stop the rest.
func (a *Agent) BatchApprove(requisitionIDs []string) (approved []*model.PRRecord, failed map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	failed = make(map[string]string)
	for _, id := range requisitionIDs {
		rec, err := a.approveLocked(id)
		if err != nil {
			failed[id] = err.Error()
			continue
		}
		approved = append(approved, rec)
	}
	return approved, failed
}

func (a *Agent) approveLocked(requisitionID string) (*model.PRRecord, error) {
	if a.result == nil {
		return nil, ErrNoResult
	}
	rec := a.result.FindQuotation(requisitionID)
	if rec == nil {
		return nil, ErrQuotationNotFound
	}

	now := time.Now()
	rec.ApprovalState = model.ApprovalStateDone
	rec.ApprovedAt = &now
	zap.L().Info("pipeline: quotation approved", zap.String("requisition", requisitionID))
	return rec, nil
}

// QuotationUpdate carries the editable fields of a quotation. Nil pointers
// leave the field untouched.
type QuotationUpdate struct {
	EstimatedTotal *float64 `json:"estimated_total"`
	QuotedTotal    *float64 `json:"quoted_total"`
	ApprovalState  *string  `json:"approval_state"`
	ContractMethod *string  `json:"contract_method"`
	ResponseWindow *int     `json:"response_window_days"`
	TechEval       *bool    `json:"tech_eval_required"`
}

// UpdateQuotation applies a partial edit to one quotation in the latest
// result and stamps it modified. Derived unit prices are kept consistent
// with the edited totals.
func (a *Agent) UpdateQuotation(requisitionID string, upd QuotationUpdate) (*model.PRRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.result == nil {
		return nil, ErrNoResult
	}
	rec := a.result.FindQuotation(requisitionID)
	if rec == nil {
		return nil, ErrQuotationNotFound
	}

	qty := rec.EffectiveQuantity()
	if upd.EstimatedTotal != nil {
		rec.EstimatedTotal = *upd.EstimatedTotal
		rec.EstimatedUnitPrice = rec.EstimatedTotal / qty
	}
	if upd.QuotedTotal != nil {
		rec.QuotedTotal = *upd.QuotedTotal
		rec.QuotedUnitPrice = rec.QuotedTotal / qty
	}
	if upd.ApprovalState != nil {
		rec.ApprovalState = model.ApprovalState(*upd.ApprovalState)
	}
	if upd.ContractMethod != nil {
		rec.ContractMethod = model.ContractMethod(*upd.ContractMethod)
	}
	if upd.ResponseWindow != nil {
		rec.ResponseWindowDays = *upd.ResponseWindow
	}
	if upd.TechEval != nil {
		rec.TechEvalRequired = *upd.TechEval
	}

	now := time.Now()
	rec.Modified = true
	rec.ModifiedAt = &now
	zap.L().Info("pipeline: quotation updated", zap.String("requisition", requisitionID))
	return rec, nil
}
