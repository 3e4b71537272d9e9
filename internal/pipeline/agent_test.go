package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0JaeminKim0/pipe-prpo/internal/config"
	"github.com/0JaeminKim0/pipe-prpo/internal/model"
	"github.com/0JaeminKim0/pipe-prpo/internal/policy"
)

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: testAICfg,
		Pipeline:  testPipelineConfig(),
	}
}

// testDataset builds a small but representative dataset: an urgent PZAF
// record with history, a flexible PZAF record without, a non-PZAF record, a
// standard-contract PZAF record and an invalid record.
func testDataset() ([]*model.PRRecord, []*model.PORecord) {
	withHistory := validPR("PR001", "H123PZAF01")
	withHistory.Description = "BOLT"
	withHistory.RequiredBy = "2026-01-08" // remaining 0 days

	noHistory := validPR("PR002", "H123PZAF02")
	noHistory.RequiredBy = "2026-01-30"

	plain := validPR("PR003", "H123AB1234")

	allocated := validPR("PR004", "H123PZAF03")
	allocated.ContractNo = "C-1"
	allocated.AutoAllocGroup = "G1"

	broken := validPR("PR005", "H123PZAF04")
	broken.SourcingGroup = ""

	pr := []*model.PRRecord{withHistory, noHistory, plain, allocated, broken}
	po := []*model.PORecord{historyPO("H001PZAF01", "BOLT", 5, 5000)}
	return pr, po
}

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	agent := NewAgent(testConfig(), policy.Default(), nil, fixedQuoteSource{ratio: 1.0})
	pr, po := testDataset()
	require.NoError(t, agent.SetData(pr, po))
	return agent
}

func TestAgent_Process(t *testing.T) {
	agent := newTestAgent(t)

	result, err := agent.Process(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.RunID)

	// Only non-standard PZAF records reach quotation, urgent first.
	require.Len(t, result.Quotations, 2)
	assert.Equal(t, "PR001", result.Quotations[0].RequisitionID)
	assert.Equal(t, "PR002", result.Quotations[1].RequisitionID)

	first := result.Quotations[0]
	assert.Equal(t, model.UrgencyUrgent, first.Urgency)
	assert.Equal(t, model.ContractMethodPrivate, first.ContractMethod)
	assert.Equal(t, model.PriceMethodExactMatch, first.PriceMethod)
	assert.Equal(t, 2000.0, first.EstimatedTotal)
	assert.True(t, first.Match.Matched)
	assert.True(t, first.TechEvalRequired) // vendor code 2001
	assert.Equal(t, model.ProcessStateAutoComplete, first.ProcessState)
	assert.Equal(t, model.ApprovalStatePending, first.ApprovalState)

	second := result.Quotations[1]
	assert.Equal(t, model.ContractMethodDesignatedBid, second.ContractMethod)
	assert.Equal(t, model.PriceMethodDefault, second.PriceMethod)
	assert.Equal(t, 1_000_000.0, second.EstimatedTotal)

	require.Len(t, result.InvalidPRs, 1)
	assert.Equal(t, "PR005", result.InvalidPRs[0].RequisitionID)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, 1, result.Notifications[0].PRCount)

	sum := result.Summary
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Urgent)
	assert.Equal(t, 3, sum.Flexible)
	assert.Equal(t, 2, sum.AutoComplete)
	assert.Zero(t, sum.NeedsReview)
	assert.Equal(t, 1, sum.Contract[model.ContractClassStandard])
	assert.Equal(t, 1, sum.PriceMethods[model.PriceMethodExactMatch])
	assert.Equal(t, 1, sum.PriceMethods[model.PriceMethodDefault])
	assert.Zero(t, sum.LLMCalls)

	status, progress := agent.Status()
	assert.Equal(t, model.RunStatusComplete, status)
	assert.Equal(t, totalSteps, progress.Step)
	assert.Equal(t, 100, progress.Percent)
	assert.NotEmpty(t, progress.Logs)
	assert.Same(t, result, agent.Result())
}

func TestAgent_ProcessDeterministic(t *testing.T) {
	run := func() *model.Result {
		agent := newTestAgent(t)
		result, err := agent.Process(context.Background())
		require.NoError(t, err)
		return result
	}

	a, b := run(), run()

	assert.Equal(t, a.Summary.Total, b.Summary.Total)
	assert.Equal(t, a.Summary.PriceMethods, b.Summary.PriceMethods)
	require.Equal(t, len(a.Quotations), len(b.Quotations))
	for i := range a.Quotations {
		assert.Equal(t, a.Quotations[i].RequisitionID, b.Quotations[i].RequisitionID)
		assert.Equal(t, a.Quotations[i].EstimatedTotal, b.Quotations[i].EstimatedTotal)
		assert.Equal(t, a.Quotations[i].QuotedTotal, b.Quotations[i].QuotedTotal)
		assert.Equal(t, a.Quotations[i].Verdict, b.Quotations[i].Verdict)
	}
}

func TestAgent_ProcessWithoutData(t *testing.T) {
	agent := NewAgent(testConfig(), policy.Default(), nil, nil)

	_, err := agent.Process(context.Background())
	assert.ErrorIs(t, err, ErrNoPRData)
}

func TestAgent_RejectsConcurrentRun(t *testing.T) {
	agent := newTestAgent(t)
	agent.running = true

	_, err := agent.Process(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.ErrorIs(t, agent.SetData(nil, nil), ErrRunInProgress)
}

func TestAgent_Data(t *testing.T) {
	agent := newTestAgent(t)

	data := agent.Data()
	assert.Equal(t, 5, data.PRTotal)
	assert.Equal(t, 1, data.POTotal)
	assert.Equal(t, 4, data.PZAFCount)
	assert.True(t, data.HasData)

	empty := NewAgent(testConfig(), policy.Default(), nil, nil)
	assert.False(t, empty.Data().HasData)
}

func TestAgent_Approve(t *testing.T) {
	agent := newTestAgent(t)
	_, err := agent.Approve("PR001")
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = agent.Process(context.Background())
	require.NoError(t, err)

	rec, err := agent.Approve("PR001")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStateDone, rec.ApprovalState)
	assert.NotNil(t, rec.ApprovedAt)

	_, err = agent.Approve("PR999")
	assert.ErrorIs(t, err, ErrQuotationNotFound)
}

func TestAgent_BatchApprove(t *testing.T) {
	agent := newTestAgent(t)
	_, err := agent.Process(context.Background())
	require.NoError(t, err)

	approved, failed := agent.BatchApprove([]string{"PR001", "PR999", "PR002"})

	assert.Len(t, approved, 2)
	require.Len(t, failed, 1)
	assert.Contains(t, failed, "PR999")
}

func TestAgent_UpdateQuotation(t *testing.T) {
	agent := newTestAgent(t)
	_, err := agent.Process(context.Background())
	require.NoError(t, err)

	quoted := 5000.0
	window := 5
	rec, err := agent.UpdateQuotation("PR002", QuotationUpdate{
		QuotedTotal:    &quoted,
		ResponseWindow: &window,
	})
	require.NoError(t, err)

	assert.Equal(t, 5000.0, rec.QuotedTotal)
	assert.Equal(t, 2500.0, rec.QuotedUnitPrice) // quantity 2
	assert.Equal(t, 5, rec.ResponseWindowDays)
	assert.True(t, rec.Modified)
	assert.NotNil(t, rec.ModifiedAt)

	_, err = agent.UpdateQuotation("PR999", QuotationUpdate{})
	assert.ErrorIs(t, err, ErrQuotationNotFound)
}
