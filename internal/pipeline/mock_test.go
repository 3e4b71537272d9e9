package pipeline

import (
	"context"

	"github.com/0JaeminKim0/pipe-prpo/internal/config"
	"github.com/0JaeminKim0/pipe-prpo/internal/model"
	"github.com/0JaeminKim0/pipe-prpo/pkg/anthropic"
)

// mockAnthropicClient implements anthropic.Client for testing.
type mockAnthropicClient struct {
	response *anthropic.MessageResponse
	err      error
	calls    int
	requests []anthropic.MessageRequest
}

func (m *mockAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.calls++
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

// textResponse wraps text in a single-block response.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

// fixedQuoteSource quotes a constant fraction of the estimated total.
type fixedQuoteSource struct {
	ratio float64
}

func (s fixedQuoteSource) QuoteTotal(rec *model.PRRecord) float64 {
	return rec.EstimatedTotal * s.ratio
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		SimulationDate:     "2026-01-01",
		UrgentDays:         2,
		NormalDays:         5,
		LLMCallBudget:      10,
		DefaultTotalPrice:  1_000_000,
		DumpingRatio:       0.7,
		PrivateChangeLimit: 15,
	}
}

// validPR builds a requisition that passes required-field validation.
func validPR(id, materialNo string) *model.PRRecord {
	return &model.PRRecord{
		RequisitionID:   id,
		MaterialNo:      materialNo,
		Description:     "STEEL PLATE",
		RequisitionDate: "2025-12-01",
		RequiredBy:      "2026-01-20",
		LeadTimeDays:    7,
		LeadTimeRaw:     "7",
		SourcingGroup:   "SG1",
		MaterialGroup:   "MG1",
		Requester:       "김철수",
		Quantity:        2,
	}
}

// historyPO builds a PO history line with its key already normalized.
func historyPO(materialNo, desc string, qty, amount float64) *model.PORecord {
	po := &model.PORecord{
		MaterialNo:  materialNo,
		Description: desc,
		VendorCode:  "2001",
		VendorName:  "대한상사",
		Quantity:    qty,
		AmountKRW:   amount,
	}
	po.MaterialKey = NormalizeKey(materialNo)
	return po
}
