package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

func sampleResult() *model.Result {
	return &model.Result{
		RunID: "run-1",
		Summary: model.Summary{
			Total:        2,
			Urgent:       1,
			Flexible:     1,
			AutoComplete: 2,
			PriceMethods: map[model.PriceMethod]int{
				model.PriceMethodExactMatch: 1,
				model.PriceMethodDefault:    1,
			},
			ElapsedSeconds: 0.3,
		},
		Quotations: []*model.PRRecord{
			{
				RequisitionID:  "PR001",
				MaterialNo:     "H123PZAF01",
				Description:    "BOLT",
				Quantity:       2,
				Urgency:        model.UrgencyUrgent,
				UrgencySignal:  model.UrgencyUrgent.Signal(),
				ContractMethod: model.ContractMethodPrivate,
				Match:          model.MatchResult{Matched: true, VendorCode: "2001", VendorName: "대한상사"},
				PriceMethod:    model.PriceMethodExactMatch,
				EstimatedTotal: 2000,
				QuotedTotal:    2100,
				Verdict:        model.VerdictAppropriate,
				ProcessState:   model.ProcessStateAutoComplete,
				ApprovalState:  model.ApprovalStatePending,
			},
			{
				RequisitionID:  "PR002",
				MaterialNo:     "H123PZAF02",
				Description:    "PIPE",
				Quantity:       1,
				Urgency:        model.UrgencyFlexible,
				UrgencySignal:  model.UrgencyFlexible.Signal(),
				ContractMethod: model.ContractMethodDesignatedBid,
				PriceMethod:    model.PriceMethodDefault,
				EstimatedTotal: 1_000_000,
			},
		},
		CompletedAt: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestBytes_RoundTrip(t *testing.T) {
	data, err := Bytes(sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Equal(t, "검토결과", f.Sheets[0].Name)
	assert.Equal(t, "요약", f.Sheets[1].Name)

	review := f.Sheets[0]
	require.Len(t, review.Rows, 3) // header + 2 quotations
	assert.Equal(t, "구매요청", review.Rows[0].Cells[0].Value)
	assert.Equal(t, "PR001", review.Rows[1].Cells[0].Value)
	assert.Equal(t, "BOLT", review.Rows[1].Cells[2].Value)
	assert.Equal(t, "private_contract", review.Rows[1].Cells[8].Value)
	assert.Equal(t, "PR002", review.Rows[2].Cells[0].Value)
	assert.Equal(t, "N", review.Rows[2].Cells[21].Value)

	summary := f.Sheets[1]
	assert.Equal(t, "실행 ID", summary.Rows[0].Cells[0].Value)
	assert.Equal(t, "run-1", summary.Rows[0].Cells[1].Value)
}

func TestWriteFile(t *testing.T) {
	path := t.TempDir() + "/out.xlsx"
	require.NoError(t, WriteFile(sampleResult(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 2)
}
