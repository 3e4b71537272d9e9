// Package report renders a completed run as a downloadable workbook.
package report

import (
	"bytes"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

const (
	sheetQuotations = "검토결과"
	sheetSummary    = "요약"
)

// quotationHeader is the column order of the review sheet.
var quotationHeader = []string{
	"구매요청", "자재번호", "내역", "수량",
	"긴급도", "잔여일수",
	"계약구분", "발주방식", "계약방식", "계약사유",
	"업체코드", "업체명",
	"예정가산정방식", "입찰예정가", "견적가", "변동률(%)",
	"경쟁력", "적정성", "처리상태", "승인상태",
	"회신기한(일)", "기술평가",
}

// Build renders the result into a workbook with a per-quotation review sheet
// and a run summary sheet.
func Build(result *model.Result) (*xlsx.File, error) {
	f := xlsx.NewFile()

	if err := addQuotationSheet(f, result.Quotations); err != nil {
		return nil, err
	}
	if err := addSummarySheet(f, result); err != nil {
		return nil, err
	}
	return f, nil
}

// Bytes renders the result to xlsx bytes, ready to serve as a download.
func Bytes(result *model.Result) ([]byte, error) {
	f, err := Build(result)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "report: write workbook")
	}
	return buf.Bytes(), nil
}

// WriteFile renders the result to an xlsx file on disk.
func WriteFile(result *model.Result, path string) error {
	f, err := Build(result)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func addQuotationSheet(f *xlsx.File, quotations []*model.PRRecord) error {
	sheet, err := f.AddSheet(sheetQuotations)
	if err != nil {
		return eris.Wrap(err, "report: add quotation sheet")
	}

	header := sheet.AddRow()
	for _, name := range quotationHeader {
		header.AddCell().Value = name
	}

	for _, q := range quotations {
		row := sheet.AddRow()
		row.AddCell().Value = q.RequisitionID
		row.AddCell().Value = q.MaterialNo
		row.AddCell().Value = q.Description
		row.AddCell().SetFloat(q.Quantity)
		row.AddCell().Value = q.UrgencySignal + " " + string(q.Urgency)
		row.AddCell().SetInt(q.RemainingDays)
		row.AddCell().Value = string(q.ContractClass)
		row.AddCell().Value = string(q.OrderMethod)
		row.AddCell().Value = string(q.ContractMethod)
		row.AddCell().Value = q.ReasonText
		row.AddCell().Value = q.Match.VendorCode
		row.AddCell().Value = q.Match.VendorName
		row.AddCell().Value = string(q.PriceMethod)
		row.AddCell().SetFloat(q.EstimatedTotal)
		row.AddCell().SetFloat(q.QuotedTotal)
		row.AddCell().SetFloatWithFormat(q.ChangeRatePct, "0.00")
		row.AddCell().Value = q.CompSignal + " " + string(q.Competitiveness)
		row.AddCell().Value = string(q.Verdict)
		row.AddCell().Value = string(q.ProcessState)
		row.AddCell().Value = string(q.ApprovalState)
		row.AddCell().SetInt(q.ResponseWindowDays)
		row.AddCell().Value = boolMark(q.TechEvalRequired)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, result *model.Result) error {
	sheet, err := f.AddSheet(sheetSummary)
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	sum := result.Summary
	rows := [][2]string{
		{"실행 ID", result.RunID},
		{"완료 시각", result.CompletedAt.Format("2006-01-02 15:04:05")},
		{"견적대상 합계", fmt.Sprintf("%d", sum.Total)},
		{"긴급", fmt.Sprintf("%d", sum.Urgent)},
		{"보통", fmt.Sprintf("%d", sum.Normal)},
		{"여유", fmt.Sprintf("%d", sum.Flexible)},
		{"자동완료", fmt.Sprintf("%d", sum.AutoComplete)},
		{"검토필요", fmt.Sprintf("%d", sum.NeedsReview)},
		{"필수항목 누락", fmt.Sprintf("%d", len(result.InvalidPRs))},
		{"담당자 통보", fmt.Sprintf("%d", len(result.Notifications))},
		{"외부 가격산정 호출", fmt.Sprintf("%d", sum.LLMCalls)},
		{"소요시간(초)", fmt.Sprintf("%.1f", sum.ElapsedSeconds)},
	}
	for _, method := range []model.PriceMethod{
		model.PriceMethodExactMatch,
		model.PriceMethodGroupAverage,
		model.PriceMethodLLM,
		model.PriceMethodDefault,
	} {
		rows = append(rows, [2]string{
			fmt.Sprintf("산정방식: %s", method),
			fmt.Sprintf("%d", sum.PriceMethods[method]),
		})
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().Value = r[0]
		row.AddCell().Value = r[1]
	}
	return nil
}

func boolMark(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
