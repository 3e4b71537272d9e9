package ingest

import (
	"strconv"
	"strings"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// Column names as exported by the source system. Requisition sheets and
// order-history sheets use different description columns.
const (
	colRequisitionID   = "구매요청"
	colMaterialNo      = "자재번호"
	colDescription     = "내역"
	colRequisitionDate = "구매요청일"
	colRequiredBy      = "PR납기일"
	colLeadTime        = "LEAD_TIME"
	colSourcingGroup   = "소싱그룹"
	colMaterialGroup   = "자재그룹"
	colRequester       = "구매요청자"
	colContractNo      = "단가계약번호"
	colAutoAllocGroup  = "자동배량그룹"
	colCreationType    = "PR생성형태"
	colQuantity        = "요청수량"
	colUnit            = "UOM"

	colPODescription = "자재내역"
	colVendorCode    = "업체코드"
	colVendorName    = "업체명"
	colPOQuantity    = "발주수량"
	colPOAmount      = "발주금액(KRW)-변환"
	colPOWeight      = "발주중량"
	colPOWeightAlt   = "중량"
	colPOTotalWeight = "총중량"
)

// RequiredColumns is the exact ordered set the validator enforces.
var RequiredColumns = []string{
	colRequisitionID,
	colMaterialNo,
	colDescription,
	colRequisitionDate,
	colRequiredBy,
	colLeadTime,
	colSourcingGroup,
	colMaterialGroup,
}

// ToPRRecord maps a sheet row onto a PR record. Numeric cells coerce safely:
// malformed values become zero, never an error.
func ToPRRecord(row Row, source string) *model.PRRecord {
	return &model.PRRecord{
		RequisitionID:   strings.TrimSpace(row[colRequisitionID]),
		MaterialNo:      strings.TrimSpace(row[colMaterialNo]),
		Description:     row[colDescription],
		RequisitionDate: strings.TrimSpace(row[colRequisitionDate]),
		RequiredBy:      strings.TrimSpace(row[colRequiredBy]),
		LeadTimeDays:    CoerceInt(row[colLeadTime]),
		LeadTimeRaw:     row[colLeadTime],
		SourcingGroup:   strings.TrimSpace(row[colSourcingGroup]),
		MaterialGroup:   strings.TrimSpace(row[colMaterialGroup]),
		Requester:       strings.TrimSpace(row[colRequester]),
		ContractNo:      row[colContractNo],
		AutoAllocGroup:  row[colAutoAllocGroup],
		CreationType:    strings.TrimSpace(row[colCreationType]),
		Quantity:        CoerceFloat(row[colQuantity]),
		Unit:            strings.TrimSpace(row[colUnit]),
		DataSource:      source,
	}
}

// ToPORecord maps a sheet row onto a PO history record.
func ToPORecord(row Row) *model.PORecord {
	weight := CoerceFloat(row[colPOWeight])
	if weight == 0 {
		weight = CoerceFloat(row[colPOWeightAlt])
	}
	return &model.PORecord{
		MaterialNo:  strings.TrimSpace(row[colMaterialNo]),
		Description: row[colPODescription],
		VendorCode:  strings.TrimSpace(row[colVendorCode]),
		VendorName:  strings.TrimSpace(row[colVendorName]),
		Quantity:    CoerceFloat(row[colPOQuantity]),
		AmountKRW:   CoerceFloat(row[colPOAmount]),
		Weight:      weight,
		TotalWeight: CoerceFloat(row[colPOTotalWeight]),
	}
}

// CoerceFloat parses a numeric cell, tolerating thousand separators and
// surrounding whitespace. Malformed values coerce to 0.
func CoerceFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// CoerceInt parses an integer cell; malformed values coerce to 0. Decimal
// cells truncate toward zero.
func CoerceInt(s string) int {
	return int(CoerceFloat(s))
}
