package ingest

import "strings"

// FileShape classifies an uploaded workbook by what it carries.
type FileShape string

const (
	ShapePOHistory FileShape = "po_history"
	ShapePRData    FileShape = "pr_data"
	ShapeUnknown   FileShape = "unknown"
)

// Detect decides the shape of a workbook from its filename and header row.
// PZAF order-history exports are named with the PZAF marker; requisition
// exports carry the plant prefix or the literal requisition marker. Any other
// spreadsheet is accepted as PR data only when its header has a
// requisition-id column.
func Detect(filename string, header []string) (FileShape, string) {
	if strings.Contains(filename, "PZAF") {
		return ShapePOHistory, ""
	}

	if strings.Contains(filename, "구매요청") || strings.Contains(filename, "1P0K") || strings.Contains(filename, "1P0M") {
		return ShapePRData, prSource(filename)
	}

	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
		for _, h := range header {
			if strings.TrimSpace(h) == colRequisitionID {
				return ShapePRData, "Generic"
			}
		}
	}

	return ShapeUnknown, ""
}

func prSource(filename string) string {
	switch {
	case strings.Contains(filename, "1P0K02"):
		return "1P0K02"
	case strings.Contains(filename, "1P0M01"):
		return "1P0M01"
	default:
		return "Unknown"
	}
}
