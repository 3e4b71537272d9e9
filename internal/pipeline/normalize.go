package pipeline

import (
	"strings"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// Material numbers carry a 4-character ship-number prefix; the lookup key is
// the identifier with that prefix stripped.
const keyPrefixLen = 4

// pzafMarker identifies materials eligible for the quotation sub-pipeline.
const pzafMarker = "PZAF"

// NormalizeKey derives the material lookup key from a raw identifier.
// Identifiers no longer than the prefix pass through unchanged.
func NormalizeKey(materialNo string) string {
	if len(materialNo) > keyPrefixLen {
		return materialNo[keyPrefixLen:]
	}
	return materialNo
}

// ApplyKeys stamps the normalized key (and PZAF flag for requisitions) onto
// every record. Runs before any other stage.
func ApplyKeys(prs []*model.PRRecord, pos []*model.PORecord) {
	for _, r := range prs {
		r.MaterialKey = NormalizeKey(r.MaterialNo)
		r.PZAF = strings.Contains(r.MaterialNo, pzafMarker)
	}
	for _, r := range pos {
		r.MaterialKey = NormalizeKey(r.MaterialNo)
	}
}
