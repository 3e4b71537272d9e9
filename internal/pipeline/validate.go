package pipeline

import (
	"strings"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// requiredFields is the fixed ordered set of fields a requisition must carry.
// Names match the source sheet columns so the missing-field notification
// reads the way requesters expect.
var requiredFields = []struct {
	name  string
	value func(*model.PRRecord) string
}{
	{"구매요청", func(r *model.PRRecord) string { return r.RequisitionID }},
	{"자재번호", func(r *model.PRRecord) string { return r.MaterialNo }},
	{"내역", func(r *model.PRRecord) string { return r.Description }},
	{"구매요청일", func(r *model.PRRecord) string { return r.RequisitionDate }},
	{"PR납기일", func(r *model.PRRecord) string { return r.RequiredBy }},
	{"LEAD_TIME", func(r *model.PRRecord) string { return r.LeadTimeRaw }},
	{"소싱그룹", func(r *model.PRRecord) string { return r.SourcingGroup }},
	{"자재그룹", func(r *model.PRRecord) string { return r.MaterialGroup }},
}

// Validate checks one record against the required-field set and returns the
// missing field names in declaration order. Pure; order-independent across
// records.
func Validate(rec *model.PRRecord) []string {
	var missing []string
	for _, f := range requiredFields {
		if strings.TrimSpace(f.value(rec)) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// PartitionValid annotates every record with its validation verdict and
// splits the set into valid and invalid subsets.
func PartitionValid(recs []*model.PRRecord) (valid, invalid []*model.PRRecord) {
	for _, rec := range recs {
		missing := Validate(rec)
		if len(missing) > 0 {
			rec.Valid = false
			rec.MissingFields = strings.Join(missing, ", ")
			invalid = append(invalid, rec)
			continue
		}
		rec.Valid = true
		rec.MissingFields = ""
		valid = append(valid, rec)
	}
	return valid, invalid
}
