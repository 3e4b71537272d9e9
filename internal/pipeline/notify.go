package pipeline

import (
	"fmt"
	"time"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// fallbackRequester receives notifications for records with no requester.
const fallbackRequester = "담당자미지정"

// BuildNotifications groups invalid requisitions by requester and queues one
// notification per requester. Grouping preserves first-seen requester order
// so repeated runs emit an identical log.
func BuildNotifications(invalid []*model.PRRecord, now time.Time) []model.NotificationEntry {
	grouped := make(map[string][]*model.PRRecord)
	var order []string

	for _, rec := range invalid {
		requester := rec.Requester
		if requester == "" {
			requester = fallbackRequester
		}
		if _, seen := grouped[requester]; !seen {
			order = append(order, requester)
		}
		grouped[requester] = append(grouped[requester], rec)
	}

	entries := make([]model.NotificationEntry, 0, len(order))
	for _, requester := range order {
		recs := grouped[requester]
		items := make([]model.NotificationItem, 0, len(recs))
		for _, r := range recs {
			items = append(items, model.NotificationItem{
				RequisitionID: r.RequisitionID,
				MaterialNo:    r.MaterialNo,
				Missing:       r.MissingFields,
			})
		}
		entries = append(entries, model.NotificationEntry{
			Timestamp: now,
			Recipient: requester,
			Email:     fmt.Sprintf("%s@company.com", requester),
			Subject:   fmt.Sprintf("[PR 필수항목 누락] %d건 정보 업데이트 요청", len(recs)),
			PRCount:   len(recs),
			Items:     items,
			Status:    "queued",
		})
	}

	return entries
}
