package resource

import (
	"sort"
	"time"

	"github.com/Aslhee/MobileCafeServer/pkg/accounting"
	"github.com/Aslhee/MobileCafeServer/pkg/model"
)

type HistoryResource struct {
	ID                 string     `json:"id"`
	MobileID           string     `json:"mobileId"`
	TimeDuration       string     `json:"timeDuration"`
	Amount             string     `json:"amount"`
	Timestamp          string     `json:"timestamp"`
	HasFaceData        bool       `json:"hasFaceData"`
	HasLocationData    bool       `json:"hasLocationData"`
	DeviceUpdateFailed bool       `json:"deviceUpdateFailed,omitempty"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
}

type HistoryListResource struct {
	Members []*HistoryResource `json:"members"`
}

type HistorySummaryResource struct {
	Day         string `json:"day"`
	Records     int    `json:"records"`
	TotalAmount string `json:"totalAmount"`
}

func NewHistoryRecord(m *model.HistoryRecord) (out *HistoryResource) {
	out = &HistoryResource{
		ID:                 m.ID,
		MobileID:           m.MobileID,
		TimeDuration:       m.TimeDuration,
		Amount:             m.Amount,
		Timestamp:          m.Timestamp,
		HasFaceData:        m.HasFaceData,
		HasLocationData:    m.HasLocationData,
		DeviceUpdateFailed: m.DeviceUpdateFailed,
	}

	if !m.CreatedAt.IsZero() {
		out.CreatedAt = &time.Time{}
		*out.CreatedAt = m.CreatedAt.Round(time.Second)
	}

	return // out
}

func NewHistoryList(m map[string]model.HistoryRecord) (out *HistoryListResource) {
	out = &HistoryListResource{
		Members: make([]*HistoryResource, 0),
	}

	for _, elem := range m {
		out.Members = append(out.Members, NewHistoryRecord(&elem))
	}

	// Record IDs sort in creation order
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].ID < out.Members[j].ID
	})

	return // out
}

func NewHistorySummary(s accounting.Summary) *HistorySummaryResource {
	return &HistorySummaryResource{
		Day:         s.Day,
		Records:     s.Records,
		TotalAmount: s.TotalAmount,
	}
}
