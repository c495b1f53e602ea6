package common

import "github.com/shopspring/decimal"

type DealStatus string

const (
	DealActive           DealStatus = "ACTIVE"
	DealContentSubmitted DealStatus = "CONTENT_SUBMITTED"
	DealApproved         DealStatus = "APPROVED"
	DealCompleted        DealStatus = "COMPLETED"
	DealCancelled        DealStatus = "CANCELLED"
)

func (s DealStatus) Valid() bool {
	switch s {
	case DealActive, DealContentSubmitted, DealApproved, DealCompleted, DealCancelled:
		return true
	}
	return false
}

func (s DealStatus) Terminal() bool {
	return s == DealCompleted || s == DealCancelled
}

// dealTransitions is the full (current -> requested) table; anything absent
// is rejected. Cancellation is reachable from every non-terminal state.
var dealTransitions = map[DealStatus][]DealStatus{
	DealActive:           {DealContentSubmitted, DealCancelled},
	DealContentSubmitted: {DealApproved, DealCancelled},
	DealApproved:         {DealCompleted, DealCancelled},
}

func (s DealStatus) CanTransition(to DealStatus) bool {
	for _, next := range dealTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// A deal is the binding agreement formed when a bid is accepted. Do NOT
// confuse this with a Campaign.
type Deal struct {
	Id         string `json:"id"`
	CampaignId string `json:"campaignId"`

	BrandId      string `json:"brandId"`      // brand profile that owns the campaign
	InfluencerId string `json:"influencerId"` // influencer profile the deal is assigned to

	Price      decimal.Decimal `json:"price"` // copied from the accepted bid
	ContentUrl string          `json:"contentUrl,omitempty"`

	Status DealStatus `json:"status"`

	ApprovedAt  int64 `json:"approvedAt,omitempty"`
	CompletedAt int64 `json:"completedAt,omitempty"`
	CreatedAt   int64 `json:"createdAt"`

	// Attached on reads, never persisted with the record
	Campaign *Campaign  `json:"campaign,omitempty"`
	Messages []*Message `json:"messages,omitempty"`
}

func (d *Deal) Detach() *Deal {
	d.Campaign, d.Messages = nil, nil
	return d
}
