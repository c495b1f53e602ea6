package common

import "github.com/shopspring/decimal"

type CampaignStatus string

const (
	CampaignOpen       CampaignStatus = "OPEN"
	CampaignInProgress CampaignStatus = "IN_PROGRESS"
	CampaignCompleted  CampaignStatus = "COMPLETED"
	CampaignCancelled  CampaignStatus = "CANCELLED"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignOpen, CampaignInProgress, CampaignCompleted, CampaignCancelled:
		return true
	}
	return false
}

type Campaign struct {
	Id      string `json:"id"`
	BrandId string `json:"brandId"`

	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Budget       decimal.Decimal `json:"budget"`
	Platform     Platform        `json:"platform"`
	Deadline     int64           `json:"deadline"` // unix, only checked at creation
	Requirements string          `json:"requirements,omitempty"`

	Status CampaignStatus `json:"status"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`

	// Attached on reads, never persisted with the record
	Brand *BrandProfile `json:"brand,omitempty"`
	Bids  []*Bid        `json:"bids,omitempty"`
	Deals []*Deal       `json:"deals,omitempty"`
}

// Detach drops the read-time attachments before the record is written back.
func (cmp *Campaign) Detach() *Campaign {
	cmp.Brand, cmp.Bids, cmp.Deals = nil, nil, nil
	return cmp
}
