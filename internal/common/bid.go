package common

import "github.com/shopspring/decimal"

type BidStatus string

const (
	BidPending  BidStatus = "PENDING"
	BidAccepted BidStatus = "ACCEPTED"
	BidRejected BidStatus = "REJECTED"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidPending, BidAccepted, BidRejected:
		return true
	}
	return false
}

// A bid is an influencer's proposal against a campaign. Once it leaves
// PENDING it is never written again.
type Bid struct {
	Id         string `json:"id"`
	CampaignId string `json:"campaignId"`

	UserId       string `json:"userId"`       // the bidding user
	InfluencerId string `json:"influencerId"` // derived from the bidder, never caller-supplied

	Price        decimal.Decimal `json:"price"`
	Proposal     string          `json:"proposal"`
	DeliveryTime int64           `json:"deliveryTime"` // unix

	Status BidStatus `json:"status"`

	CreatedAt int64 `json:"createdAt"`
}
