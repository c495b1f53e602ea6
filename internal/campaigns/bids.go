package campaigns

import (
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/internal/policy"
	"github.com/scamlux/smm-league/misc"
	"github.com/shopspring/decimal"
)

var (
	ErrBidNotFound         = misc.NotFound("bid not found")
	ErrCampaignNotOpen     = misc.InvalidState("bids are allowed only for open campaigns")
	ErrNoInfluencerProfile = misc.NotFound("influencer profile not found")
	ErrBidNotPending       = misc.InvalidState("only pending bids can be accepted or rejected")
	ErrDealExists          = misc.Conflict("a deal for this campaign and influencer already exists")
	ErrNotBidOwner         = misc.PermissionDenied("you can only manage bids on your own campaigns")
	ErrNotBidViewer        = misc.PermissionDenied("only the campaign owner can view bids")
)

type BidRequest struct {
	Price        decimal.Decimal `json:"price" binding:"required"`
	Proposal     string          `json:"proposal" binding:"required"`
	DeliveryTime int64           `json:"deliveryTime" binding:"required"`
}

// SubmitBidTx records a PENDING bid against an open campaign. The influencer
// profile id always comes from the bidding user, never from the payload.
func (st *Store) SubmitBidTx(tx *bolt.Tx, u *auth.User, campaignId string, req *BidRequest) (*common.Bid, error) {
	cmp, err := st.GetTx(tx, campaignId)
	if err != nil {
		return nil, err
	}
	if cmp.Status != common.CampaignOpen {
		return nil, ErrCampaignNotOpen
	}
	if u.Influencer == nil {
		return nil, ErrNoInfluencerProfile
	}

	bid := &common.Bid{
		CampaignId:   campaignId,
		UserId:       u.Id,
		InfluencerId: u.Influencer.Id,
		Price:        req.Price,
		Proposal:     req.Proposal,
		DeliveryTime: req.DeliveryTime,
		Status:       common.BidPending,
		CreatedAt:    time.Now().Unix(),
	}
	if bid.Id, err = misc.GetNextIndex(tx, st.cfg.Bucket.Bid); err != nil {
		return nil, err
	}
	if err = misc.PutTxJson(tx, st.cfg.Bucket.Bid, bid.Id, bid); err != nil {
		return nil, err
	}
	return bid, nil
}

func (st *Store) GetBidTx(tx *bolt.Tx, id string) (*common.Bid, error) {
	var bid common.Bid
	if misc.GetTxJson(tx, st.cfg.Bucket.Bid, id, &bid) != nil || bid.Id == "" {
		return nil, ErrBidNotFound
	}
	return &bid, nil
}

// ListBidsTx lists bids, campaign-scoped when a campaign id is given. The
// scoped form checks ownership; the unscoped form deliberately does not, it
// only serves admin/internal callers.
func (st *Store) ListBidsTx(tx *bolt.Tx, campaignId string, requester *auth.User) ([]*common.Bid, error) {
	if campaignId != "" && requester != nil && !requester.IsAdmin() {
		cmp, err := st.GetTx(tx, campaignId)
		if err != nil {
			return nil, err
		}
		if !policy.CanViewBids(requester, cmp) {
			return nil, ErrNotBidViewer
		}
	}
	if campaignId != "" {
		return st.BidsForCampaignTx(tx, campaignId), nil
	}

	out := make([]*common.Bid, 0, 32)
	misc.GetBucket(tx, st.cfg.Bucket.Bid).ForEach(func(k, v []byte) error {
		bid := &common.Bid{}
		if json.Unmarshal(v, bid) == nil {
			out = append(out, bid)
		}
		return nil
	})
	return out, nil
}

// AcceptBidTx performs the three-part acceptance write: mark this bid
// ACCEPTED, reject every other PENDING bid on the campaign, and create the
// deal. The caller's transaction makes it all-or-nothing, and the
// existing-deal check inside the same transaction means a racing second
// acceptance for the pair observes the Conflict.
func (st *Store) AcceptBidTx(tx *bolt.Tx, bidId string, u *auth.User) (*common.Deal, error) {
	bid, err := st.GetBidTx(tx, bidId)
	if err != nil {
		return nil, err
	}
	cmp, err := st.GetTx(tx, bid.CampaignId)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageCampaign(u, cmp) {
		return nil, ErrNotBidOwner
	}
	if bid.Status != common.BidPending {
		return nil, ErrBidNotPending
	}
	for _, d := range st.DealsForCampaignTx(tx, cmp.Id) {
		if d.InfluencerId == bid.InfluencerId {
			return nil, ErrDealExists
		}
	}

	bid.Status = common.BidAccepted
	if err = misc.PutTxJson(tx, st.cfg.Bucket.Bid, bid.Id, bid); err != nil {
		return nil, err
	}

	// mass rejection of the competing bids; already-rejected ones stay put
	for _, sibling := range st.BidsForCampaignTx(tx, cmp.Id) {
		if sibling.Id == bid.Id || sibling.Status != common.BidPending {
			continue
		}
		sibling.Status = common.BidRejected
		if err = misc.PutTxJson(tx, st.cfg.Bucket.Bid, sibling.Id, sibling); err != nil {
			return nil, err
		}
	}

	deal := &common.Deal{
		CampaignId:   cmp.Id,
		BrandId:      cmp.BrandId,
		InfluencerId: bid.InfluencerId,
		Price:        bid.Price,
		Status:       common.DealActive,
		CreatedAt:    time.Now().Unix(),
	}
	if deal.Id, err = misc.GetNextIndex(tx, st.cfg.Bucket.Deal); err != nil {
		return nil, err
	}
	if err = misc.PutTxJson(tx, st.cfg.Bucket.Deal, deal.Id, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (st *Store) RejectBidTx(tx *bolt.Tx, bidId string, u *auth.User) (*common.Bid, error) {
	bid, err := st.GetBidTx(tx, bidId)
	if err != nil {
		return nil, err
	}
	cmp, err := st.GetTx(tx, bid.CampaignId)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageCampaign(u, cmp) {
		return nil, ErrNotBidOwner
	}
	if bid.Status != common.BidPending {
		return nil, ErrBidNotPending
	}

	bid.Status = common.BidRejected
	if err = misc.PutTxJson(tx, st.cfg.Bucket.Bid, bid.Id, bid); err != nil {
		return nil, err
	}
	return bid, nil
}
