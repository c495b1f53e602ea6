// Package campaigns owns campaign records and the bids made against them.
// All mutations run inside the caller's bolt transaction so multi-record
// invariants commit or roll back as one unit.
package campaigns

import (
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/scamlux/smm-league/config"
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/internal/policy"
	"github.com/scamlux/smm-league/misc"
	"github.com/shopspring/decimal"
)

var (
	ErrCampaignNotFound = misc.NotFound("campaign not found")
	ErrBrandsOnly       = misc.PermissionDenied("only brands can create campaigns")
	ErrNoBrandProfile   = misc.NotFound("brand profile not found")
	ErrNotCampaignOwner = misc.PermissionDenied("you can only manage your own campaigns")
)

type Store struct {
	cfg  *config.Config
	auth *auth.Auth
}

func New(cfg *config.Config, a *auth.Auth) *Store {
	return &Store{cfg: cfg, auth: a}
}

type CreateRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	Budget       decimal.Decimal `json:"budget" binding:"required"`
	Platform     common.Platform `json:"platform" binding:"required,platform"`
	Deadline     int64           `json:"deadline" binding:"required"`
	Requirements string          `json:"requirements"`

	// admins may create on behalf of a brand
	BrandId string `json:"brandId"`
}

func (st *Store) CreateTx(tx *bolt.Tx, u *auth.User, req *CreateRequest) (*common.Campaign, error) {
	if !u.Role.IsOneOf(auth.BrandScope, auth.AdminScope) {
		return nil, ErrBrandsOnly
	}

	var brandId string
	if u.IsAdmin() {
		if req.BrandId == "" {
			return nil, misc.InvalidInput("brandId is required for admin-created campaigns")
		}
		if st.auth.GetUserByBrandTx(tx, req.BrandId) == nil {
			return nil, ErrNoBrandProfile
		}
		brandId = req.BrandId
	} else {
		if u.Brand == nil {
			return nil, ErrNoBrandProfile
		}
		brandId = u.Brand.Id
	}

	if !req.Budget.IsPositive() {
		return nil, misc.InvalidInput("budget must be positive")
	}
	if !req.Platform.Valid() {
		return nil, misc.InvalidInput("unknown platform")
	}
	// deadline is only validated here, never on later updates
	if req.Deadline <= time.Now().Unix() {
		return nil, misc.InvalidInput("deadline must be in the future")
	}

	now := time.Now().Unix()
	cmp := &common.Campaign{
		BrandId:      brandId,
		Title:        req.Title,
		Description:  req.Description,
		Budget:       req.Budget,
		Platform:     req.Platform,
		Deadline:     req.Deadline,
		Requirements: req.Requirements,
		Status:       common.CampaignOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var err error
	if cmp.Id, err = misc.GetNextIndex(tx, st.cfg.Bucket.Campaign); err != nil {
		return nil, err
	}
	if err = misc.PutTxJson(tx, st.cfg.Bucket.Campaign, cmp.Id, cmp); err != nil {
		return nil, err
	}
	return cmp, nil
}

func (st *Store) GetTx(tx *bolt.Tx, id string) (*common.Campaign, error) {
	var cmp common.Campaign
	if misc.GetTxJson(tx, st.cfg.Bucket.Campaign, id, &cmp) != nil || cmp.Id == "" {
		return nil, ErrCampaignNotFound
	}
	return &cmp, nil
}

// GetDetailTx returns the campaign with its brand, bids and deals attached.
func (st *Store) GetDetailTx(tx *bolt.Tx, id string) (*common.Campaign, error) {
	cmp, err := st.GetTx(tx, id)
	if err != nil {
		return nil, err
	}
	st.attachTx(tx, cmp, true)
	return cmp, nil
}

type ListFilter struct {
	BrandId string
	Status  common.CampaignStatus
}

// ListTx returns matching campaigns, newest first, each with brand and bids
// attached.
func (st *Store) ListTx(tx *bolt.Tx, f ListFilter) []*common.Campaign {
	out := make([]*common.Campaign, 0, 32)
	misc.GetBucket(tx, st.cfg.Bucket.Campaign).ForEach(func(k, v []byte) error {
		cmp := &common.Campaign{}
		if err := json.Unmarshal(v, cmp); err != nil {
			log.Println("error when unmarshalling campaign", string(k))
			return nil
		}
		if f.BrandId != "" && cmp.BrandId != f.BrandId {
			return nil
		}
		if f.Status != "" && cmp.Status != f.Status {
			return nil
		}
		out = append(out, cmp)
		return nil
	})
	for _, cmp := range out {
		st.attachTx(tx, cmp, false)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return misc.IdAfter(out[i].Id, out[j].Id)
	})
	return out
}

type Patch struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Budget       *decimal.Decimal `json:"budget"`
	Platform     *common.Platform `json:"platform"`
	Deadline     *int64           `json:"deadline"`
	Requirements *string          `json:"requirements"`

	// status override is free-form here; deals have the real state machine
	Status *common.CampaignStatus `json:"status"`
}

func (st *Store) UpdateTx(tx *bolt.Tx, id string, p *Patch, u *auth.User) (*common.Campaign, error) {
	cmp, err := st.GetTx(tx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageCampaign(u, cmp) {
		return nil, ErrNotCampaignOwner
	}

	if p.Title != nil {
		cmp.Title = *p.Title
	}
	if p.Description != nil {
		cmp.Description = *p.Description
	}
	if p.Budget != nil {
		if !p.Budget.IsPositive() {
			return nil, misc.InvalidInput("budget must be positive")
		}
		cmp.Budget = *p.Budget
	}
	if p.Platform != nil {
		if !p.Platform.Valid() {
			return nil, misc.InvalidInput("unknown platform")
		}
		cmp.Platform = *p.Platform
	}
	if p.Deadline != nil {
		cmp.Deadline = *p.Deadline
	}
	if p.Requirements != nil {
		cmp.Requirements = *p.Requirements
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, misc.InvalidInput("unknown campaign status")
		}
		cmp.Status = *p.Status
	}
	cmp.UpdatedAt = time.Now().Unix()

	if err = misc.PutTxJson(tx, st.cfg.Bucket.Campaign, cmp.Id, cmp.Detach()); err != nil {
		return nil, err
	}
	st.attachTx(tx, cmp, true)
	return cmp, nil
}

// DeleteTx removes the campaign and cascades to its bids, deals and the
// deals' messages.
func (st *Store) DeleteTx(tx *bolt.Tx, id string, u *auth.User) error {
	cmp, err := st.GetTx(tx, id)
	if err != nil {
		return err
	}
	if !policy.CanManageCampaign(u, cmp) {
		return ErrNotCampaignOwner
	}

	for _, bid := range st.BidsForCampaignTx(tx, id) {
		if err := misc.DelBucketBytes(tx, st.cfg.Bucket.Bid, bid.Id); err != nil {
			return err
		}
	}
	for _, d := range st.DealsForCampaignTx(tx, id) {
		if err := st.deleteDealMessagesTx(tx, d.Id); err != nil {
			return err
		}
		if err := misc.DelBucketBytes(tx, st.cfg.Bucket.Deal, d.Id); err != nil {
			return err
		}
	}
	return misc.DelBucketBytes(tx, st.cfg.Bucket.Campaign, id)
}

func (st *Store) deleteDealMessagesTx(tx *bolt.Tx, dealId string) error {
	b := misc.GetBucket(tx, st.cfg.Bucket.Message)
	var stale [][]byte
	b.ForEach(func(k, v []byte) error {
		var m common.Message
		if json.Unmarshal(v, &m) == nil && m.DealId == dealId {
			stale = append(stale, append([]byte(nil), k...))
		}
		return nil
	})
	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (st *Store) BidsForCampaignTx(tx *bolt.Tx, campaignId string) []*common.Bid {
	out := make([]*common.Bid, 0, 8)
	misc.GetBucket(tx, st.cfg.Bucket.Bid).ForEach(func(k, v []byte) error {
		bid := &common.Bid{}
		if json.Unmarshal(v, bid) == nil && bid.CampaignId == campaignId {
			out = append(out, bid)
		}
		return nil
	})
	return out
}

func (st *Store) DealsForCampaignTx(tx *bolt.Tx, campaignId string) []*common.Deal {
	out := make([]*common.Deal, 0, 4)
	misc.GetBucket(tx, st.cfg.Bucket.Deal).ForEach(func(k, v []byte) error {
		d := &common.Deal{}
		if json.Unmarshal(v, d) == nil && d.CampaignId == campaignId {
			out = append(out, d)
		}
		return nil
	})
	return out
}

func (st *Store) attachTx(tx *bolt.Tx, cmp *common.Campaign, withDeals bool) {
	if owner := st.auth.GetUserByBrandTx(tx, cmp.BrandId); owner != nil {
		cmp.Brand = owner.Brand
	}
	cmp.Bids = st.BidsForCampaignTx(tx, cmp.Id)
	if withDeals {
		cmp.Deals = st.DealsForCampaignTx(tx, cmp.Id)
	}
}
