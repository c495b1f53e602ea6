// Package deals is the state machine for the agreement formed when a bid is
// accepted: ACTIVE -> CONTENT_SUBMITTED -> APPROVED -> COMPLETED, with
// CANCELLED reachable from any non-terminal state.
package deals

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
)

var (
	ErrDealNotFound  = misc.NotFound("deal not found")
	ErrAccessDenied  = misc.PermissionDenied("access denied")
	ErrNoContentUrl  = misc.InvalidInput("contentUrl is required")
	ErrUnknownStatus = misc.InvalidInput("invalid deal status")
)

type Store struct {
	cfg  *config.Config
	auth *auth.Auth
}

func New(cfg *config.Config, a *auth.Auth) *Store {
	return &Store{cfg: cfg, auth: a}
}

func (st *Store) GetTx(tx *bolt.Tx, id string) (*common.Deal, error) {
	var d common.Deal
	if misc.GetTxJson(tx, st.cfg.Bucket.Deal, id, &d) != nil || d.Id == "" {
		return nil, ErrDealNotFound
	}
	return &d, nil
}

// GetAuthorizedTx loads the deal and enforces the participant check, with the
// campaign and the chat thread attached.
func (st *Store) GetAuthorizedTx(tx *bolt.Tx, id string, u *auth.User) (*common.Deal, error) {
	d, err := st.GetTx(tx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessDeal(u, d) {
		return nil, ErrAccessDenied
	}
	st.attachTx(tx, d)
	return d, nil
}

// ListTx returns the deals the caller participates in, newest first. Admins
// see everything; a caller with neither profile gets an empty slice, not an
// error.
func (st *Store) ListTx(tx *bolt.Tx, u *auth.User, status common.DealStatus) []*common.Deal {
	out := make([]*common.Deal, 0, 16)
	misc.GetBucket(tx, st.cfg.Bucket.Deal).ForEach(func(k, v []byte) error {
		d := &common.Deal{}
		if err := json.Unmarshal(v, d); err != nil {
			log.Println("error when unmarshalling deal", string(k))
			return nil
		}
		if !policy.CanAccessDeal(u, d) {
			return nil
		}
		if status != "" && d.Status != status {
			return nil
		}
		out = append(out, d)
		return nil
	})
	for _, d := range out {
		st.attachTx(tx, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return misc.IdAfter(out[i].Id, out[j].Id)
	})
	return out
}

// UpdateStatusTx advances the deal. Authorization and the transition table
// are both consulted; APPROVED and COMPLETED stamp their timestamps.
func (st *Store) UpdateStatusTx(tx *bolt.Tx, id string, target common.DealStatus, u *auth.User) (*common.Deal, error) {
	d, err := st.GetTx(tx, id)
	if err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, ErrUnknownStatus
	}
	if err = policy.CanTransitionDeal(u, d, target); err != nil {
		return nil, err
	}

	d.Status = target
	now := time.Now().Unix()
	switch target {
	case common.DealApproved:
		d.ApprovedAt = now
	case common.DealCompleted:
		d.CompletedAt = now
	}

	if err = misc.PutTxJson(tx, st.cfg.Bucket.Deal, d.Id, d.Detach()); err != nil {
		return nil, err
	}
	st.attachTx(tx, d)
	return d, nil
}

// SubmitContentTx moves the deal to CONTENT_SUBMITTED and stores the url.
// Both writes share the caller's transaction, so the deal can never end up
// CONTENT_SUBMITTED without its contentUrl.
func (st *Store) SubmitContentTx(tx *bolt.Tx, id, contentUrl string, u *auth.User) (*common.Deal, error) {
	if contentUrl == "" {
		return nil, ErrNoContentUrl
	}
	d, err := st.UpdateStatusTx(tx, id, common.DealContentSubmitted, u)
	if err != nil {
		return nil, err
	}
	d.ContentUrl = contentUrl
	if err = misc.PutTxJson(tx, st.cfg.Bucket.Deal, d.Id, d.Detach()); err != nil {
		return nil, err
	}
	st.attachTx(tx, d)
	return d, nil
}

func (st *Store) ApproveTx(tx *bolt.Tx, id string, u *auth.User) (*common.Deal, error) {
	return st.UpdateStatusTx(tx, id, common.DealApproved, u)
}

func (st *Store) CompleteTx(tx *bolt.Tx, id string, u *auth.User) (*common.Deal, error) {
	return st.UpdateStatusTx(tx, id, common.DealCompleted, u)
}

func (st *Store) CancelTx(tx *bolt.Tx, id string, u *auth.User) (*common.Deal, error) {
	return st.UpdateStatusTx(tx, id, common.DealCancelled, u)
}

// MessagesTx returns the deal's chat thread ordered oldest first.
func (st *Store) MessagesTx(tx *bolt.Tx, dealId string) []*common.Message {
	out := make([]*common.Message, 0, 8)
	misc.GetBucket(tx, st.cfg.Bucket.Message).ForEach(func(k, v []byte) error {
		m := &common.Message{}
		if json.Unmarshal(v, m) == nil && m.DealId == dealId {
			out = append(out, m)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return misc.IdAfter(out[j].Id, out[i].Id)
	})
	return out
}

func (st *Store) attachTx(tx *bolt.Tx, d *common.Deal) {
	var cmp common.Campaign
	if misc.GetTxJson(tx, st.cfg.Bucket.Campaign, d.CampaignId, &cmp) == nil && cmp.Id != "" {
		d.Campaign = &cmp
	}
	d.Messages = st.MessagesTx(tx, d.Id)
}
