// Package chat is the per-deal message thread: append-only, visible to the
// two deal participants and admins.
package chat

import (
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"github.com/scamlux/smm-league/config"
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/internal/deals"
	"github.com/scamlux/smm-league/internal/policy"
	"github.com/scamlux/smm-league/misc"
)

var ErrEmptyMessage = misc.InvalidInput("message content is required")

type Store struct {
	cfg   *config.Config
	deals *deals.Store
}

func New(cfg *config.Config, ds *deals.Store) *Store {
	return &Store{cfg: cfg, deals: ds}
}

func (st *Store) ensureAccessTx(tx *bolt.Tx, dealId string, u *auth.User) (*common.Deal, error) {
	d, err := st.deals.GetTx(tx, dealId)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessDeal(u, d) {
		return nil, deals.ErrAccessDenied
	}
	return d, nil
}

func (st *Store) AddMessageTx(tx *bolt.Tx, dealId string, u *auth.User, content string) (*common.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := st.ensureAccessTx(tx, dealId, u); err != nil {
		return nil, err
	}

	m := &common.Message{
		DealId:    dealId,
		SenderId:  u.Id,
		Content:   content,
		CreatedAt: time.Now().Unix(),
	}
	var err error
	if m.Id, err = misc.GetNextIndex(tx, st.cfg.Bucket.Message); err != nil {
		return nil, err
	}
	if err = misc.PutTxJson(tx, st.cfg.Bucket.Message, m.Id, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (st *Store) ListMessagesTx(tx *bolt.Tx, dealId string, u *auth.User) ([]*common.Message, error) {
	if _, err := st.ensureAccessTx(tx, dealId, u); err != nil {
		return nil, err
	}
	return st.deals.MessagesTx(tx, dealId), nil
}
