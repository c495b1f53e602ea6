// Package policy holds the cross-cutting authorization rules consulted by the
// campaign store, bid engine and deal state machine. Every check is a pure
// function over the caller and the entity so the rules test without a database.
package policy

import (
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/misc"
)

// CanManageCampaign: the owning brand's user, or an admin.
func CanManageCampaign(u *auth.User, cmp *common.Campaign) bool {
	if u == nil || cmp == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return u.Brand != nil && u.Brand.Id == cmp.BrandId
}

// CanViewBids: bids of a campaign are visible to whoever can manage it.
func CanViewBids(u *auth.User, cmp *common.Campaign) bool {
	return CanManageCampaign(u, cmp)
}

func isBrandOwner(u *auth.User, d *common.Deal) bool {
	return u.Brand != nil && u.Brand.Id == d.BrandId
}

func isInfluencerOwner(u *auth.User, d *common.Deal) bool {
	return u.Influencer != nil && u.Influencer.Id == d.InfluencerId
}

// CanAccessDeal: either side of the deal, or an admin.
func CanAccessDeal(u *auth.User, d *common.Deal) bool {
	if u == nil || d == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return isBrandOwner(u, d) || isInfluencerOwner(u, d)
}

// CanTransitionDeal gates a requested deal status change. Role rules: only the
// brand side approves or completes, only the influencer side submits content;
// admins are exempt from the role rules but not from the transition table.
func CanTransitionDeal(u *auth.User, d *common.Deal, target common.DealStatus) error {
	if !CanAccessDeal(u, d) {
		return misc.PermissionDenied("access denied")
	}
	if !u.IsAdmin() {
		switch target {
		case common.DealApproved, common.DealCompleted:
			if !isBrandOwner(u, d) {
				return misc.PermissionDenied("only the brand can approve or complete a deal")
			}
		case common.DealContentSubmitted:
			if !isInfluencerOwner(u, d) {
				return misc.PermissionDenied("only the influencer can submit content")
			}
		}
	}
	if !target.Valid() {
		return misc.InvalidInput("invalid deal status")
	}
	if !d.Status.CanTransition(target) {
		return misc.InvalidState("deal cannot move from " + string(d.Status) + " to " + string(target))
	}
	return nil
}
