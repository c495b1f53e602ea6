package auth

import (
	"github.com/boltdb/bolt"
	"github.com/scamlux/smm-league/misc"
)

type ItemType string

// profile ownership records, profile id -> user id
const (
	BrandItem      ItemType = "brand"
	InfluencerItem ItemType = "influencer"
)

// index bucket names for profile ids
const (
	brandIndex      = "brandProfile"
	influencerIndex = "influencerProfile"
)

// ProfileIndexes lists the extra index entries CreateBuckets must seed.
var ProfileIndexes = []string{brandIndex, influencerIndex}

func getOwnersKey(itemType ItemType, itemId string) []byte {
	return []byte(string(itemType) + ":" + itemId)
}

func (a *Auth) SetOwnerTx(tx *bolt.Tx, itemType ItemType, itemId, userId string) error {
	b := misc.GetBucket(tx, a.cfg.Bucket.Ownership)
	return b.Put(getOwnersKey(itemType, itemId), []byte(userId))
}

func (a *Auth) GetOwnerTx(tx *bolt.Tx, itemType ItemType, itemId string) string {
	b := misc.GetBucket(tx, a.cfg.Bucket.Ownership)
	return string(b.Get(getOwnersKey(itemType, itemId)))
}

func (a *Auth) DelOwnerTx(tx *bolt.Tx, itemType ItemType, itemId string) error {
	b := misc.GetBucket(tx, a.cfg.Bucket.Ownership)
	return b.Delete(getOwnersKey(itemType, itemId))
}

// GetUserByBrandTx resolves a brand profile id back to its user.
func (a *Auth) GetUserByBrandTx(tx *bolt.Tx, brandId string) *User {
	if uid := a.GetOwnerTx(tx, BrandItem, brandId); uid != "" {
		return a.GetUserTx(tx, uid)
	}
	return nil
}

// GetUserByInfluencerTx resolves an influencer profile id back to its user.
func (a *Auth) GetUserByInfluencerTx(tx *bolt.Tx, influencerId string) *User {
	if uid := a.GetOwnerTx(tx, InfluencerItem, influencerId); uid != "" {
		return a.GetUserTx(tx, uid)
	}
	return nil
}
