package auth

import (
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/misc"
)

var (
	ErrUnauthorized  = misc.Unauthenticated("invalid or missing credentials")
	ErrInvalidCreds  = misc.Unauthenticated("invalid credentials")
	ErrInvalidUserId = misc.NotFound("user not found")
	ErrInvalidEmail  = misc.InvalidInput("invalid email")
	ErrInvalidName   = misc.InvalidInput("invalid name")
	ErrInvalidRole   = misc.InvalidInput("invalid user role")
	ErrShortPass     = misc.InvalidInput("password must be at least 8 characters")
	ErrEmailTaken    = misc.Conflict("user with this email already exists")
)

type Login struct {
	UserId   string `json:"userId"`
	Password string `json:"password"`
}

type User struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Scope  `json:"role"`
	CreatedAt int64  `json:"createdAt,omitempty"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`

	// exactly one of these is set for non-admin users
	Brand      *common.BrandProfile      `json:"brand,omitempty"`
	Influencer *common.InfluencerProfile `json:"influencer,omitempty"`
}

func (u *User) IsAdmin() bool { return u.Role == AdminScope }

func (u *User) Check() error {
	if len(u.Name) < 2 {
		return ErrInvalidName
	}
	if len(u.Email) < 6 /* a@a.ab */ || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Update fills the updatable fields, skipping empties, so a partial patch
// never clears what it omits. Ids, role, email and timestamps are never
// blindly set (email doubles as the login key).
func (u *User) Update(o *User) *User {
	if o.Name != "" {
		u.Name = o.Name
	}
	if u.Brand != nil && o.Brand != nil {
		if o.Brand.CompanyName != "" {
			u.Brand.CompanyName = o.Brand.CompanyName
		}
		if o.Brand.Website != "" {
			u.Brand.Website = o.Brand.Website
		}
	}
	if u.Influencer != nil && o.Influencer != nil {
		if o.Influencer.Category != "" {
			u.Influencer.Category = o.Influencer.Category
		}
		if o.Influencer.Bio != "" {
			u.Influencer.Bio = o.Influencer.Bio
		}
	}
	u.UpdatedAt = time.Now().Unix()
	return u
}

func (u *User) Store(a *Auth, tx *bolt.Tx) error {
	return misc.PutTxJson(tx, a.cfg.Bucket.User, u.Id, u)
}

// CreateUserTx creates the user, its role profile and the login record in the
// caller's transaction; if any write fails the whole registration rolls back.
func (a *Auth) CreateUserTx(tx *bolt.Tx, u *User, password string) (err error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = misc.TrimEmail(u.Email)

	if err = u.Check(); err != nil {
		return
	}
	if len(password) < 8 {
		return ErrShortPass
	}
	if a.GetLoginTx(tx, u.Email) != nil {
		return ErrEmailTaken
	}

	u.CreatedAt = time.Now().Unix()
	u.UpdatedAt = u.CreatedAt

	if password, err = HashPassword(password); err != nil {
		return
	}
	if u.Id, err = misc.GetNextIndex(tx, a.cfg.Bucket.User); err != nil {
		return
	}

	switch u.Role {
	case BrandScope:
		name := u.Name
		website := ""
		if u.Brand != nil {
			if u.Brand.CompanyName != "" {
				name = u.Brand.CompanyName
			}
			website = u.Brand.Website
		}
		u.Brand = &common.BrandProfile{UserId: u.Id, CompanyName: name, Website: website}
		if u.Brand.Id, err = misc.GetNextIndex(tx, brandIndex); err != nil {
			return
		}
		if err = a.SetOwnerTx(tx, BrandItem, u.Brand.Id, u.Id); err != nil {
			return
		}
		u.Influencer = nil
	case InfluencerScope:
		category, bio := "General", ""
		if u.Influencer != nil {
			if u.Influencer.Category != "" {
				category = u.Influencer.Category
			}
			bio = u.Influencer.Bio
		}
		u.Influencer = &common.InfluencerProfile{UserId: u.Id, Category: category, Bio: bio}
		if u.Influencer.Id, err = misc.GetNextIndex(tx, influencerIndex); err != nil {
			return
		}
		if err = a.SetOwnerTx(tx, InfluencerItem, u.Influencer.Id, u.Id); err != nil {
			return
		}
		u.Brand = nil
	default: // admins carry no profile
		u.Brand, u.Influencer = nil, nil
	}

	if err = u.Store(a, tx); err != nil {
		return
	}

	login := &Login{UserId: u.Id, Password: password}
	return misc.PutTxJson(tx, a.cfg.Bucket.Login, u.Email, login)
}

func (a *Auth) DelUserTx(tx *bolt.Tx, userId string) error {
	user := a.GetUserTx(tx, userId)
	if user == nil {
		return ErrInvalidUserId
	}
	if err := misc.DelBucketBytes(tx, a.cfg.Bucket.User, userId); err != nil {
		return err
	}
	if err := misc.DelBucketBytes(tx, a.cfg.Bucket.Login, misc.TrimEmail(user.Email)); err != nil {
		return err
	}
	if user.Brand != nil {
		a.DelOwnerTx(tx, BrandItem, user.Brand.Id)
	}
	if user.Influencer != nil {
		a.DelOwnerTx(tx, InfluencerItem, user.Influencer.Id)
	}
	return nil
}

func (a *Auth) GetUserTx(tx *bolt.Tx, userId string) *User {
	var u User
	if misc.GetTxJson(tx, a.cfg.Bucket.User, userId, &u) == nil && u.Id != "" {
		return &u
	}
	return nil
}

func (a *Auth) GetLoginTx(tx *bolt.Tx, email string) *Login {
	email = misc.TrimEmail(email)

	var l Login
	if misc.GetTxJson(tx, a.cfg.Bucket.Login, email, &l) == nil && l.UserId != "" {
		return &l
	}
	return nil
}

func (a *Auth) GetUserByEmailTx(tx *bolt.Tx, email string) *User {
	if l := a.GetLoginTx(tx, email); l != nil {
		return a.GetUserTx(tx, l.UserId)
	}
	return nil
}
