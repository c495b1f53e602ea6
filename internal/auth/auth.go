package auth

import (
	"log"

	"github.com/boltdb/bolt"
	"github.com/scamlux/smm-league/config"
)

type Auth struct {
	db  *bolt.DB
	cfg *config.Config
}

func New(db *bolt.DB, cfg *config.Config) *Auth {
	return &Auth{db: db, cfg: cfg}
}

// SignIn verifies the password and issues a fresh token.
func (a *Auth) SignIn(email, pass string) (u *User, tok string, err error) {
	a.db.View(func(tx *bolt.Tx) error {
		l := a.GetLoginTx(tx, email)
		if l == nil || !CheckPassword(l.Password, pass) {
			err = ErrInvalidCreds
			return nil
		}
		u = a.GetUserTx(tx, l.UserId)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrInvalidCreds // login without user should never happen
	}
	if tok, err = a.SignToken(u); err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// BootstrapAdmin creates the configured admin account on first start.
func (a *Auth) BootstrapAdmin() error {
	if a.cfg.AdminEmail == "" || a.cfg.AdminPass == "" {
		log.Println("admin bootstrap skipped, no credentials configured")
		return nil
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		if a.GetLoginTx(tx, a.cfg.AdminEmail) != nil {
			return nil
		}
		admin := &User{
			Name:  a.cfg.AdminName,
			Email: a.cfg.AdminEmail,
			Role:  AdminScope,
		}
		if err := a.CreateUserTx(tx, admin, a.cfg.AdminPass); err != nil {
			return err
		}
		log.Println("bootstrapped admin user", admin.Id)
		return nil
	})
}
