package auth

import (
	"strings"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/misc"
)

func GetCtxUser(c *gin.Context) *User {
	if v, ok := c.Get(gin.AuthUserKey); ok {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// VerifyUser resolves the bearer token to a stored user and puts it in the
// request context.
func (a *Auth) VerifyUser(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		misc.AbortWithErr(c, ErrUnauthorized, a.cfg.Sandbox)
		return
	}
	claims, err := a.VerifyToken(raw)
	if err != nil {
		misc.AbortWithErr(c, ErrUnauthorized, a.cfg.Sandbox)
		return
	}

	var user *User
	a.db.View(func(tx *bolt.Tx) error {
		user = a.GetUserTx(tx, claims.Subject)
		return nil
	})
	if user == nil {
		misc.AbortWithErr(c, ErrUnauthorized, a.cfg.Sandbox)
		return
	}
	c.Set(gin.AuthUserKey, user)
}

// CheckScopes returns a gin handler that checks user access against the
// provided ScopeMap.
func (a *Auth) CheckScopes(sm ScopeMap) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := GetCtxUser(c); u != nil && sm.HasAccess(u.Role, c.Request.Method) {
			return
		}
		misc.AbortWithErr(c, misc.PermissionDenied("access denied"), a.cfg.Sandbox)
	}
}

type registerReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     Scope  `json:"role" binding:"required"`

	// optional role profile details
	CompanyName string `json:"companyName"`
	Website     string `json:"website"`
	Category    string `json:"category"`
	Bio         string `json:"bio"`
}

func (a *Auth) RegisterHandler(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		misc.AbortWithErr(c, misc.InvalidInput("malformed request body"), a.cfg.Sandbox)
		return
	}
	if !req.Role.IsOneOf(BrandScope, InfluencerScope) {
		misc.AbortWithErr(c, ErrInvalidRole, a.cfg.Sandbox)
		return
	}

	u := &User{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	switch req.Role {
	case BrandScope:
		u.Brand = &common.BrandProfile{CompanyName: req.CompanyName, Website: req.Website}
	case InfluencerScope:
		u.Influencer = &common.InfluencerProfile{Category: req.Category, Bio: req.Bio}
	}

	if err := a.db.Update(func(tx *bolt.Tx) error {
		return a.CreateUserTx(tx, u, req.Password)
	}); err != nil {
		misc.AbortWithErr(c, err, a.cfg.Sandbox)
		return
	}

	tok, err := a.SignToken(u)
	if err != nil {
		misc.AbortWithErr(c, err, a.cfg.Sandbox)
		return
	}
	c.JSON(200, misc.StatusOK(gin.H{"user": u, "token": tok}))
}

func (a *Auth) LoginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		misc.AbortWithErr(c, misc.InvalidInput("malformed request body"), a.cfg.Sandbox)
		return
	}
	u, tok, err := a.SignIn(req.Email, req.Password)
	if err != nil {
		misc.AbortWithErr(c, err, a.cfg.Sandbox)
		return
	}
	c.JSON(200, misc.StatusOK(gin.H{"user": u, "token": tok}))
}

func (a *Auth) MeHandler(c *gin.Context) {
	c.JSON(200, misc.StatusOK(GetCtxUser(c)))
}
