package server

import (
	"encoding/json"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/scamlux/smm-league/internal/audit"
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/misc"
)

///////// Admin /////////

func getAllUsers(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		users := make([]*auth.User, 0, 128)
		s.db.View(func(tx *bolt.Tx) error {
			misc.GetBucket(tx, s.Cfg.Bucket.User).ForEach(func(k, v []byte) error {
				u := &auth.User{}
				if json.Unmarshal(v, u) == nil {
					users = append(users, u)
				}
				return nil
			})
			return nil
		})
		c.JSON(200, misc.StatusOKMeta(users, &misc.Meta{Total: len(users)}))
	}
}

func getUser(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u *auth.User
		s.db.View(func(tx *bolt.Tx) error {
			u = s.auth.GetUserTx(tx, c.Param("id"))
			return nil
		})
		if u == nil {
			abortWithErr(c, s, auth.ErrInvalidUserId)
			return
		}
		c.JSON(200, misc.StatusOK(u))
	}
}

func postUser(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string     `json:"email" binding:"required"`
			Password string     `json:"password" binding:"required"`
			Name     string     `json:"name" binding:"required"`
			Role     auth.Scope `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBindErr(c, s, err)
			return
		}

		u := &auth.User{Name: req.Name, Email: req.Email, Role: req.Role}
		if err := s.db.Update(func(tx *bolt.Tx) error {
			return s.auth.CreateUserTx(tx, u, req.Password)
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		admin := auth.GetCtxUser(c)
		s.audit.Record(admin.Id, "CREATE_USER", u.Id, "User", string(u.Role))
		c.JSON(200, misc.StatusOK(u))
	}
}

func putUser(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		// email is keyed into the login bucket and cannot be patched here
		var patch struct {
			Name        string `json:"name"`
			CompanyName string `json:"companyName"`
			Website     string `json:"website"`
			Category    string `json:"category"`
			Bio         string `json:"bio"`
		}
		if err := misc.BindJSONStrict(c, &patch); err != nil {
			abortBindErr(c, s, err)
			return
		}

		var u *auth.User
		if err := s.db.Update(func(tx *bolt.Tx) error {
			if u = s.auth.GetUserTx(tx, c.Param("id")); u == nil {
				return auth.ErrInvalidUserId
			}
			u.Update(&auth.User{
				Name:       patch.Name,
				Brand:      &common.BrandProfile{CompanyName: patch.CompanyName, Website: patch.Website},
				Influencer: &common.InfluencerProfile{Category: patch.Category, Bio: patch.Bio},
			})
			return u.Store(s.auth, tx)
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		admin := auth.GetCtxUser(c)
		s.audit.Record(admin.Id, "UPDATE_USER", u.Id, "User", "")
		c.JSON(200, misc.StatusOK(u))
	}
}

func delUser(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			return s.auth.DelUserTx(tx, id)
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		admin := auth.GetCtxUser(c)
		s.audit.Record(admin.Id, "DELETE_USER", id, "User", "")
		c.JSON(200, misc.StatusOK(id))
	}
}

func getAuditTrail(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var actions []*audit.Action
		s.db.View(func(tx *bolt.Tx) error {
			actions = s.audit.ListTx(tx)
			return nil
		})
		c.JSON(200, misc.StatusOKMeta(actions, &misc.Meta{Total: len(actions)}))
	}
}
