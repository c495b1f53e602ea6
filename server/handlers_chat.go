package server

import (
	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/misc"
)

///////// Deal chat /////////

func getMessages(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := auth.GetCtxUser(c)
		var (
			msgs []*common.Message
			err  error
		)
		s.db.View(func(tx *bolt.Tx) error {
			msgs, err = s.Chat.ListMessagesTx(tx, c.Param("id"), u)
			return nil
		})
		if err != nil {
			abortWithErr(c, s, err)
			return
		}
		c.JSON(200, misc.StatusOKMeta(msgs, &misc.Meta{Total: len(msgs)}))
	}
}

func postMessage(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBindErr(c, s, err)
			return
		}

		u := auth.GetCtxUser(c)
		var msg *common.Message
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			msg, err = s.Chat.AddMessageTx(tx, c.Param("id"), u, req.Content)
			return
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}
		c.JSON(200, misc.StatusOK(msg))
	}
}
