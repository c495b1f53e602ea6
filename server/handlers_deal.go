package server

import (
	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/misc"
)

///////// Deals /////////

func getDeals(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var status common.DealStatus
		if q := c.Query("status"); q != "" {
			status = common.DealStatus(q)
			if !status.Valid() {
				abortWithErr(c, s, misc.InvalidInput("invalid deal status"))
				return
			}
		}

		u := auth.GetCtxUser(c)
		var list []*common.Deal
		s.db.View(func(tx *bolt.Tx) error {
			list = s.Deals.ListTx(tx, u, status)
			return nil
		})
		c.JSON(200, misc.StatusOKMeta(list, &misc.Meta{Total: len(list)}))
	}
}

func getDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := auth.GetCtxUser(c)
		var (
			deal *common.Deal
			err  error
		)
		s.db.View(func(tx *bolt.Tx) error {
			deal, err = s.Deals.GetAuthorizedTx(tx, c.Param("id"), u)
			return nil
		})
		if err != nil {
			abortWithErr(c, s, err)
			return
		}
		c.JSON(200, misc.StatusOK(deal))
	}
}

// updateDealStatus is shared by the status route and the approve/complete/
// cancel wrappers.
func updateDealStatus(s *Server, c *gin.Context, target common.DealStatus) {
	u := auth.GetCtxUser(c)
	var deal *common.Deal
	if err := s.db.Update(func(tx *bolt.Tx) (err error) {
		deal, err = s.Deals.UpdateStatusTx(tx, c.Param("id"), target, u)
		return
	}); err != nil {
		abortWithErr(c, s, err)
		return
	}

	s.audit.Record(u.Id, "DEAL_STATUS_"+string(target), deal.Id, "Deal", "")
	c.JSON(200, misc.StatusOK(deal))
}

func putDealStatus(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status common.DealStatus `json:"status" binding:"required,dealstatus"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBindErr(c, s, err)
			return
		}
		updateDealStatus(s, c, req.Status)
	}
}

func submitContent(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ContentUrl string `json:"contentUrl"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBindErr(c, s, err)
			return
		}

		u := auth.GetCtxUser(c)
		var deal *common.Deal
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			deal, err = s.Deals.SubmitContentTx(tx, c.Param("id"), req.ContentUrl, u)
			return
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		s.audit.Record(u.Id, "DEAL_CONTENT_SUBMITTED", deal.Id, "Deal", req.ContentUrl)
		c.JSON(200, misc.StatusOK(deal))
	}
}

func approveDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateDealStatus(s, c, common.DealApproved)
	}
}

func completeDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateDealStatus(s, c, common.DealCompleted)
	}
}

func cancelDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateDealStatus(s, c, common.DealCancelled)
	}
}
