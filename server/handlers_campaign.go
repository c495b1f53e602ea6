package server

import (
	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/campaigns"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/misc"
)

///////// Campaigns /////////

func postCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req campaigns.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBindErr(c, s, err)
			return
		}

		u := auth.GetCtxUser(c)
		var cmp *common.Campaign
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			cmp, err = s.Campaigns.CreateTx(tx, u, &req)
			return
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		s.audit.Record(u.Id, "CREATE_CAMPAIGN", cmp.Id, "Campaign", cmp.Title)
		c.JSON(200, misc.StatusOK(cmp))
	}
}

func getCampaigns(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := campaigns.ListFilter{BrandId: c.Query("brandId")}
		if status := c.Query("status"); status != "" {
			f.Status = common.CampaignStatus(status)
			if !f.Status.Valid() {
				abortWithErr(c, s, misc.InvalidInput("unknown campaign status"))
				return
			}
		}

		var list []*common.Campaign
		s.db.View(func(tx *bolt.Tx) error {
			list = s.Campaigns.ListTx(tx, f)
			return nil
		})
		c.JSON(200, misc.StatusOKMeta(list, &misc.Meta{Total: len(list)}))
	}
}

func getCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			cmp *common.Campaign
			err error
		)
		s.db.View(func(tx *bolt.Tx) error {
			cmp, err = s.Campaigns.GetDetailTx(tx, c.Param("id"))
			return nil
		})
		if err != nil {
			abortWithErr(c, s, err)
			return
		}
		c.JSON(200, misc.StatusOK(cmp))
	}
}

func putCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch campaigns.Patch
		if err := misc.BindJSONStrict(c, &patch); err != nil {
			abortBindErr(c, s, err)
			return
		}

		u := auth.GetCtxUser(c)
		var cmp *common.Campaign
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			cmp, err = s.Campaigns.UpdateTx(tx, c.Param("id"), &patch, u)
			return
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		s.audit.Record(u.Id, "UPDATE_CAMPAIGN", cmp.Id, "Campaign", "")
		c.JSON(200, misc.StatusOK(cmp))
	}
}

func delCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := auth.GetCtxUser(c)
		id := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			return s.Campaigns.DeleteTx(tx, id, u)
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		s.audit.Record(u.Id, "DELETE_CAMPAIGN", id, "Campaign", "")
		c.JSON(200, misc.StatusOK(id))
	}
}

///////// Bids /////////

func postBid(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req campaigns.BidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBindErr(c, s, err)
			return
		}
		if !req.Price.IsPositive() {
			abortWithErr(c, s, misc.InvalidInput("price must be positive"))
			return
		}

		u := auth.GetCtxUser(c)
		var bid *common.Bid
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			bid, err = s.Campaigns.SubmitBidTx(tx, u, c.Param("id"), &req)
			return
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}
		c.JSON(200, misc.StatusOK(bid))
	}
}

func getBidsForCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := auth.GetCtxUser(c)
		var (
			bids []*common.Bid
			err  error
		)
		s.db.View(func(tx *bolt.Tx) error {
			bids, err = s.Campaigns.ListBidsTx(tx, c.Param("id"), u)
			return nil
		})
		if err != nil {
			abortWithErr(c, s, err)
			return
		}
		c.JSON(200, misc.StatusOKMeta(bids, &misc.Meta{Total: len(bids)}))
	}
}

func acceptBid(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := auth.GetCtxUser(c)
		var deal *common.Deal
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			deal, err = s.Campaigns.AcceptBidTx(tx, c.Param("bidId"), u)
			return
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		s.audit.Record(u.Id, "ACCEPT_BID", c.Param("bidId"), "Bid", "deal "+deal.Id)
		c.JSON(200, misc.StatusOK(deal))
	}
}

func rejectBid(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := auth.GetCtxUser(c)
		var bid *common.Bid
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			bid, err = s.Campaigns.RejectBidTx(tx, c.Param("bidId"), u)
			return
		}); err != nil {
			abortWithErr(c, s, err)
			return
		}

		s.audit.Record(u.Id, "REJECT_BID", bid.Id, "Bid", "")
		c.JSON(200, misc.StatusOK(bid))
	}
}
