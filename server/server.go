package server

import (
	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/scamlux/smm-league/config"
	"github.com/scamlux/smm-league/internal/audit"
	"github.com/scamlux/smm-league/internal/auth"
	"github.com/scamlux/smm-league/internal/campaigns"
	"github.com/scamlux/smm-league/internal/chat"
	"github.com/scamlux/smm-league/internal/deals"
	"github.com/scamlux/smm-league/misc"
)

type Server struct {
	Cfg *config.Config

	db    *bolt.DB
	auth  *auth.Auth
	audit *audit.Logger

	Campaigns *campaigns.Store
	Deals     *deals.Store
	Chat      *chat.Store

	r *gin.Engine
}

func New(cfg *config.Config, r *gin.Engine) (*Server, error) {
	db := misc.OpenDB(cfg.DBPath, cfg.DBName)
	if err := misc.CreateBuckets(db, 1, cfg.AllBuckets()...); err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range auth.ProfileIndexes {
			if err := misc.InitIndex(tx, name, 1); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	a := auth.New(db, cfg)
	if err := a.BootstrapAdmin(); err != nil {
		return nil, err
	}

	ds := deals.New(cfg, a)
	srv := &Server{
		Cfg:       cfg,
		db:        db,
		auth:      a,
		audit:     audit.New(db, cfg),
		Campaigns: campaigns.New(cfg, a),
		Deals:     ds,
		Chat:      chat.New(cfg, ds),
		r:         r,
	}

	registerValidators()
	srv.initializeRoutes(r)
	return srv, nil
}

func (srv *Server) Run() error {
	return srv.r.Run(srv.Cfg.Host + ":" + srv.Cfg.Port)
}

func (srv *Server) Close() error {
	srv.audit.Close()
	return srv.db.Close()
}

func (srv *Server) initializeRoutes(r *gin.Engine) {
	verify := srv.auth.VerifyUser
	adminOnly := srv.auth.CheckScopes(auth.ScopeMap{})

	ar := r.Group("/auth")
	ar.POST("/register", srv.auth.RegisterHandler)
	ar.POST("/login", srv.auth.LoginHandler)
	ar.GET("/me", verify, srv.auth.MeHandler)

	cr := r.Group("/campaigns")
	cr.GET("", getCampaigns(srv))
	cr.GET("/:id", getCampaign(srv))
	cr.POST("", verify, postCampaign(srv))
	cr.PUT("/:id", verify, putCampaign(srv))
	cr.DELETE("/:id", verify, delCampaign(srv))

	cr.POST("/:id/bids", verify, postBid(srv))
	cr.GET("/:id/bids", verify, getBidsForCampaign(srv))
	cr.POST("/bids/:bidId/accept", verify, acceptBid(srv))
	cr.POST("/bids/:bidId/reject", verify, rejectBid(srv))

	dr := r.Group("/deals", verify)
	dr.GET("", getDeals(srv))
	dr.GET("/:id", getDeal(srv))
	dr.PUT("/:id/status", putDealStatus(srv))
	dr.POST("/:id/content", submitContent(srv))
	dr.POST("/:id/approve", approveDeal(srv))
	dr.POST("/:id/complete", completeDeal(srv))
	dr.POST("/:id/cancel", cancelDeal(srv))

	dr.GET("/:id/messages", getMessages(srv))
	dr.POST("/:id/messages", postMessage(srv))

	adm := r.Group("/admin", verify, adminOnly)
	adm.GET("/users", getAllUsers(srv))
	adm.GET("/users/:id", getUser(srv))
	adm.POST("/users", postUser(srv))
	adm.PUT("/users/:id", putUser(srv))
	adm.DELETE("/users/:id", delUser(srv))
	adm.GET("/actions", getAuditTrail(srv))
}
