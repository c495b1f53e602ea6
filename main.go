package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/scamlux/smm-league/config"
	"github.com/scamlux/smm-league/server"
	"github.com/shopspring/decimal"
)

func main() {
	log.SetFlags(log.Lshortfile)

	// secrets come from the environment; .env is a dev convenience
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	cfg, err := config.New("config/config.json")
	if err != nil {
		log.Fatal(err)
	}
	if !cfg.Sandbox {
		gin.SetMode(gin.ReleaseMode)
	}

	// budgets and prices render as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	r := gin.New()
	r.Use(gin.Recovery(), gin.Logger())

	// Ping test
	r.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	srv, err := server.New(cfg, r)
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	if err = srv.Run(); err != nil {
		// panic rather than fatal so the deferred close still runs
		log.Panicf("Failed to listen: %v", err)
	}
}
