package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidConfig = errors.New("invalid config")

func New(loc string) (*Config, error) {
	var c Config

	f, err := os.Open(loc)
	if err != nil {
		log.Println("Config error", err)
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&c); err != nil {
		log.Println("Config error", err)
		return nil, err
	}

	// secrets and deploy-specific values come from the environment
	if err := env.Parse(&c); err != nil {
		return nil, err
	}

	c.setDefaults()
	if c.JWTSecret == "" {
		return nil, ErrInvalidConfig
	}
	return &c, nil
}

// Sandbox returns a config suitable for tests: temp db path, fixed secret.
func Sandbox(dbPath string) *Config {
	c := &Config{
		DBPath:    dbPath,
		DBName:    "league-test",
		Sandbox:   true,
		JWTSecret: "sandbox-secret",

		AdminEmail: "admin@smm-league.io",
		AdminPass:  "league-admin-pass",
		AdminName:  "League Admin",
	}
	c.setDefaults()
	return c
}

type Config struct {
	Host string `json:"host" env:"LEAGUE_HOST"`
	Port string `json:"port" env:"LEAGUE_PORT"`

	DBPath string `json:"dbPath" env:"LEAGUE_DB_PATH"`
	DBName string `json:"dbName"`

	Sandbox bool `json:"sandbox" env:"LEAGUE_SANDBOX"`

	JWTSecret    string `json:"jwtSecret" env:"LEAGUE_JWT_SECRET"`
	TokenTTLHour int    `json:"tokenTTLHour"`

	// bootstrap admin, created on first start
	AdminEmail string `json:"adminEmail" env:"LEAGUE_ADMIN_EMAIL"`
	AdminPass  string `json:"adminPass" env:"LEAGUE_ADMIN_PASS"`
	AdminName  string `json:"adminName"`

	Bucket struct {
		User      string `json:"user"`
		Login     string `json:"login"`
		Ownership string `json:"ownership"`
		Campaign  string `json:"campaign"`
		Bid       string `json:"bid"`
		Deal      string `json:"deal"`
		Message   string `json:"message"`
		Audit     string `json:"audit"`
	} `json:"bucket"`
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.DBName == "" {
		c.DBName = "league"
	}
	if c.TokenTTLHour <= 0 {
		c.TokenTTLHour = 6
	}
	b := &c.Bucket
	if b.User == "" {
		b.User = "user"
	}
	if b.Login == "" {
		b.Login = "login"
	}
	if b.Ownership == "" {
		b.Ownership = "ownership"
	}
	if b.Campaign == "" {
		b.Campaign = "campaign"
	}
	if b.Bid == "" {
		b.Bid = "bid"
	}
	if b.Deal == "" {
		b.Deal = "deal"
	}
	if b.Message == "" {
		b.Message = "message"
	}
	if b.Audit == "" {
		b.Audit = "audit"
	}
}

func (c *Config) AllBuckets() []string {
	b := &c.Bucket
	return []string{b.User, b.Login, b.Ownership, b.Campaign, b.Bid, b.Deal, b.Message, b.Audit}
}

func (c *Config) TokenAge() time.Duration {
	return time.Duration(c.TokenTTLHour) * time.Hour
}
