package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Policy holds the loyalty/trust constants. They mirror the documented
// defaults but are overridable via env so tiers can change without a
// rebuild of the transactional code.
type Policy struct {
	CancelPenaltyPoints int           // points lost on every cancellation
	BlockThreshold      int           // balance below this after a cancel triggers a block
	BlockDuration       time.Duration // how long a triggered block lasts
	RewardTierMin       int           // balance at or above this earns the high reward
	RewardHighPoints    int
	RewardLowPoints     int
}

type Config struct {
	Port          string
	DBDSN         string
	LogFile       string
	AdminEmail    string
	AdminPassword string
	Policy        Policy
}

func Load() Config {
	cfg := Config{
		Port:          envStr("PORT", "8080"),
		DBDSN:         envStr("DB_DSN", "shopcore.db"), // sqlite file in project root
		LogFile:       envStr("LOG_FILE", "./shopcore.log"),
		AdminEmail:    envStr("ADMIN_EMAIL", "admin@shopcore.test"),
		AdminPassword: envStr("ADMIN_PASSWORD", "Adm1n!Pass"),
		Policy: Policy{
			CancelPenaltyPoints: envInt("CANCEL_PENALTY_POINTS", 50),
			BlockThreshold:      envInt("BLOCK_THRESHOLD_POINTS", 50),
			BlockDuration:       time.Duration(envInt("BLOCK_DURATION_DAYS", 30)) * 24 * time.Hour,
			RewardTierMin:       envInt("REWARD_TIER_MIN_POINTS", 100),
			RewardHighPoints:    envInt("REWARD_HIGH_POINTS", 50),
			RewardLowPoints:     envInt("REWARD_LOW_POINTS", 20),
		},
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s penalty=%d threshold=%d block=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile,
		cfg.Policy.CancelPenaltyPoints, cfg.Policy.BlockThreshold, cfg.Policy.BlockDuration)
	return cfg
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] bad %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
