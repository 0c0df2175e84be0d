package services

import (
	"time"

	"shopcore/internal/config"
	"shopcore/internal/domain"
)

// LoyaltyPolicy computes loyalty deltas and block decisions. Pure: it never
// touches storage, so the order service can call it from inside its
// transactions and tiers can change without touching transactional code.
type LoyaltyPolicy struct {
	cfg config.Policy
}

func NewLoyaltyPolicy(cfg config.Policy) LoyaltyPolicy {
	return LoyaltyPolicy{cfg: cfg}
}

// CancellationPenalty returns the (negative) point delta for a cancellation,
// whether the resulting balance triggers a temporary block, and how long
// that block lasts.
func (p LoyaltyPolicy) CancellationPenalty(c domain.Customer) (delta int, block bool, d time.Duration) {
	delta = -p.cfg.CancelPenaltyPoints
	block = c.LoyaltyPoints+delta < p.cfg.BlockThreshold
	return delta, block, p.cfg.BlockDuration
}

// DeliveryReward is tiered on the customer's current balance: loyal
// customers earn the larger reward.
func (p LoyaltyPolicy) DeliveryReward(currentPoints int) int {
	if currentPoints >= p.cfg.RewardTierMin {
		return p.cfg.RewardHighPoints
	}
	return p.cfg.RewardLowPoints
}
