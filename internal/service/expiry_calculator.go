package service

import (
	"time"

	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/pkg/entitlement"
)

// Clock is injected so expiry and timestamps are testable.
type Clock func() time.Time

func (c Clock) orDefault() Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// IExpiryCalculator resolves plan names to tiers and tiers to deadlines.
// Unknown plans are treated as monthly and the fallback is logged.
type IExpiryCalculator interface {
	ResolveTier(planName string) entitlement.Tier
	DurationFor(tier entitlement.Tier) time.Duration
	ExpiryFrom(now time.Time, tier entitlement.Tier) time.Time
}

type expiryCalculator struct {
	logger logger.ILogger
}

func NewExpiryCalculator(log logger.ILogger) IExpiryCalculator {
	return &expiryCalculator{logger: log}
}

func (c *expiryCalculator) ResolveTier(planName string) entitlement.Tier {
	tier, ok := entitlement.ParseTier(planName)
	if !ok {
		c.logger.Warn("ExpiryCalculator", "Unknown plan name, falling back to monthly tier", map[string]interface{}{
			"plan_name": planName,
		})
		return entitlement.TierMonthly
	}
	return tier
}

func (c *expiryCalculator) DurationFor(tier entitlement.Tier) time.Duration {
	d, ok := entitlement.DurationFor(tier)
	if !ok {
		c.logger.Warn("ExpiryCalculator", "Unknown tier, using monthly duration", map[string]interface{}{
			"tier": tier.String(),
		})
	}
	return d
}

func (c *expiryCalculator) ExpiryFrom(now time.Time, tier entitlement.Tier) time.Time {
	return now.Add(c.DurationFor(tier))
}
