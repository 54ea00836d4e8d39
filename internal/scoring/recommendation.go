package scoring

import (
	"github.com/Alias1177/ExplosionScreener/internal/calculate"
	"github.com/Alias1177/ExplosionScreener/internal/config"
	"github.com/Alias1177/ExplosionScreener/models"
)

// Support and resistance are fixed offsets of the price, not derived from price action
const (
	supportMultiplier    = 0.97
	resistanceMultiplier = 1.05
	pricePrecision       = 8
)

// RecommendationBuilder derives action, target and stop-loss levels from price and score
type RecommendationBuilder struct {
	ExplosionTarget float64
	ExplosionStop   float64
	AlertTarget     float64
	AlertStop       float64
}

// NewRecommendationBuilder creates a builder with multipliers taken from config
func NewRecommendationBuilder(cfg *config.Config) RecommendationBuilder {
	return RecommendationBuilder{
		ExplosionTarget: cfg.ExplosionTargetMultiplier,
		ExplosionStop:   cfg.ExplosionStopMultiplier,
		AlertTarget:     cfg.AlertTargetMultiplier,
		AlertStop:       cfg.AlertStopMultiplier,
	}
}

// Build returns the recommendation for a scenario
func (b RecommendationBuilder) Build(kind Kind, price float64, score int) models.Recommendation {
	if kind == KindPreExplosion {
		action := models.ActionMonitor
		if score >= 70 {
			action = models.ActionPrepareEntry
		}
		return models.Recommendation{
			Action:      action,
			TargetPrice: calculate.Round(price*b.AlertTarget, pricePrecision),
			StopLoss:    calculate.Round(price*b.AlertStop, pricePrecision),
			Confidence:  confidence(score),
		}
	}

	action := models.ActionWatch
	switch {
	case score >= 80:
		action = models.ActionStrongBuy
	case score >= 60:
		action = models.ActionBuy
	}
	return models.Recommendation{
		Action:      action,
		TargetPrice: calculate.Round(price*b.ExplosionTarget, pricePrecision),
		StopLoss:    calculate.Round(price*b.ExplosionStop, pricePrecision),
		Support:     calculate.Round(price*supportMultiplier, pricePrecision),
		Resistance:  calculate.Round(price*resistanceMultiplier, pricePrecision),
		Confidence:  confidence(score),
	}
}

func confidence(score int) string {
	switch {
	case score >= 80:
		return models.ConfidenceHigh
	case score >= 60:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
