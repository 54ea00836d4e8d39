// Package scoring turns an indicator set into a composite score, an admission decision
// and a recommendation. The explosion, pre-explosion and single-symbol analysis scenarios
// share one formula and differ only in the constants of their Scenario.
package scoring

import (
	"math"

	"github.com/Alias1177/ExplosionScreener/internal/config"
	"github.com/Alias1177/ExplosionScreener/models"
)

// Kind names a scenario. The value doubles as its cache key.
type Kind string

const (
	KindExplosion    Kind = "explosion-candidates"
	KindPreExplosion Kind = "pre-explosion-signals"
	KindAnalysis     Kind = "analysis"
)

// Scenario is the tunable contract for one screening scenario
type Scenario struct {
	Kind        Kind
	VolumeFloor float64

	// Reference moves that map to a full 100-point contribution
	Ref5m     float64
	Ref1h     float64
	RefVolume float64

	Weight5m     float64
	Weight1h     float64
	WeightVolume float64
	WeightRSI    float64

	NewListingBonus  float64
	CompressionBonus float64
	TimeBonus        float64

	MinChange5m    float64
	MinChange1h    float64
	MinVolumeRatio float64
	RSIMin         float64
	RSIMax         float64
	RSIGate        bool // RSI band is a hard admission condition
	MinScore       int

	// Filter disables the admission predicate entirely when false
	Filter bool
}

func base(cfg *config.Config) Scenario {
	return Scenario{
		Ref5m:           25,
		Ref1h:           35,
		RefVolume:       10,
		Weight5m:        0.30,
		Weight1h:        0.25,
		WeightVolume:    0.25,
		WeightRSI:       0.20,
		NewListingBonus: cfg.NewListingBonus,
		TimeBonus:       cfg.TimeBonus,
		MinChange5m:     cfg.MinChange5m,
		MinChange1h:     cfg.MinChange1h,
		MinVolumeRatio:  cfg.MinVolumeRatio,
		RSIMin:          cfg.RSIMin,
		RSIMax:          cfg.RSIMax,
		Filter:          true,
	}
}

// Explosion is the explosion-candidate scenario
func Explosion(cfg *config.Config) Scenario {
	s := base(cfg)
	s.Kind = KindExplosion
	s.VolumeFloor = cfg.ExplosionVolumeFloor
	s.CompressionBonus = cfg.ExplosionCompressionBonus
	s.RSIGate = true
	s.MinScore = cfg.MinExplosionScore
	return s
}

// PreExplosion is the early-alert scenario: lower volume floor, compression weighted
// more heavily and RSI used only as a scoring input.
func PreExplosion(cfg *config.Config) Scenario {
	s := base(cfg)
	s.Kind = KindPreExplosion
	s.VolumeFloor = cfg.AlertVolumeFloor
	s.CompressionBonus = cfg.AlertCompressionBonus
	s.RSIGate = false
	s.MinScore = cfg.MinAlertScore
	return s
}

// Analysis scores a single symbol with the explosion formula and never filters it out
func Analysis(cfg *config.Config) Scenario {
	s := Explosion(cfg)
	s.Kind = KindAnalysis
	s.VolumeFloor = 0
	s.Filter = false
	return s
}

// InRSIBand reports whether momentum is intact but not yet overbought
func (s Scenario) InRSIBand(rsi float64) bool {
	return rsi >= s.RSIMin && rsi <= s.RSIMax
}

// Score combines the indicators into the composite integer score
func (s Scenario) Score(ind models.IndicatorSet, isNewListing bool) int {
	rsiPoints := 50.0
	if s.InRSIBand(ind.RSI) {
		rsiPoints = 100
	}

	score := ratio(ind.Change5m, s.Ref5m)*100*s.Weight5m +
		ratio(ind.Change1h, s.Ref1h)*100*s.Weight1h +
		ratio(ind.VolumeRatio, s.RefVolume)*100*s.WeightVolume +
		rsiPoints*s.WeightRSI +
		s.TimeBonus

	if isNewListing {
		score += s.NewListingBonus
	}
	if ind.IsCompressed {
		score += s.CompressionBonus
	}

	// Half-up: -12.5 scores -12, not -13 as math.Round would give
	return int(math.Floor(score + 0.5))
}

// Admit applies the scenario's admission predicate
func (s Scenario) Admit(ind models.IndicatorSet, score int) bool {
	if !s.Filter {
		return true
	}
	if ind.Change5m < s.MinChange5m || ind.Change1h < s.MinChange1h || ind.VolumeRatio < s.MinVolumeRatio {
		return false
	}
	if s.RSIGate && !s.InRSIBand(ind.RSI) {
		return false
	}
	return score >= s.MinScore
}

func ratio(v, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return v / ref
}
