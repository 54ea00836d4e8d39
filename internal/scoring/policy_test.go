package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/ExplosionScreener/internal/config"
	"github.com/Alias1177/ExplosionScreener/models"
)

// workedExample is a 5% rise with adequate volume, RSI 55 and a compressed range
var workedExample = models.IndicatorSet{
	Change5m:     4,
	Change1h:     5,
	RSI:          55,
	VolumeRatio:  2.0,
	IsCompressed: true,
	Volatility:   0.3,
}

func TestExplosionScore_WorkedExample(t *testing.T) {
	s := Explosion(config.Default())

	// 4/25*100*0.30 + 5/35*100*0.25 + 2/10*100*0.25 + 100*0.20 + 10 + 5 = 48.37
	score := s.Score(workedExample, false)
	assert.Equal(t, 48, score)
	assert.True(t, s.Admit(workedExample, score))
}

func TestScore_Scenarios(t *testing.T) {
	cfg := config.Default()
	overbought := workedExample
	overbought.RSI = 75
	uncompressed := workedExample
	uncompressed.IsCompressed = false

	tests := []struct {
		name      string
		scenario  Scenario
		ind       models.IndicatorSet
		isNew     bool
		wantScore int
		wantAdmit bool
	}{
		{"explosion worked example", Explosion(cfg), workedExample, false, 48, true},
		{"alert weights compression more", PreExplosion(cfg), workedExample, false, 63, true},
		{"explosion rejects overbought", Explosion(cfg), overbought, false, 38, false},
		{"alert ignores rsi gate", PreExplosion(cfg), overbought, false, 53, true},
		{"new listing bonus", Explosion(cfg), uncompressed, true, 53, true},
		{"uncompressed, not new", Explosion(cfg), uncompressed, false, 38, false},
		{"analysis never filters", Analysis(cfg), overbought, false, 38, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := tt.scenario.Score(tt.ind, tt.isNew)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantAdmit, tt.scenario.Admit(tt.ind, score))
		})
	}
}

func TestAdmit_MomentumMinimums(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name   string
		mutate func(*models.IndicatorSet)
	}{
		{"weak 5m move", func(i *models.IndicatorSet) { i.Change5m = 1.9 }},
		{"weak 1h move", func(i *models.IndicatorSet) { i.Change1h = 2.9 }},
		{"thin volume", func(i *models.IndicatorSet) { i.VolumeRatio = 1.4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := workedExample
			tt.mutate(&ind)
			for _, s := range []Scenario{Explosion(cfg), PreExplosion(cfg)} {
				// a huge score does not bypass the minimums
				assert.False(t, s.Admit(ind, 1000), s.Kind)
			}
		})
	}
}

func TestAdmit_MinScore(t *testing.T) {
	s := PreExplosion(config.Default())
	assert.False(t, s.Admit(workedExample, 39))
	assert.True(t, s.Admit(workedExample, 40))
}

func TestInRSIBand(t *testing.T) {
	s := Explosion(config.Default())
	assert.True(t, s.InRSIBand(40))
	assert.True(t, s.InRSIBand(70))
	assert.False(t, s.InRSIBand(39))
	assert.False(t, s.InRSIBand(71))
}

func TestScore_NeutralDefaults(t *testing.T) {
	// every indicator degraded: change 0, rsi 50, volume ratio 1, not compressed
	neutral := models.IndicatorSet{RSI: 50, VolumeRatio: 1, Volatility: 10}
	s := Explosion(config.Default())

	// 0 + 0 + 2.5 + 20 + 5
	assert.Equal(t, 28, s.Score(neutral, false))
	assert.False(t, s.Admit(neutral, 28))
}

func TestScore_RoundsHalfUp(t *testing.T) {
	// only the 5m term contributes: change5m / 4 * 100 * 0.5
	s := Scenario{Ref5m: 4, Weight5m: 0.5}

	tests := []struct {
		change5m float64
		want     int
	}{
		{1, 13},   // 12.5
		{-1, -12}, // -12.5
		{-3, -37}, // -37.5
		{-1.04, -13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Score(models.IndicatorSet{Change5m: tt.change5m}, false), tt.change5m)
	}
}
