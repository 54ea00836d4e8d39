package server

import (
	"encoding/json"
	"net/http"

	"github.com/Alias1177/ExplosionScreener/internal/scoring"
	"github.com/Alias1177/ExplosionScreener/models"
)

// candidateView is the wire shape of a candidate. The score is published under the
// name of the scenario that produced it.
type candidateView struct {
	Symbol         string                `json:"symbol"`
	Price          float64               `json:"price"`
	Change5m       float64               `json:"change5m"`
	Change1h       float64               `json:"change1h"`
	Volume         float64               `json:"volume"`
	VolumeRatio    float64               `json:"volumeRatio"`
	RSI            float64               `json:"rsi"`
	Volatility     float64               `json:"volatility"`
	ExplosionScore *int                  `json:"explosionScore,omitempty"`
	AlertScore     *int                  `json:"alertScore,omitempty"`
	IsNewListing   bool                  `json:"isNewListing"`
	IsCompressed   bool                  `json:"isCompressed"`
	Recommendation models.Recommendation `json:"recommendation"`
}

type listingView struct {
	Symbol string `json:"symbol"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newCandidateView(kind scoring.Kind, c models.Candidate) candidateView {
	v := candidateView{
		Symbol:         c.Symbol,
		Price:          c.Price,
		Change5m:       c.Change5m,
		Change1h:       c.Change1h,
		Volume:         c.Volume,
		VolumeRatio:    c.VolumeRatio,
		RSI:            c.RSI,
		Volatility:     c.Volatility,
		IsNewListing:   c.IsNewListing,
		IsCompressed:   c.IsCompressed,
		Recommendation: c.Recommendation,
	}
	score := c.Score
	if kind == scoring.KindPreExplosion {
		v.AlertScore = &score
	} else {
		v.ExplosionScore = &score
	}
	return v
}

func candidateViews(kind scoring.Kind, candidates []models.Candidate) []candidateView {
	views := make([]candidateView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, newCandidateView(kind, c))
	}
	return views
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
