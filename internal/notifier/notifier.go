// Package notifier forwards pre-explosion signals from the screener API to Telegram.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/ExplosionScreener/internal/metrics"
	httpClient "github.com/Alias1177/ExplosionScreener/internal/platform/http"
	"github.com/Alias1177/ExplosionScreener/models"
)

const signalsPath = "/api/pre-explosion-signals"

// Signal is one row of the pre-explosion endpoint
type Signal struct {
	Symbol         string                `json:"symbol"`
	Price          float64               `json:"price"`
	Change5m       float64               `json:"change5m"`
	Change1h       float64               `json:"change1h"`
	VolumeRatio    float64               `json:"volumeRatio"`
	RSI            float64               `json:"rsi"`
	AlertScore     int                   `json:"alertScore"`
	IsNewListing   bool                  `json:"isNewListing"`
	IsCompressed   bool                  `json:"isCompressed"`
	Recommendation models.Recommendation `json:"recommendation"`
}

// Sender delivers a formatted message to one chat
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Recipients lists the chats subscribed to alerts
type Recipients interface {
	ChatIDs(ctx context.Context) ([]int64, error)
}

// Options configures a Notifier
type Options struct {
	ScreenerURL  string
	ChatID       int64 // always notified when non-zero
	MinScore     int
	Cooldown     time.Duration
	SendInterval time.Duration // pause between messages to stay under the bot API limit
}

// Notifier polls the screener and pushes fresh signals to every recipient
type Notifier struct {
	client     *httpClient.Client
	sender     Sender
	recipients Recipients
	opts       Options

	mu       sync.Mutex
	lastSent map[string]time.Time

	now    func() time.Time
	logger zerolog.Logger
}

// New creates a notifier. recipients may be nil when no subscriber store is configured.
func New(client *httpClient.Client, sender Sender, recipients Recipients, opts Options) *Notifier {
	return &Notifier{
		client:     client,
		sender:     sender,
		recipients: recipients,
		opts:       opts,
		lastSent:   make(map[string]time.Time),
		now:        time.Now,
		logger:     log.With().Str("component", "notifier").Logger(),
	}
}

// Poll fetches the current signals and sends the ones not seen within the cooldown.
// It returns the number of messages delivered.
func (n *Notifier) Poll(ctx context.Context) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	signals, err := n.fetch(ctx)
	if err != nil {
		return 0, err
	}

	fresh := n.fresh(signals)
	if len(fresh) == 0 {
		n.logger.Debug().Int("signals", len(signals)).Msg("No fresh signals")
		return 0, nil
	}

	chats := n.chats(ctx)
	if len(chats) == 0 {
		n.logger.Warn().Int("signals", len(fresh)).Msg("No recipients configured, dropping signals")
		return 0, nil
	}

	text := FormatSignals(fresh)
	delivered := 0
	for i, chatID := range chats {
		if err := n.sender.Send(ctx, chatID, text); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send alert")
			metrics.RecordNotification(false)
		} else {
			delivered++
			metrics.RecordNotification(true)
		}

		if i < len(chats)-1 && n.opts.SendInterval > 0 {
			select {
			case <-ctx.Done():
				return delivered, ctx.Err()
			case <-time.After(n.opts.SendInterval):
			}
		}
	}

	// Signals nobody received stay eligible for the next poll
	if delivered > 0 {
		now := n.now()
		for _, s := range fresh {
			n.lastSent[s.Symbol] = now
		}
	}

	n.logger.Info().
		Int("signals", len(fresh)).
		Int("delivered", delivered).
		Int("recipients", len(chats)).
		Msg("Alerts dispatched")
	return delivered, nil
}

func (n *Notifier) fetch(ctx context.Context) ([]Signal, error) {
	body, err := n.client.GetJSON(ctx, n.opts.ScreenerURL+signalsPath)
	if err != nil {
		return nil, fmt.Errorf("fetching signals: %w", err)
	}

	var signals []Signal
	if err := json.Unmarshal(body, &signals); err != nil {
		return nil, fmt.Errorf("parsing signals: %w", err)
	}
	return signals, nil
}

// fresh keeps signals above the score threshold that are outside their cooldown.
// Callers hold mu.
func (n *Notifier) fresh(signals []Signal) []Signal {
	now := n.now()
	for symbol, at := range n.lastSent {
		if now.Sub(at) >= n.opts.Cooldown {
			delete(n.lastSent, symbol)
		}
	}

	var out []Signal
	for _, s := range signals {
		if s.AlertScore < n.opts.MinScore {
			continue
		}
		if _, recent := n.lastSent[s.Symbol]; recent {
			continue
		}
		out = append(out, s)
	}
	return out
}

// chats merges the configured chat with the subscribers, without duplicates.
// A store failure falls back to the configured chat.
func (n *Notifier) chats(ctx context.Context) []int64 {
	var chats []int64
	if n.opts.ChatID != 0 {
		chats = append(chats, n.opts.ChatID)
	}

	if n.recipients != nil {
		ids, err := n.recipients.ChatIDs(ctx)
		if err != nil {
			n.logger.Warn().Err(err).Msg("Subscriber lookup failed")
		}
		for _, id := range ids {
			if !slices.Contains(chats, id) {
				chats = append(chats, id)
			}
		}
	}
	return chats
}
