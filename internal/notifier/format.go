package notifier

import (
	"fmt"
	"strconv"
	"strings"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatSignals renders signals as a Telegram Markdown message
func FormatSignals(signals []Signal) string {
	var b strings.Builder
	b.WriteString("🚨 *Pre-explosion signals*\n")

	for _, s := range signals {
		b.WriteString("\n")
		fmt.Fprintf(&b, "*%s*  score %d  `%s`\n", markdownEscaper.Replace(s.Symbol), s.AlertScore, s.Recommendation.Action)
		fmt.Fprintf(&b, "Price: %s\n", formatPrice(s.Price))
		fmt.Fprintf(&b, "5m: %+.2f%%  1h: %+.2f%%  Vol: x%.2f  RSI: %.0f\n", s.Change5m, s.Change1h, s.VolumeRatio, s.RSI)

		var tags []string
		if s.IsCompressed {
			tags = append(tags, "🗜 compressed")
		}
		if s.IsNewListing {
			tags = append(tags, "🆕 new listing")
		}
		if len(tags) > 0 {
			b.WriteString(strings.Join(tags, "  ") + "\n")
		}

		fmt.Fprintf(&b, "🎯 Target: %s  🛑 Stop: %s  (%s)\n",
			formatPrice(s.Recommendation.TargetPrice),
			formatPrice(s.Recommendation.StopLoss),
			s.Recommendation.Confidence)
	}
	return b.String()
}

// formatPrice trims trailing zeros so sub-cent prices keep their precision
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
