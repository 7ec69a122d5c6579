package notifier

import (
	"fmt"
	"strings"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// FormatAlert formats a threshold alert into a Telegram message.
func FormatAlert(a model.Alert) string {
	switch a.Reason {
	case model.ReasonBuy:
		return fmt.Sprintf("🟢 <b>BUY alert</b> | %s\n\nPrice %.2f reached buy target %.2f",
			a.Symbol, a.Price, a.Target)
	case model.ReasonSell:
		return fmt.Sprintf("🔴 <b>SELL alert</b> | %s\n\nPrice %.2f reached sell target %.2f",
			a.Symbol, a.Price, a.Target)
	case model.ReasonChangePercent:
		return fmt.Sprintf("⚡ <b>Volatility alert</b> | %s\n\nMoved %+.2f%% (≥%d%% tier), price %.2f",
			a.Symbol, a.ChangePercent, a.Bucket, a.Price)
	}
	return fmt.Sprintf("<b>%s</b> | %s price %.2f", a.Reason, a.Symbol, a.Price)
}

// FormatRsiSignal formats an RSI zone signal.
func FormatRsiSignal(s model.RsiSignal) string {
	label := "oversold"
	emoji := "📉"
	if s.Zone == model.RsiOverbought {
		label = "overbought"
		emoji = "📈"
	}
	return fmt.Sprintf("%s <b>RSI %s</b> | %s\n\nRSI(14) = %.1f", emoji, label, s.Symbol, s.Value)
}

// FormatRsSignal formats a relative strength crossover.
func FormatRsSignal(s model.RelativeStrengthSignal) string {
	arrow := "⬆️"
	verb := "outperforming"
	if s.Direction == model.RsUnderperforming {
		arrow = "⬇️"
		verb = "underperforming"
	}
	return fmt.Sprintf("%s <b>Relative strength</b> | %s now %s the benchmark\n\nRatio %.4f crossed EMA50 %.4f (%+.2f%%)",
		arrow, s.Symbol, verb, s.Ratio, s.Ema, s.PercentDiff)
}

// FormatSectorSignals formats a batch of sector rotation signals into one
// message.
func FormatSectorSignals(signals []model.SectorRotationSignal) string {
	if len(signals) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🔄 <b>Sector rotation</b>\n")
	for _, s := range signals {
		arrow := "➡️ in"
		if s.Direction == model.RotatingOut {
			arrow = "⬅️ out"
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b> rotating %s (%s)\n", s.Sector, arrow, s.Confidence))
		b.WriteString(fmt.Sprintf("  weekly %+.2f%% (z=%.2f) | monthly %+.2f%% (z=%.2f)\n",
			s.WeeklyChange, s.ZScoreWeekly, s.MonthlyChange, s.ZScoreMonthly))
	}
	return b.String()
}

// FormatTargets formats the current target book for display.
func FormatTargets(stocks, crypto []model.TargetPrice) string {
	var b strings.Builder
	b.WriteString("🎯 <b>Target prices</b>\n\n<b>Stocks</b>\n")
	writeTargets(&b, stocks)
	b.WriteString("\n<b>Crypto</b>\n")
	writeTargets(&b, crypto)
	return b.String()
}

func writeTargets(b *strings.Builder, targets []model.TargetPrice) {
	if len(targets) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, tp := range targets {
		b.WriteString(fmt.Sprintf("  %s: buy %.2f | sell %.2f\n", tp.Symbol, tp.Buy, tp.Sell))
	}
}

// FormatHelp lists the available chat commands.
func FormatHelp() string {
	return strings.Join([]string{
		"Available commands:",
		"• /status — tracker and history status",
		"• /targets — configured target prices",
		"• /setbuy SYMBOL PRICE — update a buy target",
		"• /setsell SYMBOL PRICE — update a sell target",
		"• /rsi — current RSI readings",
		"• /sectors — latest sector rotation analysis",
		"• /help — this message",
	}, "\n")
}
