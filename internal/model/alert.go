package model

import "time"

// AlertReason names the condition that raised an alert. It doubles as the
// cooldown key so a raised condition suppresses itself until expiry.
type AlertReason string

const (
	ReasonBuy           AlertReason = "BUY_ALERT"
	ReasonSell          AlertReason = "SELL_ALERT"
	ReasonChangePercent AlertReason = "CHANGE_PERCENT"
)

// Alert is a single approved notification, ready for formatting and delivery.
type Alert struct {
	ID            string
	Reason        AlertReason
	Symbol        string
	Price         float64
	Target        float64 // buy/sell target that was hit, 0 for volatility
	ChangePercent float64 // only set for volatility alerts
	Bucket        int     // threshold bucket for volatility alerts, 0 otherwise
	CreatedAt     time.Time
}
