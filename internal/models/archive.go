package models

import "time"

// LinkEvent is an archived change of a link power report
type LinkEvent struct {
	LinkPowerReport
	ObservedAt time.Time `json:"observed_at"`
}

// HourlyStat aggregates archived samples of one provider over one hour
type HourlyStat struct {
	Hour       time.Time `json:"hour"`
	Provider   string    `json:"provider"`
	TotalPings int       `json:"total_pings"`
	Successful int       `json:"successful"`
	AvgMs      float64   `json:"avg_ms"`
	MaxMs      float64   `json:"max_ms"`
	PacketLoss float64   `json:"packet_loss"`
}
