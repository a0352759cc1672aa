// Package pricing converts a parking stay into billable hours and a fee.
package pricing

import "time"

// RatePerHour is the flat hourly parking rate in currency units.
// Single deployment, single currency, single rule.
const RatePerHour = 50

// Quote is the result of settling a stay.
type Quote struct {
	Hours  int
	Amount int
}

// Settle computes the billable duration between entry and exit.
// Hours round up to the next full hour and every stay bills at least one.
func Settle(entry, exit time.Time) Quote {
	return SettleSeconds(int64(exit.Sub(entry) / time.Second))
}

// SettleSeconds is Settle over a raw duration in seconds.
func SettleSeconds(seconds int64) Quote {
	hours := int(seconds / 3600)
	if seconds%3600 != 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return Quote{Hours: hours, Amount: hours * RatePerHour}
}
