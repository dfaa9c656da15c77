package domain

// DayRatePoint is one UTC calendar day of a solver's win-rate series.
// Day is "YYYY-MM-DD"; lexicographic order equals chronological order.
type DayRatePoint struct {
	Day   string  `json:"day"`
	Wins  int     `json:"wins"`
	Total int     `json:"total"`
	Rate  float64 `json:"rate"` // wins/total, 0 when total is 0
}

// DayVolumePoint is one UTC calendar day of won USD volume.
type DayVolumePoint struct {
	Day    string  `json:"day"`
	Volume float64 `json:"volume"`
}

// HourPoint is one UTC hour of an averaged solver premium, in percent.
// Valid is false for hours with no eligible bid; such points contribute
// no weight to moving averages.
type HourPoint struct {
	Hour  string  `json:"hour"` // "YYYY-MM-DDTHH"
	Avg   float64 `json:"avg"`
	Valid bool    `json:"valid"`
}
