// Package types contains the row shapes served by the HTTP API.
package types

// CutflowEntry is one step of a cumulative cutflow: the events passing this
// step and all earlier ones.
type CutflowEntry struct {
	Step        string  `json:"step"`
	Events      int64   `json:"events"`
	SumMCWeight float64 `json:"sum_mc_weight,omitempty"`
	// Efficiency is relative to all events of the dataset.
	Efficiency float64 `json:"efficiency"`
}

// CategoryRow describes one registered category.
type CategoryRow struct {
	Name      string   `json:"name"`
	ID        int      `json:"id"`
	Label     string   `json:"label"`
	Selection []string `json:"selection"`
	Children  []string `json:"children,omitempty"`
	Leaf      bool     `json:"leaf"`
	// Assigned counts the events that received this category id.
	Assigned int64 `json:"assigned"`
}

// Efficiency returns pass/total, or 0 for an empty total.
func Efficiency(pass, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(pass) / float64(total)
}
