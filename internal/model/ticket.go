package model

// Tracker priorities derived from finding severity.
const (
	PriorityHighest = "Highest"
	PriorityHigh    = "High"
)

// Terminal ticket statuses: a ticket in one of these is closed as far as
// this system is concerned. InReviewStatus is additionally excluded from
// reconciliation candidates so tickets under manual review are left alone.
var (
	TerminalStatuses = []string{"Done", "Closed", "Resolved", "Verified"}
	InReviewStatus   = "In Review"
)

// SyncReport is the outcome of one finding-sync run.
type SyncReport struct {
	Created  []string `json:"created"`
	Existing []string `json:"existing"`
}

// CloseReport aggregates one reconciliation pass over open tickets.
type CloseReport struct {
	Checked     int `json:"checked"`
	Closed      int `json:"closed"`
	NotResolved int `json:"notResolved"`
	WithErrors  int `json:"withErrors"`
}
