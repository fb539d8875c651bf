package model

import "time"

// Donation is a single contribution to a campaign. Appended once by the
// Donate transaction and immutable thereafter.
type Donation struct {
	Donor  string    `json:"donor"`
	Amount float64   `json:"amount"`
	At     time.Time `json:"at"`
}

// Campaign is the ledger record for a fundraising campaign. TotalDonated is
// kept equal to the sum of Donations amounts by the Donate transaction;
// conflicting concurrent updates are rejected by the ledger's version check.
type Campaign struct {
	ObjectType    string     `json:"docType"` // "Campaign"
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Organizer     string     `json:"organizer"`
	GoalAmount    float64    `json:"goalAmount"`
	Donations     []Donation `json:"donations"`
	TotalDonated  float64    `json:"totalDonated"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastUpdatedAt time.Time  `json:"lastUpdatedAt"`
}

// HistoryEntry represents one committed state of a campaign key.
type HistoryEntry struct {
	TxID      string    `json:"txId"`
	Timestamp time.Time `json:"timestamp"`
	IsDelete  bool      `json:"isDelete"`
	Value     string    `json:"value"` // Raw JSON value of the record at that time
}
