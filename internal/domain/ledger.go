package domain

// LedgerEntry is one destination cross-reference record already observed.
// Entries are append-only: created once, never mutated.
type LedgerEntry struct {
	ID                     string `json:"id"`
	ApplyDate              string `json:"applyDate"`
	NormalizedEmail        string `json:"normalizedEmail"`
	JobKey                 string `json:"jobKey"`
	SourceApplicationID    string `json:"sourceApplicationId"`
	DestinationApplicantID string `json:"destinationApplicantId"`
}

// RunCursor marks the newest source application seen by a previous run.
type RunCursor struct {
	LastApplicationID        string `json:"lastApplicationId"`
	LastApplicationCreatedAt string `json:"lastApplicationCreatedAt"`
}

func (c RunCursor) IsZero() bool {
	return c.LastApplicationID == "" && c.LastApplicationCreatedAt == ""
}

// RunStats is reported to the host at the end of every successful run.
type RunStats struct {
	RunID            string `json:"runId"`
	LedgerTotal      int    `json:"ledgerTotal"`
	LedgerNew        int    `json:"ledgerNew"`
	CandidatesPosted int    `json:"candidatesPosted"`
	ErrorsRemaining  int    `json:"errorsRemaining"`
}
