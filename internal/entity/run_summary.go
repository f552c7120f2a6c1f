package entity

// RunSummary counts what happened during one extraction run.
type RunSummary struct {
	Pages           int            `json:"pages"`
	TextRunes       int            `json:"text_runes"`
	ChunksTotal     int            `json:"chunks_total"`
	ChunksSent      int            `json:"chunks_sent"`
	ChunksSkipped   int            `json:"chunks_skipped"`
	ChunksMalformed int            `json:"chunks_malformed"`
	Candidates      int            `json:"candidates"`
	Duplicates      int            `json:"duplicates"`
	RecordsAccepted int            `json:"records_accepted"`
	RecordsRejected int            `json:"records_rejected"`
	RejectedByField map[string]int `json:"rejected_by_field,omitempty"`
	ElapsedMs       int64          `json:"elapsed_ms"`
}
