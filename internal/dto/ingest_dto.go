package dto

// IngestChunk is one split document piece traveling through the
// ingestion topic.
type IngestChunk struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
	Index    int                    `json:"index"`
}

// IngestBatchMessage groups the chunks of one source document so the
// consumer can embed and store them together.
type IngestBatchMessage struct {
	Collection string        `json:"collection"`
	Source     string        `json:"source"`
	Chunks     []IngestChunk `json:"chunks"`
}
