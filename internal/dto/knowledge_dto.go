package dto

type KnowledgeSearchRequest struct {
	Query string `json:"query" validate:"required"`
	K     int    `json:"k" validate:"omitempty,min=1,max=50"`
}

type KnowledgeSearchResult struct {
	Document   string                 `json:"document"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ChunkIndex int                    `json:"chunk_index"`
}

type KnowledgeStatsResponse struct {
	Collection  string `json:"collection"`
	Chunks      int64  `json:"chunks"`
	IndexExists bool   `json:"index_exists"`
}

// KnowledgeIngestResponse reports how many chunks were queued; the
// ingestion consumer embeds and stores them in the background.
type KnowledgeIngestResponse struct {
	Collection string `json:"collection"`
	Queued     int    `json:"queued"`
}

type KnowledgeRebuildResponse struct {
	Collection string `json:"collection"`
	Chunks     int    `json:"chunks"`
}
