package domain

// Document is an uploaded knowledge document
type Document struct {
	ID        ID               `json:"id"`
	Title     string           `json:"title"`
	Metadata  DocumentMetadata `json:"metadata"`
	CreatedAt Timestamp        `json:"created_at"`
	UpdatedAt Timestamp        `json:"updated_at"`
}

type DocumentMetadata struct {
	FileName string `json:"file_name,omitempty"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

// SearchQuery is the body of POST knowledge/search
type SearchQuery struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"min=1,max=100"`
}

// SearchResult is a single chunk matched by a knowledge search
type SearchResult struct {
	Chunk          string  `json:"chunk"`
	DocumentID     ID      `json:"document_id"`
	DocumentTitle  string  `json:"document_title"`
	RelevanceScore float64 `json:"relevance_score"`
}
