package docModel

// ContentType classifies what a chunk holds: running prose or
// tabular/schedule-like content.
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentStructured ContentType = "structured"
)

// Chunk is the unit of indexing and retrieval. Immutable once created.
// (SourceFile, PageNumber, ChunkIndex) is a natural key but re-ingestion
// appends rather than updates, so it is not enforced unique.
type Chunk struct {
	Id          string      `json:"chunk_id"`
	Text        string      `json:"content"`
	SourceFile  string      `json:"source_file"`
	PageNumber  int         `json:"page_number"`
	TotalPages  int         `json:"total_pages"`
	ChunkIndex  int         `json:"chunk_index"`
	ContentType ContentType `json:"content_type"`
}

// RetrievalResult is a per-query projection. Score is a distance: lower is
// more similar, and only comparable within the same query.
type RetrievalResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// Source is the citation unit returned to callers.
type Source struct {
	FileName       string   `json:"file_name"`
	PageNumber     int      `json:"page_number"`
	ContentSnippet string   `json:"content_snippet"`
	Score          *float32 `json:"score,omitempty"`
}

// ExtractedRecord is a loosely-typed row of a structured extraction; the
// field set varies by category and any field may be absent.
type ExtractedRecord map[string]any

// Category names a structured-extraction schema.
type Category string

const (
	CategoryNone          Category = ""
	CategoryDoorSchedule  Category = "door_schedule"
	CategoryRoomSummary   Category = "room_summary"
	CategoryEquipmentList Category = "equipment_list"
)

// IngestionReport summarizes one whole-corpus ingestion run.
type IngestionReport struct {
	Status             string `json:"status"`
	TotalDocuments     int    `json:"total_documents"`
	ProcessedDocuments int    `json:"processed_documents"`
	TotalChunks        int    `json:"total_chunks"`
	Message            string `json:"message,omitempty"`
}
