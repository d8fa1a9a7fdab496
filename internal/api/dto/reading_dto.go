package dto

type CreateReadingRequest struct {
	ClerkID   string `json:"clerk_id" binding:"required"`
	ValueMgdl int    `json:"value_mgdl" binding:"required,gt=0"`
	Notes     string `json:"notes"`
	TakenAt   string `json:"taken_at" binding:"required"`
}

type UpdateReadingRequest struct {
	ValueMgdl int    `json:"value_mgdl" binding:"required,gt=0"`
	Notes     string `json:"notes"`
	TakenAt   string `json:"taken_at" binding:"required"`
}

type ListReadingsRequest struct {
	ClerkID  string `form:"clerk_id" binding:"required"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListReadingsResponse struct {
	Readings   []ReadingDTO `json:"readings"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type ReadingDTO struct {
	ReadingID string `json:"reading_id"`
	ClerkID   string `json:"clerk_id"`
	ValueMgdl int    `json:"value_mgdl"`
	Notes     string `json:"notes,omitempty"`
	TakenAt   string `json:"taken_at"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
