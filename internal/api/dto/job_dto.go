package dto

type ListJobsRequest struct {
	JobType  string `form:"job_type"`
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	JobID       string `json:"job_id"`
	JobType     string `json:"job_type"`
	Payload     string `json:"payload"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	Priority    int    `json:"priority"`
	RetryCount  int    `json:"retry_count"`
	Result      string `json:"result,omitempty"`
	ProcessedAt string `json:"processed_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
