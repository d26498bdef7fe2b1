package domain

import "time"

// TaskKind enumerates supported generation categories.
type TaskKind string

const (
	TaskKindImage TaskKind = "image"
	TaskKindVideo TaskKind = "video"
)

// TaskStatus enumerates the vendor-facing lifecycle states of a task. Vendors
// occasionally report states outside this set; those are stored verbatim.
type TaskStatus string

const (
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusSuccess    TaskStatus = "success"
	TaskStatusFail       TaskStatus = "fail"
)

// Terminal reports whether the status can no longer change.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusSuccess || s == TaskStatusFail
}

// RequestParams captures the original generation submission parameters. They
// are kept verbatim so a completed task can be priced and displayed without
// consulting the out-of-scope submission service again.
type RequestParams struct {
	Prompt      string `json:"prompt,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
}

// GenerationTask tracks one vendor job from submission to terminal state.
// TaskID is the vendor-assigned opaque identifier and the correlation key for
// out-of-band completion callbacks.
type GenerationTask struct {
	TaskID          string        `json:"task_id"`
	Kind            TaskKind      `json:"kind,omitempty"`
	Status          TaskStatus    `json:"status"`
	ResultURL       string        `json:"result_url,omitempty"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	RequestParams   RequestParams `json:"request_params"`
	OwnerUserID     string        `json:"owner_user_id,omitempty"`
	OwnerAPIKey     string        `json:"owner_api_key,omitempty"`
	CreditsDeducted bool          `json:"credits_deducted"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TaskPatch carries a partial update merged into an existing task. Nil fields
// leave the current value untouched.
type TaskPatch struct {
	Status       *TaskStatus
	ResultURL    *string
	ErrorMessage *string
}
