package resume

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Resume is a structured JSON document (sections, entries, free text) owned
// by a user. Translations operate on Content as a whole.
type Resume struct {
	ID        int            `db:"id" json:"id"`
	UserID    int            `db:"user_id" json:"user_id"`
	Title     string         `db:"title" json:"title"`
	Language  string         `db:"language" json:"language"`
	Content   types.JSONText `db:"content" json:"content"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

type CreateResumeRequest struct {
	Title    string                 `json:"title" binding:"required,min=1,max=200"`
	Language string                 `json:"language" binding:"required,min=2,max=8"`
	Content  map[string]interface{} `json:"content" binding:"required"`
}

type UpdateResumeRequest struct {
	Title   string                 `json:"title" binding:"omitempty,min=1,max=200"`
	Content map[string]interface{} `json:"content"`
}
