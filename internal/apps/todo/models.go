package todo

import (
	"time"

	"gorm.io/gorm"
)

// Todo is one task owned by a single user; every operation is scoped to
// the owner column.
type Todo struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Content   string         `gorm:"size:500;not null" json:"content"`
	Done      bool           `gorm:"default:false" json:"done"`
	DueDate   *time.Time     `json:"due_date,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type CreateTodoRequest struct {
	Content string     `json:"content"`
	DueDate *time.Time `json:"due_date"`
}

type UpdateTodoRequest struct {
	Content *string    `json:"content"`
	Done    *bool      `json:"done"`
	DueDate *time.Time `json:"due_date"`
}
