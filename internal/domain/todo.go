package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TodoItem is the single persisted entity of the API.
type TodoItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  *string   `json:"description"`
	CreationTime time.Time `gorm:"not null" json:"creationTime"`
	UpdateTime   time.Time `gorm:"not null" json:"updateTime"`
	Status       Status    `gorm:"type:varchar(20);not null" json:"status"`
}

func (TodoItem) TableName() string {
	return "todo_items"
}

// AfterFind normalizes timestamps read back from the driver to UTC.
func (t *TodoItem) AfterFind(tx *gorm.DB) error {
	t.CreationTime = t.CreationTime.UTC()
	t.UpdateTime = t.UpdateTime.UTC()
	return nil
}
