// internal/storage/models/base.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel содержит общие поля записей журнала
type BaseModel struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
