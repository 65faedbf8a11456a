package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CitizenRef string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

type ConversationMessage struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationId uuid.UUID `gorm:"type:uuid;index"`
	Role           string    // citizen | agent | bot
	Content        string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
