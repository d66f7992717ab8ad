package models

import (
	"time"

	"gorm.io/datatypes"
)

type InteractionAction string

const (
	ActionView     InteractionAction = "view"
	ActionChat     InteractionAction = "chat"
	ActionTeamJoin InteractionAction = "team_join"
)

// Interaction is an append-only, directed log entry between two users.
type Interaction struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FromUserID string         `gorm:"column:from_user_id;type:uuid;index" json:"from_user_id"`
	ToUserID   string         `gorm:"column:to_user_id;type:uuid;index" json:"to_user_id"`
	Action     string         `gorm:"column:action;type:text" json:"action"` // view|chat|team_join|...
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	Meta       datatypes.JSON `gorm:"column:meta;type:jsonb" json:"meta"`
}

func (Interaction) TableName() string { return "interactions" }
