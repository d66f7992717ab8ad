package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a recruiting card. Facet columns are jsonb and may hold an array,
// a delimited string, an object of flags, or null.
type Post struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID  string `gorm:"column:user_id;type:uuid;index:idx_posts_user_created,priority:1" json:"user_id"`
	Title   string `gorm:"column:title;type:text" json:"title"`
	Content string `gorm:"column:content;type:text" json:"content"`

	Skills      datatypes.JSON `gorm:"column:skills;type:jsonb" json:"skills"`
	Interests   datatypes.JSON `gorm:"column:interests;type:jsonb" json:"interests"`
	Available   datatypes.JSON `gorm:"column:available;type:jsonb" json:"available"`
	Personality datatypes.JSON `gorm:"column:personality;type:jsonb" json:"personality"`
	Experience  datatypes.JSON `gorm:"column:experience;type:jsonb" json:"experience"`

	DesiredRole string `gorm:"column:desired_role;type:text" json:"desired_role"`
	TeamSize    *int   `gorm:"column:team_size;type:integer" json:"team_size,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index;index:idx_posts_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Post) TableName() string { return "posts" }
