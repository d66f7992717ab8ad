package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// RecommendationLog is the audit record written for every recommendation request.
type RecommendationLog struct {
	ID                  string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID              string         `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	RecommendedSkills   pq.StringArray `gorm:"column:recommended_skills;type:text[]" json:"recommended_skills"`
	RecommendedProfiles datatypes.JSON `gorm:"column:recommended_profiles;type:jsonb" json:"recommended_profiles"`
	ANNProfiles         datatypes.JSON `gorm:"column:ann_profiles;type:jsonb" json:"ann_profiles"`
	Filters             datatypes.JSON `gorm:"column:filters;type:jsonb" json:"filters"`
	CreatedAt           time.Time      `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (RecommendationLog) TableName() string { return "ai_recommendations" }
