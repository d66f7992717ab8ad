package models

import "time"

type Profile struct {
	ID         string  `gorm:"column:id;type:uuid;primaryKey" json:"id"` // auth user id
	Name       string  `gorm:"column:name;type:text" json:"name"`
	Email      string  `gorm:"column:email;type:text" json:"email"`
	Department *string `gorm:"column:department;type:text" json:"department"`
	Year       *int    `gorm:"column:year;type:integer" json:"year"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
