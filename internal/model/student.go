package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Student struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Email         string         `gorm:"type:varchar(255);not null" json:"email"`
	Standard      string         `gorm:"type:varchar(32);not null" json:"standard"`
	Division      string         `gorm:"type:varchar(32);not null" json:"division"`
	RollNumber    string         `gorm:"type:varchar(64);not null" json:"rollNumber"`
	InstitutionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"institutionId"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Student) TableName() string { return "students" }

func (s *Student) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
