package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Institution is a tenant managing its own students. The admin credentials
// stored here are the institution's login.
type Institution struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AdminName       string         `gorm:"type:varchar(255);not null" json:"adminName"`
	InstitutionName string         `gorm:"type:varchar(255);not null" json:"institutionName"`
	Email           string         `gorm:"type:varchar(255);not null" json:"email"`
	PasswordHash    string         `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Students []Student `gorm:"foreignKey:InstitutionID" json:"students,omitempty"`
}

func (Institution) TableName() string { return "institutions" }

func (i *Institution) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
