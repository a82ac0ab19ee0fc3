package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactMessage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Phone     *string   `gorm:"column:phone"`
	Subject   *string   `gorm:"column:subject"`
	Message   string    `gorm:"column:message;not null"`
	RemoteIP  *string   `gorm:"column:remote_ip"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ContactMessage) TableName() string { return "contact_messages" }

func (m *ContactMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
