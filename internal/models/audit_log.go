package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time

	UserUID   string `gorm:"size:36;index"`
	UserEmail string `gorm:"size:255"`

	Entity   string `gorm:"size:50;not null"` // имя таблицы, например "WebsiteInquiries"
	EntityID int64  `gorm:"index"`
	Action   string `gorm:"size:50;not null"` // "update"
	Details  string `gorm:"type:text"`
}

func (AuditLog) TableName() string { return "inquiry_audit_logs" }
