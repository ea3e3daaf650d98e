package models

import "gorm.io/gorm"

// StaffUser — учётная запись сотрудника для режима прямого подключения к БД.
type StaffUser struct {
	gorm.Model
	UID          string `gorm:"uniqueIndex;size:36;not null"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"not null"`
	Agent        string `gorm:"size:100"` // имя из списка агентов, если сотрудник ведёт заявки
}
