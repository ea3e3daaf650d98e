package database

import (
	"fmt"
	"sort"
	"strings"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/models"

	"gorm.io/gorm"
)

// CreateAuditLog записывает изменение строки в журнал аудита.
func CreateAuditLog(tx *gorm.DB, user backend.User, entity string, entityID int64, action, details string) error {
	record := models.AuditLog{
		UserUID:   user.ID,
		UserEmail: user.Email,
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Details:   details,
	}
	return tx.Create(&record).Error
}

// describeFields формирует строку вида "Agent=Azam; Stage=Sold" в стабильном порядке.
func describeFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, "; ")
}

// filterID достаёт id строки из условия, если оно есть.
func filterID(filter backend.Filter) int64 {
	for _, cond := range filter {
		if cond.Column != models.ColumnID {
			continue
		}
		switch v := cond.Value.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case uint:
			return int64(v)
		}
	}
	return 0
}
