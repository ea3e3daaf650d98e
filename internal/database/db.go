package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"inquiry-dashboard/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init подключается к БД с повторными попытками.
func Init(dsn string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Printf("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Println("connected to DB successfully")
			break
		}

		log.Printf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}
}

// Migrate создаёт таблицы заявок, сотрудников и аудита.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Inquiry{},
		&models.StaffUser{},
		&models.AuditLog{},
	)
}

// SeedStaff создаёт сотрудника, если такого email ещё нет. Возвращает false,
// если пользователь уже существовал.
func SeedStaff(db *gorm.DB, email, password, agent string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 6 {
		return false, fmt.Errorf("email is required and password must be at least 6 characters")
	}

	var count int64
	if err := db.Model(&models.StaffUser{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check staff user %s: %w", email, err)
	}
	if count > 0 {
		// уже есть, ничего не делаем
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password for %s: %w", email, err)
	}

	user := models.StaffUser{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Agent:        agent,
	}
	if err := db.Create(&user).Error; err != nil {
		return false, fmt.Errorf("failed to create staff user %s: %w", email, err)
	}
	return true, nil
}

// SeedDefaultAdmin — учётка из конфига, чтобы было с чем войти в пустую БД.
func SeedDefaultAdmin(db *gorm.DB, email, password, agent string) {
	if email == "" || password == "" {
		return
	}
	created, err := SeedStaff(db, email, password, agent)
	if err != nil {
		log.Printf("failed to create default staff user: %v", err)
		return
	}
	if created {
		log.Printf("created default staff user: %s", email)
	}
}
