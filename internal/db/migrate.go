package db

import (
	"errors" // Error inspection

	"artspace/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// AdminSeed describes the account guaranteed to exist after startup and reset
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// Migrate performs automatic migration for the database schema
func Migrate(gdb *gorm.DB) error {
	// AutoMigrate will create tables, missing columns and indexes
	if err := gdb.AutoMigrate(&domain.User{}, &domain.Artwork{}); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// SeedAdmin inserts the seed admin account when its email is not taken yet
func SeedAdmin(gdb *gorm.DB, seed AdminSeed) error {
	var existing domain.User
	err := gdb.Where("email = ?", seed.Email).First(&existing).Error
	if err == nil {
		return nil // Already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	admin, err := seed.user()
	if err != nil {
		return err
	}
	if err := gdb.Create(admin).Error; err != nil {
		return err
	}
	logrus.WithField("email", seed.Email).Info("Seed admin created")
	return nil
}

// user builds the admin row with a hashed password
func (s AdminSeed) user() (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &domain.User{Name: s.Name, Email: s.Email, Password: string(hash), Role: domain.RoleAdmin}, nil
}
