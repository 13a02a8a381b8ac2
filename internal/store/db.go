// Package store is the relational side of the portal: the authoritative
// users and receipts tables and their repositories.
package store

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

// Open connects to postgres when databaseURL is set and falls back to a
// local sqlite file otherwise, then runs migrations. The returned handle
// owns the connection pool shared by all repositories.
func Open(databaseURL, sqlitePath string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if databaseURL != "" {
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	} else {
		log.Printf("store: DATABASE_URL not set, using local sqlite at %s", sqlitePath)
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Receipt{}); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}

// NowISO returns the current time in ISO8601 format.
func NowISO() string { return time.Now().UTC().Format(time.RFC3339) }
