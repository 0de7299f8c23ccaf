package database

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
)

// SeedUsers inserts the default operator, collector and demo customer
// accounts. Runs once; a non-empty users table is left untouched.
func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		log.Println("📋 Users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := []models.User{
		{ID: "operator-001", Email: "operator@urbancleanse.lk", Name: "Dilani Perera", Role: models.RoleOperator, Address: "Head Office, Colombo 03"},
		{ID: "collector-001", Email: "collector1@urbancleanse.lk", Name: "Sunil Fernando", Role: models.RoleCollector1, Address: "Depot A, Colombo 05"},
		{ID: "collector-002", Email: "collector2@urbancleanse.lk", Name: "Ruwan Silva", Role: models.RoleCollector2, Address: "Depot A, Colombo 05"},
		{ID: "collector-003", Email: "collector3@urbancleanse.lk", Name: "Kasun Jayasuriya", Role: models.RoleCollector3, Address: "Depot B, Dehiwala"},
		{ID: "customer-001", Email: "nimal@example.com", Name: "Nimal Gunaratne", Role: models.RoleCustomer, Address: "42 Galle Road, Colombo 04"},
		{ID: "customer-002", Email: "sanduni@example.com", Name: "Sanduni Wickrama", Role: models.RoleCustomer, Address: "15 Temple Lane, Nugegoda"},
	}

	now := time.Now().Unix()
	for _, u := range users {
		_, err := db.Exec(`
			INSERT INTO users (id, email, password, name, role, address, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
		`, u.ID, u.Email, string(hash), u.Name, u.Role, u.Address, now)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	log.Printf("✅ Seeded %d users", len(users))
	return nil
}

// SeedBins inserts a starter set of smart bins for the demo customers.
func SeedBins(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bins"); err != nil {
		return fmt.Errorf("count bins: %w", err)
	}
	if count > 0 {
		log.Println("📋 Bins already seeded, skipping")
		return nil
	}

	type seedBin struct {
		id        string
		ownerID   string
		address   string
		area      string
		fillLevel int
		battery   int
	}
	bins := []seedBin{
		{"BIN-1700000000001-SD01", "customer-001", "42 Galle Road, Colombo 04", "Colombo 04", 35, 95},
		{"BIN-1700000000002-SD02", "customer-001", "42 Galle Road, Colombo 04", "Colombo 04", 70, 80},
		{"BIN-1700000000003-SD03", "customer-002", "15 Temple Lane, Nugegoda", "Nugegoda", 10, 100},
		{"BIN-1700000000004-SD04", "customer-002", "15 Temple Lane, Nugegoda", "Nugegoda", 85, 15},
	}

	now := time.Now().Unix()
	for _, b := range bins {
		_, err := db.Exec(`
			INSERT INTO bins (id, owner_id, address, area, fill_level, battery, status, needs_maintenance, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		`, b.id, b.ownerID, b.address, b.area, b.fillLevel, b.battery,
			models.BinStatusFor(b.fillLevel), models.NeedsMaintenanceFor(b.fillLevel, b.battery), now)
		if err != nil {
			return fmt.Errorf("seed bin %s: %w", b.id, err)
		}
	}

	log.Printf("✅ Seeded %d bins", len(bins))
	return nil
}
