package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to PostgreSQL...")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ Database connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		log.Printf("❌ Database ping failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('customer', 'operator', 'collector1', 'collector2', 'collector3')),
			address TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create bins table
		`CREATE TABLE IF NOT EXISTS bins (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			address TEXT NOT NULL,
			area TEXT NOT NULL,
			fill_level INT NOT NULL DEFAULT 0,
			battery INT NOT NULL DEFAULT 100,
			status TEXT NOT NULL DEFAULT 'Empty',
			needs_maintenance BOOLEAN NOT NULL DEFAULT FALSE,
			last_emptied_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (owner_id) REFERENCES users(id)
		)`,

		// Create waste_requests table
		`CREATE TABLE IF NOT EXISTS waste_requests (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			bin_id TEXT NOT NULL,
			waste_type TEXT NOT NULL CHECK(waste_type IN ('food', 'polythene', 'paper', 'hazardous', 'ewaste')),
			preferred_date TEXT NOT NULL,
			preferred_time_slot TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'approved', 'completed', 'cancelled')),
			payment_status TEXT NOT NULL DEFAULT 'pending' CHECK(payment_status IN ('pending', 'paid', 'failed')),
			cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			assigned_worker_id TEXT,
			assigned_by_id TEXT,
			assigned_at BIGINT,
			scheduled_date TEXT,
			scheduled_time_slot TEXT,
			route_id TEXT,
			notes TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (bin_id) REFERENCES bins(id)
		)`,

		// Create routes table
		`CREATE TABLE IF NOT EXISTS routes (
			id TEXT PRIMARY KEY,
			collector_id TEXT NOT NULL,
			date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'assigned' CHECK(status IN ('assigned', 'in_progress', 'completed', 'cancelled')),
			area TEXT NOT NULL DEFAULT '',
			total_bins INT NOT NULL DEFAULT 0,
			completed_bins INT NOT NULL DEFAULT 0,
			estimated_duration INT NOT NULL DEFAULT 0,
			actual_duration INT,
			start_time BIGINT,
			end_time BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (collector_id) REFERENCES users(id)
		)`,

		// Create route_bins table
		`CREATE TABLE IF NOT EXISTS route_bins (
			id SERIAL PRIMARY KEY,
			route_id TEXT NOT NULL,
			bin_id TEXT NOT NULL,
			request_id TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'normal',
			estimated_minutes INT NOT NULL DEFAULT 0,
			sequence_order INT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'in_progress', 'completed', 'failed')),
			customer_name TEXT NOT NULL DEFAULT '',
			customer_address TEXT NOT NULL DEFAULT '',
			completed_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE
		)`,

		// Create collections table
		`CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			bin_id TEXT NOT NULL,
			collector_id TEXT NOT NULL,
			method TEXT NOT NULL CHECK(method IN ('scan', 'manual')),
			outcome TEXT NOT NULL CHECK(outcome IN ('collected', 'failed')),
			issue TEXT,
			collected_at BIGINT NOT NULL,
			FOREIGN KEY (request_id) REFERENCES waste_requests(id)
		)`,

		// Create notifications table
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			related_id TEXT NOT NULL DEFAULT '',
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		// Create fcm_tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL DEFAULT 'android',
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		// Indexes on the conflict-check and listing paths
		`CREATE INDEX IF NOT EXISTS idx_requests_bin_date ON waste_requests(bin_id, preferred_date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_worker_schedule ON waste_requests(assigned_worker_id, scheduled_date, scheduled_time_slot)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_user ON waste_requests(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_collector_date ON routes(collector_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_route_bins_route ON route_bins(route_id)`,
		`CREATE INDEX IF NOT EXISTS idx_route_bins_request ON route_bins(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_request ON collections(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("✅ Database migrations completed")
	return nil
}
