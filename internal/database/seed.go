package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user, a small category tree, and one published welcome post.
// No-op if users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@inkpress.local", string(hash), "Admin", "admin", false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// A two-level starter tree: General (1) > Announcements (1), Writing (2).
	var generalID string
	err = db.QueryRow(`
		INSERT INTO categories (name, parent_id, sort_order)
		VALUES ('General', NULL, 1)
		RETURNING id
	`).Scan(&generalID)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if _, err := db.Exec(`
		INSERT INTO categories (name, parent_id, sort_order)
		VALUES ('Announcements', $1, 1), ('Writing', NULL, 2)
	`, generalID); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	if _, err := db.Exec(`
		INSERT INTO posts (title, slug, body, status, category_id, author_id, published_at)
		VALUES ('Welcome to Inkpress', 'welcome-to-inkpress',
			'Your blog is running. Sign in at /admin to start writing.',
			'published', $1, $2, NOW())
	`, generalID, adminID); err != nil {
		return fmt.Errorf("seed welcome post: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@inkpress.local",
		"password", "admin",
	)
	return nil
}
