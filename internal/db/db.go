package db

import (
	"database/sql"
	"os"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Path returns the SQLite database file path from env.
func Path() string {
	if p := os.Getenv("HEALTH_DB_PATH"); p != "" {
		return p
	}
	return "health_data.db"
}

// Connect opens the single-file SQLite database. database/sql acts as the
// bounded connection pool; HEALTH_DB_MAX_CONNS caps open connections.
func Connect() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", Path()+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	maxConns := 4
	if v := os.Getenv("HEALTH_DB_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxConns = n
		}
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// EnsureSchema creates required tables and indexes if not exist.
// Referential integrity is handled by application-level cascading deletes;
// SQLite does not enforce the declared foreign keys by default.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			theme TEXT DEFAULT 'light',
			totp_secret TEXT DEFAULT '',
			totp_enabled INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS patients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			age INTEGER CHECK(age >= 1 AND age <= 13),
			bmi REAL CHECK(bmi >= 10 AND bmi <= 100),
			high_bp INTEGER CHECK(high_bp IN (0, 1)),
			high_chol INTEGER CHECK(high_chol IN (0, 1)),
			chol_check INTEGER CHECK(chol_check IN (0, 1)),
			smoker INTEGER CHECK(smoker IN (0, 1)),
			stroke INTEGER CHECK(stroke IN (0, 1)),
			heart_disease INTEGER CHECK(heart_disease IN (0, 1)),
			phys_activity INTEGER CHECK(phys_activity IN (0, 1)),
			fruits INTEGER CHECK(fruits IN (0, 1)),
			veggies INTEGER CHECK(veggies IN (0, 1)),
			hvy_alcohol INTEGER CHECK(hvy_alcohol IN (0, 1)),
			any_healthcare INTEGER CHECK(any_healthcare IN (0, 1)),
			no_doc_cost INTEGER CHECK(no_doc_cost IN (0, 1)),
			gen_health INTEGER CHECK(gen_health >= 1 AND gen_health <= 5),
			ment_health INTEGER CHECK(ment_health >= 0 AND ment_health <= 30),
			phys_health INTEGER CHECK(phys_health >= 0 AND phys_health <= 30),
			diff_walk INTEGER CHECK(diff_walk IN (0, 1)),
			sex INTEGER CHECK(sex IN (0, 1)),
			education INTEGER CHECK(education >= 1 AND education <= 6),
			income INTEGER CHECK(income >= 1 AND income <= 8),
			prediction INTEGER CHECK(prediction IN (0, 1)),
			probability REAL CHECK(probability >= 0 AND probability <= 1),
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			prediction_type TEXT NOT NULL,
			probability REAL CHECK(probability >= 0 AND probability <= 100),
			outcome TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS password_resets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			token TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contact_submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reference TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			subject TEXT NOT NULL,
			message TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_patients_timestamp ON patients(timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_patients_user_id ON patients(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_user_id ON predictions(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_timestamp ON predictions(timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
