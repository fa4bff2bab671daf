package database

import (
	"fmt"
	"log"
)

// Migration is one named schema change. Statements run in order inside a
// single transaction, and the migration is recorded in the migrations table
// within that same transaction so a crash mid-sequence leaves no partial
// state behind (on MySQL, DDL commits implicitly; that residual risk is
// inherited from the engine, not this runner).
type Migration struct {
	Name       string
	Statements []string
}

// migrationSets holds the ordered migration list per dialect, keyed by
// Dialect.MigrationsKey()
var migrationSets = map[string][]Migration{
	"sqlite":   sqliteMigrations,
	"postgres": postgresMigrations,
	"mysql":    mysqlMigrations,
}

// RunMigrations applies every migration not yet recorded for this database
func (db *DB) RunMigrations() error {
	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	set, ok := migrationSets[db.Dialect.MigrationsKey()]
	if !ok {
		return fmt.Errorf("no migrations defined for dialect %s", db.Dialect.MigrationsKey())
	}

	for _, migration := range set {
		hasRun, err := db.hasMigrationRun(migration.Name)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if hasRun {
			continue
		}

		if err := db.executeMigration(migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Name, err)
		}

		log.Printf("Migration completed: %s", migration.Name)
	}

	return nil
}

// createMigrationsTable creates the table to track completed migrations
func (db *DB) createMigrationsTable() error {
	_, err := db.Exec(db.Dialect.CreateMigrationsTableQuery())
	return err
}

// hasMigrationRun checks if a migration has already been executed
func (db *DB) hasMigrationRun(name string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM migrations WHERE name = ?"
	err := db.QueryRow(query, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// executeMigration runs one migration and records it, all in one transaction
func (db *DB) executeMigration(migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, statement := range migration.Statements {
		if _, err := tx.Exec(statement); err != nil {
			return err
		}
	}

	if _, err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", migration.Name); err != nil {
		return err
	}

	return tx.Commit()
}

var sqliteMigrations = []Migration{
	{
		Name: "001_initial_schema",
		Statements: []string{
			`CREATE TABLE profiles (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				uid TEXT UNIQUE NOT NULL,
				name TEXT NOT NULL,
				reading_level TEXT NOT NULL DEFAULT 'Explorer',
				avatar TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE savings_jug (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				balance REAL NOT NULL DEFAULT 0,
				profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE savings_transaction (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				jug_id INTEGER NOT NULL REFERENCES savings_jug(id) ON DELETE CASCADE,
				memo TEXT NOT NULL DEFAULT '',
				amount REAL NOT NULL,
				entry_date TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_transaction_jug ON savings_transaction(jug_id)`,
			`CREATE INDEX idx_transaction_date ON savings_transaction(entry_date)`,
			`CREATE TABLE chapters (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_title TEXT NOT NULL,
				chapter_number INTEGER NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				reading_level TEXT NOT NULL DEFAULT 'Explorer',
				word_count INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_chapters_book ON chapters(book_title, chapter_number)`,
			`CREATE TABLE chapter_completion (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				learner_id TEXT NOT NULL,
				chapter_id INTEGER NOT NULL,
				duration_seconds INTEGER NOT NULL DEFAULT 0,
				score INTEGER NOT NULL DEFAULT 0,
				completed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				UNIQUE(learner_id, chapter_id, profile_id)
			)`,
			`CREATE TABLE question_report (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				question_id TEXT NOT NULL,
				outcome TEXT NOT NULL,
				entry_date TEXT NOT NULL,
				profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_question_report_date ON question_report(profile_id, entry_date)`,
			`CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE parents (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT UNIQUE NOT NULL,
				pin_hash TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		Name: "002_add_jug_emoji",
		Statements: []string{
			`ALTER TABLE savings_jug ADD COLUMN emoji TEXT NOT NULL DEFAULT ''`,
		},
	},
	{
		// Review reads: a learner may re-read a chapter they already
		// finished, so the one-row-per-(learner, chapter, profile)
		// constraint moves from the schema to the callers. Rebuild via a
		// shadow table because SQLite cannot drop a UNIQUE constraint in
		// place.
		Name: "003_allow_review_reads",
		Statements: []string{
			`CREATE TABLE chapter_completion_new (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				learner_id TEXT NOT NULL,
				chapter_id INTEGER NOT NULL,
				duration_seconds INTEGER NOT NULL DEFAULT 0,
				score INTEGER NOT NULL DEFAULT 0,
				completed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE
			)`,
			`INSERT INTO chapter_completion_new (id, learner_id, chapter_id, duration_seconds, score, completed_at, profile_id)
				SELECT id, learner_id, chapter_id, duration_seconds, score, completed_at, profile_id FROM chapter_completion`,
			`DROP TABLE chapter_completion`,
			`ALTER TABLE chapter_completion_new RENAME TO chapter_completion`,
			`CREATE INDEX idx_completion_lookup ON chapter_completion(learner_id, chapter_id, profile_id)`,
		},
	},
}

var postgresMigrations = []Migration{
	{
		Name: "001_initial_schema",
		Statements: []string{
			`CREATE TABLE profiles (
				id BIGSERIAL PRIMARY KEY,
				uid TEXT UNIQUE NOT NULL,
				name TEXT NOT NULL,
				reading_level TEXT NOT NULL DEFAULT 'Explorer',
				avatar TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE savings_jug (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL,
				balance DOUBLE PRECISION NOT NULL DEFAULT 0,
				profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE savings_transaction (
				id BIGSERIAL PRIMARY KEY,
				jug_id BIGINT NOT NULL REFERENCES savings_jug(id) ON DELETE CASCADE,
				memo TEXT NOT NULL DEFAULT '',
				amount DOUBLE PRECISION NOT NULL,
				entry_date TEXT NOT NULL,
				created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_transaction_jug ON savings_transaction(jug_id)`,
			`CREATE INDEX idx_transaction_date ON savings_transaction(entry_date)`,
			`CREATE TABLE chapters (
				id BIGSERIAL PRIMARY KEY,
				book_title TEXT NOT NULL,
				chapter_number INTEGER NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				reading_level TEXT NOT NULL DEFAULT 'Explorer',
				word_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_chapters_book ON chapters(book_title, chapter_number)`,
			`CREATE TABLE chapter_completion (
				id BIGSERIAL PRIMARY KEY,
				learner_id TEXT NOT NULL,
				chapter_id BIGINT NOT NULL,
				duration_seconds INTEGER NOT NULL DEFAULT 0,
				score INTEGER NOT NULL DEFAULT 0,
				completed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
				profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				UNIQUE(learner_id, chapter_id, profile_id)
			)`,
			`CREATE TABLE question_report (
				id BIGSERIAL PRIMARY KEY,
				question_id TEXT NOT NULL,
				outcome TEXT NOT NULL,
				entry_date TEXT NOT NULL,
				profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_question_report_date ON question_report(profile_id, entry_date)`,
			`CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE parents (
				id BIGSERIAL PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				pin_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		Name: "002_add_jug_emoji",
		Statements: []string{
			`ALTER TABLE savings_jug ADD COLUMN emoji TEXT NOT NULL DEFAULT ''`,
		},
	},
	{
		Name: "003_allow_review_reads",
		Statements: []string{
			`ALTER TABLE chapter_completion DROP CONSTRAINT chapter_completion_learner_id_chapter_id_profile_id_key`,
			`CREATE INDEX idx_completion_lookup ON chapter_completion(learner_id, chapter_id, profile_id)`,
		},
	},
}

var mysqlMigrations = []Migration{
	{
		Name: "001_initial_schema",
		Statements: []string{
			`CREATE TABLE profiles (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				uid VARCHAR(64) UNIQUE NOT NULL,
				name VARCHAR(255) NOT NULL,
				reading_level VARCHAR(32) NOT NULL DEFAULT 'Explorer',
				avatar VARCHAR(255) NOT NULL DEFAULT '',
				created_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
				updated_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
			)`,
			`CREATE TABLE savings_jug (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				balance DOUBLE NOT NULL DEFAULT 0,
				profile_id BIGINT NOT NULL,
				created_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
				updated_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
				FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE savings_transaction (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				jug_id BIGINT NOT NULL,
				memo VARCHAR(255) NOT NULL DEFAULT '',
				amount DOUBLE NOT NULL,
				entry_date VARCHAR(10) NOT NULL,
				created_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
				FOREIGN KEY (jug_id) REFERENCES savings_jug(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX idx_transaction_date ON savings_transaction(entry_date)`,
			`CREATE TABLE chapters (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				book_title VARCHAR(255) NOT NULL,
				chapter_number INT NOT NULL,
				title VARCHAR(255) NOT NULL DEFAULT '',
				reading_level VARCHAR(32) NOT NULL DEFAULT 'Explorer',
				word_count INT NOT NULL DEFAULT 0,
				created_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
			)`,
			`CREATE INDEX idx_chapters_book ON chapters(book_title, chapter_number)`,
			`CREATE TABLE chapter_completion (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				learner_id VARCHAR(64) NOT NULL,
				chapter_id BIGINT NOT NULL,
				duration_seconds INT NOT NULL DEFAULT 0,
				score INT NOT NULL DEFAULT 0,
				completed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
				profile_id BIGINT NOT NULL,
				UNIQUE KEY uq_completion (learner_id, chapter_id, profile_id),
				FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE question_report (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				question_id VARCHAR(64) NOT NULL,
				outcome VARCHAR(16) NOT NULL,
				entry_date VARCHAR(10) NOT NULL,
				profile_id BIGINT NOT NULL,
				created_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
				FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
			)`,
			"CREATE INDEX idx_question_report_date ON question_report(profile_id, entry_date)",
			"CREATE TABLE settings (`key` VARCHAR(191) PRIMARY KEY, `value` TEXT NOT NULL, updated_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6))",
			`CREATE TABLE parents (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				email VARCHAR(255) UNIQUE NOT NULL,
				pin_hash VARCHAR(255) NOT NULL,
				created_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
				updated_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
			)`,
		},
	},
	{
		Name: "002_add_jug_emoji",
		Statements: []string{
			`ALTER TABLE savings_jug ADD COLUMN emoji VARCHAR(16) NOT NULL DEFAULT ''`,
		},
	},
	{
		Name: "003_allow_review_reads",
		Statements: []string{
			`ALTER TABLE chapter_completion DROP INDEX uq_completion`,
			`CREATE INDEX idx_completion_lookup ON chapter_completion(learner_id, chapter_id, profile_id)`,
		},
	},
}
