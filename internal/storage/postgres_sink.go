package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // Import the driver
	"table-scraper/pkg/models"
)

type Storage struct {
	db *sql.DB
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Open connects to Postgres, retrying while the database comes up.
func Open(url string, attempts int, wait time.Duration) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < attempts; i++ {
		db, err = sql.Open("pgx", url)
		if err == nil {
			if err = db.Ping(); err == nil {
				return db, nil
			}
			db.Close()
		}
		log.Printf("Waiting for DB... (%v)", err)
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("could not connect to DB after %d attempts: %w", attempts, err)
}

// PostgresSink implements engine.Sink for saving records to Postgres.
type PostgresSink struct {
	*Storage
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{Storage: NewStorage(db)}
}

const createRecordsTable = `
	CREATE TABLE IF NOT EXISTS records (
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		price       TEXT NOT NULL,
		rating      TEXT NOT NULL,
		url         TEXT NOT NULL,
		scraped_at  TIMESTAMPTZ NOT NULL
	)`

// Save inserts the batch in one transaction. Records are appended, not deduplicated.
func (s *PostgresSink) Save(batch []models.Record) error {
	if _, err := s.db.Exec(createRecordsTable); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (name, description, price, rating, url, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, r := range batch {
		if _, err := stmt.Exec(r.Name, r.Description, r.Price, r.Rating, r.URL, now); err != nil {
			return fmt.Errorf("insert record from %s: %w", r.URL, err)
		}
	}

	return tx.Commit()
}
