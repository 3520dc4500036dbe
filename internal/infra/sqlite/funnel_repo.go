package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MihanyaZaretsky/nimble3tgbot/internal/usecase"
)

type FunnelRepo struct {
	db *sql.DB
}

func NewFunnelRepo(dsn string) (*FunnelRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open funnel db: %w", err)
	}
	// single writer, avoids SQLITE_BUSY between the poll loop and /stats
	db.SetMaxOpenConns(1)
	if err := migrateFunnel(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate funnel db: %w", err)
	}
	return &FunnelRepo{db: db}, nil
}

func migrateFunnel(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS funnel_hits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id INTEGER NOT NULL,
    stage TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_funnel_hits_stage ON funnel_hits(stage);
CREATE INDEX IF NOT EXISTS idx_funnel_hits_chat_stage ON funnel_hits(chat_id, stage);
`)
	return err
}

func (r *FunnelRepo) Hit(stage usecase.Stage, chatID int64) error {
	if stage == "" {
		return usecase.ErrEmptyStage
	}
	_, err := r.db.Exec(`INSERT INTO funnel_hits(chat_id, stage, created_at) VALUES(?,?,?)`, chatID, string(stage), time.Now())
	return err
}

func (r *FunnelRepo) Counts() (map[usecase.Stage]int, error) {
	rows, err := r.db.Query(`SELECT stage, COUNT(DISTINCT chat_id) FROM funnel_hits GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("query funnel counts: %w", err)
	}
	defer rows.Close()
	out := map[usecase.Stage]int{}
	for rows.Next() {
		var stage string
		var cnt int
		if err := rows.Scan(&stage, &cnt); err != nil {
			return nil, fmt.Errorf("scan funnel counts: %w", err)
		}
		out[usecase.Stage(stage)] = cnt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read funnel counts: %w", err)
	}
	return out, nil
}

func (r *FunnelRepo) Close() error { return r.db.Close() }
