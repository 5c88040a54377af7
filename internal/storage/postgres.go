package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"PokerRooms/internal/game/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS hand_results (
	id          BIGSERIAL PRIMARY KEY,
	room_id     TEXT        NOT NULL,
	hand        INTEGER     NOT NULL,
	winner      TEXT        NOT NULL,
	amount      BIGINT      NOT NULL,
	contenders  JSONB       NOT NULL,
	community   JSONB       NOT NULL,
	resolved_at TIMESTAMPTZ NOT NULL
)`

const insertResult = `
INSERT INTO hand_results (room_id, hand, winner, amount, contenders, community, resolved_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// HandHistory 把每手牌的结果写入 Postgres
type HandHistory struct {
	db *sql.DB
}

func InitPostgres(ctx context.Context, dsn string) (*HandHistory, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create hand_results: %w", err)
	}
	return &HandHistory{db: db}, nil
}

func (h *HandHistory) Record(ctx context.Context, r engine.HandResult) error {
	contenders, err := json.Marshal(r.Contenders)
	if err != nil {
		return err
	}
	community, err := json.Marshal(r.Community)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx, insertResult,
		r.RoomID, r.Hand, r.Winner, r.Amount, contenders, community, r.ResolvedAt)
	return err
}

func (h *HandHistory) Close() error {
	return h.db.Close()
}
