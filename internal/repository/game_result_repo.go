package repository

import (
	"context"
	"fmt"

	"playground_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxResultsPage = 100

type GameResultRepository struct {
	db *pgxpool.Pool
}

func NewGameResultRepository(db *pgxpool.Pool) *GameResultRepository {
	return &GameResultRepository{db: db}
}

// Create inserts one result and fills in its ID and creation time.
func (r *GameResultRepository) Create(ctx context.Context, res *domain.GameResult) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO game_results (session_id, game_type, user_id, seat, model_name, is_human, outcome, reward, iterations, reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		res.SessionID, res.GameType, res.UserID, res.Seat, res.ModelName,
		res.IsHuman, res.Outcome, res.Reward, res.Iterations, res.Reason,
	).Scan(&res.ID, &res.CreatedAt)
}

// SaveResults stores all seats of a session in one transaction.
func (r *GameResultRepository) SaveResults(ctx context.Context, results []domain.GameResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, res := range results {
		batch.Queue(
			`INSERT INTO game_results (session_id, game_type, user_id, seat, model_name, is_human, outcome, reward, iterations, reason, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (session_id, seat) DO NOTHING`,
			res.SessionID, res.GameType, res.UserID, res.Seat, res.ModelName,
			res.IsHuman, res.Outcome, res.Reward, res.Iterations, res.Reason, res.CreatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert results for session %s: %w", results[0].SessionID, err)
	}
	return tx.Commit(ctx)
}

// ListByUser returns the user's most recent results, newest first.
func (r *GameResultRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.GameResult, error) {
	if limit <= 0 || limit > maxResultsPage {
		limit = maxResultsPage
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, game_type, user_id, seat, model_name, is_human, outcome, reward, iterations, reason, created_at
		 FROM game_results
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.GameResult
	for rows.Next() {
		var g domain.GameResult
		if err := rows.Scan(
			&g.ID, &g.SessionID, &g.GameType, &g.UserID, &g.Seat, &g.ModelName,
			&g.IsHuman, &g.Outcome, &g.Reward, &g.Iterations, &g.Reason, &g.CreatedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

// ListBySession returns every seat recorded for a session.
func (r *GameResultRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.GameResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, game_type, user_id, seat, model_name, is_human, outcome, reward, iterations, reason, created_at
		 FROM game_results
		 WHERE session_id = $1
		 ORDER BY seat`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[domain.GameResult])
}

// StatsByUser aggregates results per game type.
func (r *GameResultRepository) StatsByUser(ctx context.Context, userID int64) ([]domain.ResultStats, error) {
	rows, err := r.db.Query(ctx,
		`SELECT game_type, COUNT(*), COUNT(*) FILTER (WHERE outcome >= 1), COALESCE(SUM(outcome), 0)
		 FROM game_results
		 WHERE user_id = $1
		 GROUP BY game_type
		 ORDER BY game_type`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.ResultStats
	for rows.Next() {
		var s domain.ResultStats
		if err := rows.Scan(&s.GameType, &s.Played, &s.Wins, &s.Score); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
