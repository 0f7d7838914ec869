package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otcraft/mobsim/internal/model"
)

// SpawnRepository loads spawn points.
type SpawnRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnRepository creates a spawn point repository.
func NewSpawnRepository(pool *pgxpool.Pool) *SpawnRepository {
	return &SpawnRepository{pool: pool}
}

// LoadAll loads every spawn point.
func (r *SpawnRepository) LoadAll(ctx context.Context) ([]model.SpawnPoint, error) {
	query := `
		SELECT id, archetype_id, x, y, z, radius, respawn_delay_ms
		FROM spawn_points
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading spawn points: %w", err)
	}
	defer rows.Close()

	points := make([]model.SpawnPoint, 0, 64)
	for rows.Next() {
		var (
			sp      model.SpawnPoint
			delayMs int64
		)
		err := rows.Scan(&sp.ID, &sp.ArchetypeID,
			&sp.Position.X, &sp.Position.Y, &sp.Position.Z,
			&sp.Radius, &delayMs)
		if err != nil {
			return nil, fmt.Errorf("scanning spawn point: %w", err)
		}
		sp.RespawnDelay = time.Duration(delayMs) * time.Millisecond
		points = append(points, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn points: %w", err)
	}
	return points, nil
}
