package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/google/uuid"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetSetting(ctx context.Context, userID uuid.UUID, id string) (json.RawMessage, error) {
	query := `SELECT value FROM settings WHERE user_id = $1 AND id = $2`

	var value []byte
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("setting %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *SettingsRepository) PutSetting(ctx context.Context, userID uuid.UUID, id string, value json.RawMessage) error {
	query := `INSERT INTO settings (id, user_id, value, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (id, user_id) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = CURRENT_TIMESTAMP`

	_, err := r.db.ExecContext(ctx, query, id, userID, []byte(value))
	return err
}

func (r *SettingsRepository) DeleteSetting(ctx context.Context, userID uuid.UUID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE user_id = $1 AND id = $2`, userID, id)
	return err
}
