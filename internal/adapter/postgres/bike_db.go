package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BikeRepository struct {
	db *sql.DB
}

func NewBikeRepository(db *sql.DB) *BikeRepository {
	return &BikeRepository{db: db}
}

func (r *BikeRepository) ListBikes(ctx context.Context, userID uuid.UUID) ([]*domain.Bike, error) {
	query := `SELECT id, user_id, name, type, strava_gear_id, total_km, product_url, specs, created_at
              FROM bikes WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bikes := []*domain.Bike{}
	for rows.Next() {
		bike := &domain.Bike{}
		var gearID, productURL sql.NullString
		var specs []byte
		err := rows.Scan(
			&bike.ID,
			&bike.UserID,
			&bike.Name,
			&bike.Type,
			&gearID,
			&bike.TotalKm,
			&productURL,
			&specs,
			&bike.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if gearID.Valid {
			bike.StravaGearID = &gearID.String
		}
		bike.ProductURL = productURL.String
		if len(specs) > 0 {
			bike.Specs = &domain.BikeSpecs{}
			if err := json.Unmarshal(specs, bike.Specs); err != nil {
				return nil, fmt.Errorf("decode specs for bike %s: %w", bike.ID, err)
			}
		}
		bikes = append(bikes, bike)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (r *BikeRepository) UpsertBike(ctx context.Context, bike *domain.Bike) error {
	query := `INSERT INTO bikes (id, user_id, name, type, strava_gear_id, total_km, product_url, specs, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			strava_gear_id = EXCLUDED.strava_gear_id,
			total_km = EXCLUDED.total_km,
			product_url = EXCLUDED.product_url,
			specs = EXCLUDED.specs`

	var specs []byte
	if bike.Specs != nil {
		var err error
		specs, err = json.Marshal(bike.Specs)
		if err != nil {
			return fmt.Errorf("encode specs: %w", err)
		}
	}

	var gearID sql.NullString
	if bike.StravaGearID != nil {
		gearID = sql.NullString{String: *bike.StravaGearID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		bike.ID,
		bike.UserID,
		bike.Name,
		bike.Type,
		gearID,
		bike.TotalKm,
		bike.ProductURL,
		specs,
		bike.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return fmt.Errorf("required field is missing")
			default:
				return err
			}
		}
		return err
	}
	return nil
}

func (r *BikeRepository) DeleteBike(ctx context.Context, bikeID uuid.UUID) error {
	query := `DELETE FROM bikes WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, bikeID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("bike %s: %w", bikeID, domain.ErrNotFound)
	}
	return nil
}
