package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MaintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) ListRecords(ctx context.Context) ([]*domain.MaintenanceRecord, error) {
	query := `SELECT id, bike_id, component_name, km_at_install, last_check_km, lifespan_limit, notes
              FROM maintenance ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*domain.MaintenanceRecord{}
	for rows.Next() {
		record := &domain.MaintenanceRecord{}
		var notes sql.NullString
		err := rows.Scan(
			&record.ID,
			&record.BikeID,
			&record.ComponentName,
			&record.KmAtInstall,
			&record.LastCheckKm,
			&record.LifespanLimit,
			&notes,
		)
		if err != nil {
			return nil, err
		}
		record.Notes = notes.String
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *MaintenanceRepository) UpsertRecord(ctx context.Context, record *domain.MaintenanceRecord) error {
	query := `INSERT INTO maintenance (id, bike_id, component_name, km_at_install, last_check_km, lifespan_limit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			component_name = EXCLUDED.component_name,
			km_at_install = EXCLUDED.km_at_install,
			last_check_km = EXCLUDED.last_check_km,
			lifespan_limit = EXCLUDED.lifespan_limit,
			notes = EXCLUDED.notes`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.BikeID,
		record.ComponentName,
		record.KmAtInstall,
		record.LastCheckKm,
		record.LifespanLimit,
		record.Notes,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return fmt.Errorf("required field is missing")
			case "23503":
				return fmt.Errorf("bike does not exist")
			default:
				return err
			}
		}
		return err
	}
	return nil
}

func (r *MaintenanceRepository) DeleteRecord(ctx context.Context, recordID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM maintenance WHERE id = $1`, recordID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("maintenance record %s: %w", recordID, domain.ErrNotFound)
	}
	return nil
}

func (r *MaintenanceRepository) ListHistory(ctx context.Context) ([]*domain.MaintenanceHistory, error) {
	query := `SELECT id, bike_id, component_name, replaced_at_km, distance_covered, notes, replacement_date
              FROM maintenance_history ORDER BY replacement_date`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.MaintenanceHistory{}
	for rows.Next() {
		entry := &domain.MaintenanceHistory{}
		var notes sql.NullString
		err := rows.Scan(
			&entry.ID,
			&entry.BikeID,
			&entry.ComponentName,
			&entry.ReplacedAtKm,
			&entry.DistanceCovered,
			&notes,
			&entry.ReplacementDate,
		)
		if err != nil {
			return nil, err
		}
		entry.Notes = notes.String
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *MaintenanceRepository) UpsertHistory(ctx context.Context, entry *domain.MaintenanceHistory) error {
	// History rows are immutable in the application; the upsert only
	// makes retried appends idempotent.
	query := `INSERT INTO maintenance_history (id, bike_id, component_name, replaced_at_km, distance_covered, notes, replacement_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.BikeID,
		entry.ComponentName,
		entry.ReplacedAtKm,
		entry.DistanceCovered,
		entry.Notes,
		entry.ReplacementDate,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("bike does not exist")
		}
		return err
	}
	return nil
}

func (r *MaintenanceRepository) DeleteHistory(ctx context.Context, entryID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM maintenance_history WHERE id = $1`, entryID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("history entry %s: %w", entryID, domain.ErrNotFound)
	}
	return nil
}
