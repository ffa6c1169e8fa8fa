package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type WishlistRepository struct {
	db *sql.DB
}

func NewWishlistRepository(db *sql.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	query := `SELECT id, user_id, name, category, is_purchased, price_estimate, product_url, notes, created_at
              FROM wishlist WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.WishlistItem{}
	for rows.Next() {
		item := &domain.WishlistItem{}
		var category, productURL, notes sql.NullString
		var price sql.NullFloat64
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Name,
			&category,
			&item.IsPurchased,
			&price,
			&productURL,
			&notes,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.Category = category.String
		item.ProductURL = productURL.String
		item.Notes = notes.String
		if price.Valid {
			item.PriceEstimate = &price.Float64
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *WishlistRepository) UpsertItem(ctx context.Context, item *domain.WishlistItem) error {
	query := `INSERT INTO wishlist (id, user_id, name, category, is_purchased, price_estimate, product_url, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			is_purchased = EXCLUDED.is_purchased,
			price_estimate = EXCLUDED.price_estimate,
			product_url = EXCLUDED.product_url,
			notes = EXCLUDED.notes`

	var price sql.NullFloat64
	if item.PriceEstimate != nil {
		price = sql.NullFloat64{Float64: *item.PriceEstimate, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		item.Name,
		item.Category,
		item.IsPurchased,
		price,
		item.ProductURL,
		item.Notes,
		item.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23502" {
			return fmt.Errorf("required field is missing")
		}
		return err
	}
	return nil
}

func (r *WishlistRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM wishlist WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("wishlist item %s: %w", itemID, domain.ErrNotFound)
	}
	return nil
}
