package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/google/uuid"
)

func (g *PersistenceGateway) ListWishlist(ctx context.Context) []*domain.WishlistItem {
	if g.remote != nil {
		items, err := g.remote.Wishlist.ListItems(ctx, g.userID)
		if err == nil {
			g.writeCollection(cacheKeyWishlist, items)
			return items
		}
		g.logger.Warn("Remote wishlist list failed, serving cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	items := []*domain.WishlistItem{}
	g.readCollection(cacheKeyWishlist, &items)
	return items
}

func (g *PersistenceGateway) GetWishlistItem(ctx context.Context, itemID uuid.UUID) (*domain.WishlistItem, error) {
	for _, it := range g.ListWishlist(ctx) {
		if it.ID == itemID {
			return it, nil
		}
	}
	return nil, fmt.Errorf("wishlist item %s: %w", itemID, domain.ErrNotFound)
}

func (g *PersistenceGateway) SaveWishlistItem(ctx context.Context, item *domain.WishlistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.UserID = g.userID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if err := g.validate.Struct(item); err != nil {
		g.logger.Error("Wishlist item validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("validation error: %w", err)
	}

	items := []*domain.WishlistItem{}
	g.readCollection(cacheKeyWishlist, &items)
	g.writeCollection(cacheKeyWishlist,
		upsertByID(items, item, func(i *domain.WishlistItem) uuid.UUID { return i.ID }))

	if g.remote == nil {
		return nil
	}
	if err := g.remote.Wishlist.UpsertItem(ctx, item); err != nil {
		g.logger.Error("Remote wishlist upsert failed, cache is ahead", map[string]interface{}{
			"item_id": item.ID.String(),
			"error":   err.Error(),
		})
		return fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
	}
	return nil
}

func (g *PersistenceGateway) DeleteWishlistItem(ctx context.Context, itemID uuid.UUID) {
	items := []*domain.WishlistItem{}
	g.readCollection(cacheKeyWishlist, &items)
	g.writeCollection(cacheKeyWishlist,
		removeByID(items, itemID, func(i *domain.WishlistItem) uuid.UUID { return i.ID }))

	if g.remote == nil {
		return
	}
	if err := g.remote.Wishlist.DeleteItem(ctx, itemID); err != nil {
		g.logger.Warn("Remote wishlist delete failed", map[string]interface{}{
			"item_id": itemID.String(),
			"error":   err.Error(),
		})
	}
}
