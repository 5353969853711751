package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/storage/repository"
)

type WishlistRepository interface {
	ListWishlist(ctx context.Context, userID, language string) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, userID, productID string) (string, error)
	RemoveWishlistItem(ctx context.Context, userID, productID string) error
	IsInWishlist(ctx context.Context, userID, productID string) (bool, error)
}

type wishlistProductReader interface {
	GetProduct(ctx context.Context, id, language string) (*models.Product, error)
}

// WishlistService manages saved-for-later products.
type WishlistService struct {
	wishlist WishlistRepository
	products wishlistProductReader
	log      *slog.Logger
}

func NewWishlistService(wishlist WishlistRepository, products wishlistProductReader, log *slog.Logger) *WishlistService {
	return &WishlistService{wishlist: wishlist, products: products, log: log}
}

func (s *WishlistService) List(ctx context.Context, userID, language string) ([]models.WishlistItem, error) {
	return s.wishlist.ListWishlist(ctx, userID, NormalizeLanguage(language))
}

func (s *WishlistService) Add(ctx context.Context, userID string, req models.AddWishlistRequest) ([]models.WishlistItem, error) {
	if _, err := s.products.GetProduct(ctx, req.ProductID, "ES"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if _, err := s.wishlist.AddWishlistItem(ctx, userID, req.ProductID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyInWishlist
		}
		return nil, err
	}
	s.log.Info("added wishlist item", slog.String("product_id", req.ProductID))
	return s.wishlist.ListWishlist(ctx, userID, "ES")
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.wishlist.RemoveWishlistItem(ctx, userID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *WishlistService) Contains(ctx context.Context, userID, productID string) (bool, error) {
	return s.wishlist.IsInWishlist(ctx, userID, productID)
}
