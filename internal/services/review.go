package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/storage/repository"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, review models.Review) (string, error)
	ListReviewsByProduct(ctx context.Context, productID string) ([]models.Review, error)
	ListReviewsByUser(ctx context.Context, userID string) ([]models.Review, error)
	GetReview(ctx context.Context, id string) (*models.Review, error)
	ReviewStatsByProduct(ctx context.Context, productID string) (*models.ReviewStats, error)
	UpdateReview(ctx context.Context, id string, req models.UpdateReviewRequest) error
	DeleteReview(ctx context.Context, id string) error
	HasPaidOrderWithProduct(ctx context.Context, userID, productID string) (bool, error)
}

type reviewProductReader interface {
	GetProduct(ctx context.Context, id, language string) (*models.Product, error)
}

// ReviewService manages product reviews. One review per user per
// product, verified-purchase badge from paid orders.
type ReviewService struct {
	reviews  ReviewRepository
	products reviewProductReader
	log      *slog.Logger
}

func NewReviewService(reviews ReviewRepository, products reviewProductReader, log *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, log: log}
}

func (s *ReviewService) Create(ctx context.Context, userID string, req models.CreateReviewRequest) (*models.Review, error) {
	if _, err := s.products.GetProduct(ctx, req.ProductID, "ES"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	verified, err := s.reviews.HasPaidOrderWithProduct(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}

	review := models.Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Verified:  verified,
	}
	id, err := s.reviews.CreateReview(ctx, review)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	s.log.Info("created review", slog.String("review_id", id),
		slog.String("product_id", req.ProductID))
	return s.reviews.GetReview(ctx, id)
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID string) ([]models.Review, *models.ReviewStats, error) {
	reviews, err := s.reviews.ListReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.reviews.ReviewStatsByProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return reviews, stats, nil
}

func (s *ReviewService) ListMine(ctx context.Context, userID string) ([]models.Review, error) {
	return s.reviews.ListReviewsByUser(ctx, userID)
}

func (s *ReviewService) Update(ctx context.Context, id, userID string, req models.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotFound
	}
	if err := s.reviews.UpdateReview(ctx, id, req); err != nil {
		return nil, err
	}
	return s.reviews.GetReview(ctx, id)
}

// Delete removes a review. Admins can remove any review, owners their
// own.
func (s *ReviewService) Delete(ctx context.Context, id, userID string, isAdmin bool) error {
	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !isAdmin && review.UserID != userID {
		return ErrNotFound
	}
	return s.reviews.DeleteReview(ctx, id)
}
