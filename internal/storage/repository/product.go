package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vmcandles/commerce-api/internal/models"
)

// ErrDuplicate signals a unique constraint violation.
var ErrDuplicate = errors.New("duplicate row")

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// images is a jsonb column; helpers keep the scan sites short.
func encodeTextArray(values []string) []byte {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return b
}

func decodeTextArray(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var values []string
	_ = json.Unmarshal(data, &values)
	return values
}

// ListProducts returns localized products matching the filter plus the
// total row count for pagination.
func (s *Storage) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	const op = "storage.ListProducts"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		where = append(where, "p.category = "+arg(strings.ToUpper(filter.Category)))
	}
	if filter.Featured != nil {
		where = append(where, "p.featured = "+arg(*filter.Featured))
	}
	if filter.InStock != nil {
		where = append(where, "p.in_stock = "+arg(*filter.InStock))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM products p WHERE ` + strings.Join(where, " AND ")
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	orderBy := "p.sort_order ASC, p.created_at DESC"
	switch filter.SortBy {
	case "price_asc":
		orderBy = "p.price ASC"
	case "price_desc":
		orderBy = "p.price DESC"
	case "newest":
		orderBy = "p.created_at DESC"
	}

	lang := arg(strings.ToUpper(filter.Language))
	query := `SELECT p.id, COALESCE(t.name, 'Untranslated'), COALESCE(t.description, ''),
			      COALESCE(t.long_description, ''), COALESCE(t.features, '[]'),
			      p.price, p.category, COALESCE(p.image, ''), p.images, COALESCE(p.burn_time, ''),
			      COALESCE(p.size, ''), p.featured, p.in_stock, p.stock, p.low_stock_alert,
			      p.track_inventory, p.sort_order, COALESCE(p.audio_url, ''),
			      COALESCE(p.audio_title, ''), COALESCE(p.audio_duration, 0),
			      p.created_at, p.updated_at
			  FROM products p
			  LEFT JOIN product_translations t ON t.product_id = p.id AND t.language = ` + lang + `
			  WHERE ` + strings.Join(where, " AND ") + `
			  ORDER BY ` + orderBy + `
			  LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg((filter.Page-1)*filter.Limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		products = append(products, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return products, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var images, features []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.LongDescription, &features,
		&p.Price, &p.Category, &p.Image,
		&images, &p.BurnTime, &p.Size, &p.Featured, &p.InStock, &p.Stock,
		&p.LowStockAlert, &p.TrackInventory, &p.SortOrder, &p.AudioURL,
		&p.AudioTitle, &p.AudioDuration, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Images = decodeTextArray(images)
	p.Features = decodeTextArray(features)
	return p, nil
}

// GetProduct returns one localized product.
func (s *Storage) GetProduct(ctx context.Context, id, language string) (*models.Product, error) {
	const op = "storage.GetProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, COALESCE(t.name, 'Untranslated'), COALESCE(t.description, ''),
			      COALESCE(t.long_description, ''), COALESCE(t.features, '[]'),
			      p.price, p.category, COALESCE(p.image, ''), p.images, COALESCE(p.burn_time, ''),
			      COALESCE(p.size, ''), p.featured, p.in_stock, p.stock, p.low_stock_alert,
			      p.track_inventory, p.sort_order, COALESCE(p.audio_url, ''),
			      COALESCE(p.audio_title, ''), COALESCE(p.audio_duration, 0),
			      p.created_at, p.updated_at
			  FROM products p
			  LEFT JOIN product_translations t ON t.product_id = p.id AND t.language = $2
			  WHERE p.id = $1`
	p, err := scanProduct(s.DB.QueryRowContext(ctx, query, id, strings.ToUpper(language)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListTranslations returns all translations of a product.
func (s *Storage) ListTranslations(ctx context.Context, productID string) ([]models.ProductTranslation, error) {
	const op = "storage.ListTranslations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, product_id, language, name, COALESCE(description, ''),
			      COALESCE(long_description, ''), features
			  FROM product_translations WHERE product_id = $1 ORDER BY language`
	rows, err := s.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var translations []models.ProductTranslation
	for rows.Next() {
		var t models.ProductTranslation
		var features []byte
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Language, &t.Name, &t.Description,
			&t.LongDescription, &features); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		t.Features = decodeTextArray(features)
		translations = append(translations, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return translations, nil
}

// CreateProduct inserts a product with its translations.
func (s *Storage) CreateProduct(ctx context.Context, req models.CreateProductRequest) error {
	const op = "storage.CreateProduct"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}
	query := `INSERT INTO products (id, price, category, image, images, burn_time, size,
			      featured, in_stock, stock, sort_order)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := tx.ExecContext(ctx, query, req.ID, req.Price, req.Category, req.Image,
		encodeTextArray(req.Images), req.BurnTime, req.Size, req.Featured, inStock,
		req.Stock, req.SortOrder); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, tr := range req.Translations {
		upsert := `INSERT INTO product_translations (id, product_id, language, name, description,
				      long_description, features)
				  VALUES ($1, $2, $3, $4, $5, $6, $7)
				  ON CONFLICT (product_id, language)
				  DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
				      long_description = EXCLUDED.long_description, features = EXCLUDED.features`
		if _, err := tx.ExecContext(ctx, upsert, uuid.NewString(), req.ID,
			strings.ToUpper(tr.Language), tr.Name, tr.Description,
			tr.LongDescription, encodeTextArray(tr.Features)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProduct applies non-nil fields from the request.
func (s *Storage) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) error {
	const op = "storage.UpdateProduct"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var images any
	if req.Images != nil {
		images = encodeTextArray(req.Images)
	}
	query := `UPDATE products SET
			      price = COALESCE($1, price),
			      category = COALESCE($2, category),
			      image = COALESCE($3, image),
			      images = COALESCE($4, images),
			      burn_time = COALESCE($5, burn_time),
			      size = COALESCE($6, size),
			      featured = COALESCE($7, featured),
			      in_stock = COALESCE($8, in_stock),
			      sort_order = COALESCE($9, sort_order),
			      updated_at = now()
			  WHERE id = $10`
	result, err := s.DB.ExecContext(ctx, query, req.Price, req.Category, req.Image, images,
		req.BurnTime, req.Size, req.Featured, req.InStock, req.SortOrder, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// DeleteProduct removes a product and its translations.
func (s *Storage) DeleteProduct(ctx context.Context, id string) error {
	const op = "storage.DeleteProduct"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// UpsertTranslation writes the localized name and description keyed by
// (product, language).
func (s *Storage) UpsertTranslation(ctx context.Context, productID string, req models.TranslationRequest) error {
	const op = "storage.UpsertTranslation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO product_translations (id, product_id, language, name, description,
			      long_description, features)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (product_id, language)
			  DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
			      long_description = EXCLUDED.long_description, features = EXCLUDED.features`
	if _, err := s.DB.ExecContext(ctx, query, uuid.NewString(), productID,
		strings.ToUpper(req.Language), req.Name, req.Description,
		req.LongDescription, encodeTextArray(req.Features)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetProductAudio attaches or clears the paired audio track. Passing a
// nil request clears it.
func (s *Storage) SetProductAudio(ctx context.Context, productID string, req *models.ProductAudioRequest) error {
	const op = "storage.SetProductAudio"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var result sql.Result
	var err error
	if req == nil {
		query := `UPDATE products SET audio_url = NULL, audio_title = NULL,
				  audio_duration = NULL, updated_at = now() WHERE id = $1`
		result, err = s.DB.ExecContext(ctx, query, productID)
	} else {
		query := `UPDATE products SET audio_url = $1, audio_title = $2,
				  audio_duration = $3, updated_at = now() WHERE id = $4`
		result, err = s.DB.ExecContext(ctx, query, req.AudioURL, req.AudioTitle, req.AudioDuration, productID)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
