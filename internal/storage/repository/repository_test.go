package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	id, err := storage.CreateUser(ctx, models.User{
		Email:        "maria@example.com",
		PasswordHash: "hashedpassword",
		FirstName:    "Maria",
		LastName:     "Gonzalez",
		Role:         models.RoleUser,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := storage.GetUserByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Maria", got.FirstName)

	// Registration also provisions the default profile.
	profile, err := storage.GetProfileByUserID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "INDIVIDUAL", profile.CustomerType)
	assert.Equal(t, "ES", profile.PreferredLanguage)
}

func TestStorage_UpsertCartItem(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "cart@example.com")
	factory.CreateProduct(t, "lavanda", 15.0, 10)

	cart, err := storage.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)

	item := models.CartItem{ProductID: "lavanda", Name: "Vela lavanda", Price: 15.0, Quantity: 2}
	require.NoError(t, storage.UpsertCartItem(ctx, cart.ID, item))

	// Adding the same product again merges into one line.
	require.NoError(t, storage.UpsertCartItem(ctx, cart.ID, item))

	cart, err = storage.GetCartByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	assert.Equal(t, 15.0, cart.Items[0].Price)
}

func TestStorage_CreateOrder(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "order@example.com")
	factory.CreateProduct(t, "vainilla", 18.0, 5)
	cartID := factory.CreateCartWithItem(t, userID, "vainilla", 18.0, 2)

	order := models.Order{
		UserID:          userID,
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentPending,
		Subtotal:        36.0,
		Shipping:        5.0,
		Total:           41.0,
		CustomerName:    "Test User",
		CustomerEmail:   "order@example.com",
		ShippingAddress: "Av. Providencia 1234, Santiago",
		AdminNotes:      "dejar en conserjería",
		Items: []models.OrderItem{
			{ProductID: "vainilla", Name: "Vela vainilla", Price: 18.0, Quantity: 2},
		},
	}

	id, err := storage.CreateOrder(ctx, order, cartID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-001", id)

	got, err := storage.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, got.Status)
	assert.Equal(t, "dejar en conserjería", got.AdminNotes)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	// Checkout empties the cart.
	cart, err := storage.GetCartByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// Sequential numbering continues from the order count.
	cartID2 := factory.CreateCartWithItem(t, userID, "vainilla", 18.0, 1)
	order.Items[0].Quantity = 1
	id2, err := storage.CreateOrder(ctx, order, cartID2)
	require.NoError(t, err)
	assert.Equal(t, "ORD-002", id2)
}

func TestStorage_UpsertTranslation(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	factory.CreateProduct(t, "lavanda", 15.0, 3)

	req := models.TranslationRequest{
		Language:        "en",
		Name:            "Lavender Candle",
		Description:     "Calming soy candle",
		LongDescription: "Hand poured soy candle scented with pure lavender essential oil.",
		Features:        []string{"Soy wax", "40h burn time"},
	}
	require.NoError(t, storage.UpsertTranslation(ctx, "lavanda", req))

	got, err := storage.GetProduct(ctx, "lavanda", "EN")
	require.NoError(t, err)
	assert.Equal(t, "Lavender Candle", got.Name)
	assert.Equal(t, req.LongDescription, got.LongDescription)
	assert.Equal(t, req.Features, got.Features)

	// Languages sort EN before ES.
	translations, err := storage.ListTranslations(ctx, "lavanda")
	require.NoError(t, err)
	require.Len(t, translations, 2)
	assert.Equal(t, "EN", translations[0].Language)
	assert.Equal(t, req.Features, translations[0].Features)
}

func TestStorage_SettleOrderPayment(t *testing.T) {
	tests := []struct {
		name              string
		approved          bool
		wantStatus        string
		wantPaymentStatus string
	}{
		{
			name:              "approved payment moves order to processing",
			approved:          true,
			wantStatus:        models.OrderProcessing,
			wantPaymentStatus: models.PaymentPaid,
		},
		{
			name:              "declined payment only fails the payment",
			approved:          false,
			wantStatus:        models.OrderPending,
			wantPaymentStatus: models.PaymentFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDb(t)
			defer cleanup()

			ctx := context.Background()
			factory := NewTestDataFactory(storage)
			userID := factory.CreateUser(t, "settle@example.com")
			factory.CreateProduct(t, "rosa", 20.0, 3)
			cartID := factory.CreateCartWithItem(t, userID, "rosa", 20.0, 1)

			id, err := storage.CreateOrder(ctx, models.Order{
				UserID:          userID,
				Status:          models.OrderPending,
				PaymentStatus:   models.PaymentPending,
				Subtotal:        20.0,
				Shipping:        5.0,
				Total:           25.0,
				CustomerName:    "Test User",
				CustomerEmail:   "settle@example.com",
				ShippingAddress: "Calle Falsa 123",
			}, cartID)
			require.NoError(t, err)

			require.NoError(t, storage.SettleOrderPayment(ctx, id, tt.approved, time.Now()))

			got, err := storage.GetOrder(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantPaymentStatus, got.PaymentStatus)
			if tt.approved {
				assert.NotNil(t, got.PaymentDate)
			} else {
				assert.Nil(t, got.PaymentDate)
			}
		})
	}
}

func TestStorage_RenewSubscription(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "renew@example.com")

	started := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	subID := factory.CreateActiveSubscription(t, userID, "MONTHLY", 9990, started, due, due)

	newExpiry := due.AddDate(0, 1, 0)
	renewed, err := storage.RenewSubscription(ctx, subID, due, newExpiry, time.Now())
	require.NoError(t, err)
	assert.True(t, renewed)

	// A second sweep holding the stale renewal date loses the race.
	renewed, err = storage.RenewSubscription(ctx, subID, due, newExpiry.AddDate(0, 1, 0), time.Now())
	require.NoError(t, err)
	assert.False(t, renewed)

	got, err := storage.GetSubscription(ctx, subID)
	require.NoError(t, err)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(newExpiry))
	require.NotNil(t, got.NextRenewal)
	assert.True(t, got.NextRenewal.Equal(newExpiry))
}

func TestStorage_ExpireLapsedSubscriptions(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "lapsed@example.com")

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lapsedID := factory.CreateActiveSubscription(t, userID, "MONTHLY", 9990,
		now.AddDate(0, -2, 0), now.AddDate(0, -1, 0), now.AddDate(0, -1, 0))

	userID2 := factory.CreateUser(t, "current@example.com")
	currentID := factory.CreateActiveSubscription(t, userID2, "ANNUAL", 89990,
		now.AddDate(0, -1, 0), now.AddDate(0, 11, 0), now.AddDate(0, 11, 0))

	expired, err := storage.ExpireLapsedSubscriptions(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, lapsedID, expired[0].ID)

	got, err := storage.GetSubscription(ctx, lapsedID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionExpired, got.Status)
	assert.False(t, got.AutoRenew)

	got, err = storage.GetSubscription(ctx, currentID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, got.Status)
}

func TestStorage_RedeemAccessKey(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "keys@example.com")
	otherID := factory.CreateUser(t, "other@example.com")

	keyID := factory.CreateAccessKey(t, "VM-AAAAA-BBBBB", 3)

	now := time.Now().UTC()
	expires := now.AddDate(0, 3, 0)
	require.NoError(t, storage.RedeemAccessKey(ctx, keyID, userID, now, expires))

	// A second redemption of the same key fails.
	err := storage.RedeemAccessKey(ctx, keyID, otherID, now, expires)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	key, err := storage.GetValidAccessKey(ctx, userID, now)
	require.NoError(t, err)
	assert.Equal(t, "VM-AAAAA-BBBBB", key.KeyCode)
}
