package cart

import (
	"context"
	"io"
	"testing"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), NewCartItemRepository(conn), product.NewRepository(conn), db.NewFromConn(conn), logg)
	require.NoError(t, err)
	return svc, conn
}

func TestGuestAddMergesQuantityAndSnapshotsPrice(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	saree := dbtest.SeedProduct(t, conn, "Jamdani Saree", decimal.RequireFromString("2500.00"))
	guest := Identity{SessionID: NewSessionID()}

	_, err := svc.Apply(ctx, guest, ActionInput{Intent: IntentAdd, ProductID: saree.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", saree.ID).Update("base_price", "3000.00").Error)

	cart, err := svc.Apply(ctx, guest, ActionInput{Intent: IntentAdd, ProductID: saree.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Price.Equal(decimal.RequireFromString("2500")))
	assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("7500")))

	reloaded, err := svc.Get(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, reloaded.ID)
	assert.Len(t, reloaded.Items, 1)
}

func TestVariantsAreSeparateLines(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	kurta := dbtest.SeedProduct(t, conn, "Panjabi", decimal.NewFromInt(1800))
	user := uuid.New()
	identity := Identity{UserID: &user}
	small, large := uuid.New(), uuid.New()

	_, err := svc.Apply(ctx, identity, ActionInput{Intent: IntentAdd, ProductID: kurta.ID, VariantID: &small, Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.Apply(ctx, identity, ActionInput{Intent: IntentAdd, ProductID: kurta.ID, VariantID: &large, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestUpdateRemoveAndClear(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	tea := dbtest.SeedProduct(t, conn, "Sylhet Tea", decimal.NewFromInt(450))
	lamp := dbtest.SeedProduct(t, conn, "Brass Lamp", decimal.NewFromInt(900))
	user := uuid.New()
	identity := Identity{UserID: &user}

	_, err := svc.Apply(ctx, identity, ActionInput{Intent: IntentAdd, ProductID: tea.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.Apply(ctx, identity, ActionInput{Intent: IntentAdd, ProductID: lamp.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	cart, err = svc.Apply(ctx, identity, ActionInput{Intent: IntentUpdate, ItemID: cart.Items[0].ID, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	_, err = svc.Apply(ctx, identity, ActionInput{Intent: IntentUpdate, ItemID: cart.Items[0].ID, Quantity: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	cart, err = svc.Apply(ctx, identity, ActionInput{Intent: IntentRemove, ItemID: cart.Items[1].ID})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	_, err = svc.Apply(ctx, identity, ActionInput{Intent: IntentRemove, ItemID: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	cart, err = svc.Apply(ctx, identity, ActionInput{Intent: IntentClear})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestAddRejectsUnavailableProduct(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	gone := dbtest.SeedProduct(t, conn, "Discontinued", decimal.NewFromInt(10))
	require.NoError(t, conn.Delete(&models.Product{}, "id = ?", gone.ID).Error)
	guest := Identity{SessionID: NewSessionID()}

	_, err := svc.Apply(ctx, guest, ActionInput{Intent: IntentAdd, ProductID: gone.ID, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Apply(ctx, guest, ActionInput{Intent: IntentAdd, ProductID: uuid.New(), Quantity: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGuestCartClaimedByUserIsNotReturnedBySession(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	session := NewSessionID()
	user := uuid.New()
	require.NoError(t, conn.Create(&models.Cart{ID: uuid.New(), UserID: &user, SessionID: &session}).Error)

	cart, err := svc.Get(ctx, Identity{SessionID: session})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, cart.ID)
	assert.Empty(t, cart.Items)
}

func TestIdentityRequiredForWrites(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Apply(context.Background(), Identity{}, ActionInput{Intent: IntentClear})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.GetOrCreate(context.Background(), Identity{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	cart, err := svc.Get(context.Background(), Identity{})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestParseIntent(t *testing.T) {
	intent, err := ParseIntent(" add ")
	require.NoError(t, err)
	assert.Equal(t, IntentAdd, intent)

	_, err = ParseIntent("checkout")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

// racingCarts hides the first lookup and inserts a competing cart right
// before Create, the way a concurrent first add would interleave.
type racingCarts struct {
	CartRepository
	conn   *gorm.DB
	rival  *models.Cart
	missed bool
}

func (r *racingCarts) WithTx(tx *gorm.DB) CartRepository {
	return &racingCarts{CartRepository: r.CartRepository.WithTx(tx), conn: tx, rival: r.rival, missed: r.missed}
}

func (r *racingCarts) FindBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	if !r.missed {
		r.missed = true
		return nil, gorm.ErrRecordNotFound
	}
	return r.CartRepository.FindBySession(ctx, sessionID)
}

func (r *racingCarts) Create(ctx context.Context, cart *models.Cart) error {
	if err := r.conn.Omit("Items").Create(r.rival).Error; err != nil {
		return err
	}
	return r.CartRepository.Create(ctx, cart)
}

func TestConcurrentFirstAddReusesExistingCart(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	session := NewSessionID()
	rival := &models.Cart{ID: uuid.New(), SessionID: &session}
	carts := &racingCarts{CartRepository: NewRepository(conn), conn: conn, rival: rival}

	svc, err := NewService(carts, NewCartItemRepository(conn), product.NewRepository(conn), db.NewFromConn(conn), logg)
	require.NoError(t, err)
	honey := dbtest.SeedProduct(t, conn, "Sundarbans Honey", decimal.NewFromInt(650))

	cart, err := svc.Apply(ctx, Identity{SessionID: session}, ActionInput{Intent: IntentAdd, ProductID: honey.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, rival.ID, cart.ID)
	require.Len(t, cart.Items, 1)

	var count int64
	require.NoError(t, conn.Model(&models.Cart{}).Where("session_id = ?", session).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryCreateReportsDuplicate(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	user := uuid.New()

	require.NoError(t, repo.Create(context.Background(), &models.Cart{ID: uuid.New(), UserID: &user}))
	err := repo.Create(context.Background(), &models.Cart{ID: uuid.New(), UserID: &user})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.True(t, db.IsUniqueViolation(err, ""))
}
