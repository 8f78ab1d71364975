package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type ctxKey struct{}

func TestBaseDBCarriesContext(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	scoped := base.DB(ctx)
	require.NotNil(t, scoped.Statement)
	assert.Equal(t, ctx, scoped.Statement.Context)

	assert.Same(t, conn, base.DB(nil))
}

func TestBaseBindKeepsHandleOnNilTx(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	assert.Same(t, conn, base.Bind(nil).conn)

	err := conn.Transaction(func(tx *gorm.DB) error {
		bound := base.Bind(tx)
		assert.Same(t, tx, bound.conn)
		assert.Same(t, conn, base.conn, "Bind must not mutate the receiver")
		return nil
	})
	require.NoError(t, err)
}

func TestFirstLoadsRowOrPassesNotFound(t *testing.T) {
	conn := dbtest.Open(t)
	profile := dbtest.SeedProfile(t, conn, enums.ProfileRoleAdmin)

	got, err := First[models.Profile](conn.Where("id = ?", profile.ID))
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)

	_, err = First[models.Profile](conn.Where("id = ?", uuid.New()))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAffectedReportsZeroRowsOnMiss(t *testing.T) {
	conn := dbtest.Open(t)
	profile := dbtest.SeedProfile(t, conn, enums.ProfileRoleCustomer)

	n, err := Affected(conn.Model(&models.Profile{}).Where("id = ?", profile.ID).Update("full_name", "Nadia"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = Affected(conn.Model(&models.Profile{}).Where("id = ?", uuid.New()).Update("full_name", "Nobody"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
