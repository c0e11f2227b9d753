package refunds

import (
	"database/sql"
	"testing"

	"tickethub/internal/orders"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("pgx", "")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
	require.NoError(t, err)
	return db
}

func TestLockedOrderQueryTakesRowLock(t *testing.T) {
	db := newDryRunDB(t)

	var rows []orders.Order
	stmt := lockedOrderQuery(db, uuid.New()).Find(&rows)
	require.NoError(t, stmt.Error)
	assert.Contains(t, stmt.Statement.SQL.String(), "FOR UPDATE",
		"refund must hold the order row against concurrent refunds")
}
