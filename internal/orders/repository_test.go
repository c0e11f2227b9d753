package orders

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB opens a gorm handle that builds SQL without touching a
// database, so tests can assert the shape of generated statements.
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

func snapshotSQL(t *testing.T, db *gorm.DB, typeIDs []uuid.UUID, forUpdate bool) string {
	t.Helper()

	var rows []struct {
		ID uuid.UUID `gorm:"column:id"`
	}
	stmt := typeSnapshotQuery(db, typeIDs, forUpdate).Find(&rows)
	require.NoError(t, stmt.Error)
	return stmt.Statement.SQL.String()
}

func TestTypeSnapshotQueryLocksRows(t *testing.T) {
	db := newDryRunDB(t)
	typeIDs := []uuid.UUID{uuid.New(), uuid.New()}

	locked := snapshotSQL(t, db, typeIDs, true)
	assert.Contains(t, locked, "FOR UPDATE",
		"purchase-path snapshot read must take row locks")
	assert.Contains(t, locked, `ORDER BY id`)
}

func TestTypeSnapshotQueryUnlockedRead(t *testing.T) {
	db := newDryRunDB(t)

	display := snapshotSQL(t, db, []uuid.UUID{uuid.New()}, false)
	assert.NotContains(t, display, "FOR UPDATE")
}

func TestInsertWithCodeRetryRegeneratesAfterCollision(t *testing.T) {
	ticket := &Ticket{OrderID: uuid.New(), TicketTypeID: uuid.New()}

	var codes []string
	attempts := 0
	err := insertWithCodeRetry(ticket, 5, func(tk *Ticket) error {
		attempts++
		codes = append(codes, tk.Code)
		if attempts <= 2 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "each attempt must carry a fresh code")
		seen[code] = true
	}
}

func TestInsertWithCodeRetryHandlesRawUniqueViolation(t *testing.T) {
	attempts := 0
	err := insertWithCodeRetry(&Ticket{}, 3, func(*Ticket) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "23505"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestInsertWithCodeRetryExhaustion(t *testing.T) {
	attempts := 0
	err := insertWithCodeRetry(&Ticket{}, 3, func(*Ticket) error {
		attempts++
		return gorm.ErrDuplicatedKey
	})

	assert.Equal(t, 3, attempts)
	var perr *PurchaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindStoreFailure, perr.Kind)
}

func TestInsertWithCodeRetryStopsOnUnrelatedError(t *testing.T) {
	boom := errors.New("connection reset")
	attempts := 0
	err := insertWithCodeRetry(&Ticket{}, 5, func(*Ticket) error {
		attempts++
		return boom
	})

	assert.Equal(t, 1, attempts, "only duplicate codes warrant a retry")
	var perr *PurchaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindStoreFailure, perr.Kind)
	assert.ErrorIs(t, err, boom)
}
