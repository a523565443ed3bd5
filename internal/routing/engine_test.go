package routing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTransientTxError(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}
	deadlock := &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}

	assert.True(t, transientTxError(serialization))
	assert.True(t, transientTxError(deadlock))
	assert.True(t, transientTxError(fmt.Errorf("exec failed: %w", deadlock)), "wrapped driver errors still match")

	// non-retryable conditions must surface immediately
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.False(t, transientTxError(unique))
	assert.False(t, transientTxError(errors.New("connection refused")))
}
