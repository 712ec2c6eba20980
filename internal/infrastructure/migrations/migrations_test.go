package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aguahielo/movimientos-api/internal/infrastructure/migrations"
)

func TestDriverURL(t *testing.T) {
	assert.Equal(t, "pgx5://app:pw@db:5432/movimientos?sslmode=disable",
		migrations.DriverURL("postgres://app:pw@db:5432/movimientos?sslmode=disable"))
	assert.Equal(t, "pgx5://db/x", migrations.DriverURL("postgresql://db/x"))
	assert.Equal(t, "pgx5://db/x", migrations.DriverURL("pgx5://db/x"))
}
