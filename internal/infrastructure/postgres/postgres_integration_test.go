//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aguahielo/movimientos-api/internal/application/dto"
	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/application/sales"
	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/migrations"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/postgres"
	"github.com/aguahielo/movimientos-api/pkg/config"
)

const testUser = "integracion"

type pgFixture struct {
	ctx     context.Context
	pool    *pgxpool.Pool
	tx      *postgres.TxRunner
	catalog *inventory.Catalog
	moves   *inventory.MovementUseCase
	sales   *sales.UseCase
	query   *inventory.QueryUseCase
}

// newPG levanta un PostgreSQL efímero con el esquema migrado y el catálogo sembrado.
func newPG(t *testing.T) *pgFixture {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("movimientos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migrations.New(dsn, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, m.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 30, LockTimeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tx := postgres.NewTxRunner(pool)
	require.NoError(t, tx.Run(ctx, func(repos inventory.Repositories) error {
		_, err := inventory.SeedCatalog(ctx, repos, nil, nil)
		return err
	}))

	log := zerolog.Nop()
	catalog := inventory.NewCatalog(tx.Reader().Storages, tx.Reader().Elements, log)
	engine := inventory.NewEngine(catalog, inventory.RetryPolicy{
		MaxAttempts: 5,
		Backoff:     10 * time.Millisecond,
		IsTransient: postgres.IsTransient,
	}, nil)
	feed := inventory.NewChangeFeed(nil, nil, log)
	return &pgFixture{
		ctx:     ctx,
		pool:    pool,
		tx:      tx,
		catalog: catalog,
		moves:   inventory.NewMovementUseCase(tx, engine, catalog, feed, log),
		sales:   sales.NewUseCase(tx, engine, catalog, feed, log),
		query:   inventory.NewQueryUseCase(tx),
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (f *pgFixture) qty(t *testing.T, storage, element string) decimal.Decimal {
	t.Helper()
	s, err := f.catalog.StorageByCode(f.ctx, storage)
	require.NoError(t, err)
	e, err := f.catalog.ElementByCode(f.ctx, element)
	require.NoError(t, err)
	var q decimal.Decimal
	require.NoError(t, f.tx.Run(f.ctx, func(repos inventory.Repositories) error {
		st, err := repos.States.GetForUpdate(f.ctx, s.ID, e.ID)
		if st != nil {
			q = st.Quantity
		}
		return err
	}))
	return q
}

func TestPostgres_FlujoVentaYAnulacion(t *testing.T) {
	f := newPG(t)

	for _, e := range []string{"tapa-valvula", "termoencogible"} {
		_, err := f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: e, Amount: dec(10)})
		require.NoError(t, err)
	}
	_, err := f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: "botellon-nuevo", StorageCode: "terminado", Amount: dec(10)})
	require.NoError(t, err)

	created, err := f.sales.CreateSales(f.ctx, testUser, dto.CreateSalesRequest{Lines: []dto.SaleLineRequest{
		{ProductCode: "botellon-nuevo", VariantCode: "tapa-valvula", Quantity: dec(1)},
	}})
	require.NoError(t, err)
	assert.True(t, f.qty(t, "terminado", "botellon-nuevo").Equal(dec(9)))
	assert.True(t, f.qty(t, "bodega", "tapa-valvula").Equal(dec(9)))

	_, err = f.sales.VoidSale(f.ctx, testUser, created.Sales[0].ID)
	require.NoError(t, err)
	_, err = f.sales.VoidSale(f.ctx, testUser, created.Sales[0].ID)
	assert.ErrorIs(t, err, domain.ErrSaleAlreadyVoided)
	assert.True(t, f.qty(t, "bodega", "termoencogible").Equal(dec(10)))

	list, err := f.query.ListMovements(f.ctx, dto.MovementListRequest{Cause: "sell", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 6, list.Page.Total)
	assert.False(t, list.Items[0].Rollback)
	assert.True(t, list.Items[5].Rollback)
}

func TestPostgres_RechazoNoDejaRastro(t *testing.T) {
	f := newPG(t)
	_, err := f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: "bolsa-360", StorageCode: "intermedia", Amount: dec(19)})
	require.NoError(t, err)
	before, err := f.query.GetState(f.ctx, nil)
	require.NoError(t, err)

	_, err = f.moves.Production(f.ctx, testUser, dto.ProductionRequest{ProductionType: "paca-360", Amount: dec(1)})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	after, err := f.query.GetState(f.ctx, &before.Version)
	require.NoError(t, err)
	assert.False(t, after.Changed)
	list, err := f.query.ListMovements(f.ctx, dto.MovementListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
}

func TestPostgres_ConcurrenciaNuncaNegativo(t *testing.T) {
	f := newPG(t)
	_, err := f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: "canastilla", Amount: dec(10)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.moves.Relocation(f.ctx, testUser, dto.RelocationRequest{
				ElementCode: "canastilla", StorageFrom: "bodega", StorageTo: "trabajo", Amount: dec(1),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, rejected)
	assert.True(t, f.qty(t, "bodega", "canastilla").IsZero())
	assert.True(t, f.qty(t, "trabajo", "canastilla").Equal(dec(10)))
}

func TestPostgres_RestriccionesDelEsquema(t *testing.T) {
	f := newPG(t)
	s, err := f.catalog.StorageByCode(f.ctx, "bodega")
	require.NoError(t, err)
	e, err := f.catalog.ElementByCode(f.ctx, "canastilla")
	require.NoError(t, err)

	err = f.tx.Run(f.ctx, func(repos inventory.Repositories) error {
		return repos.States.Upsert(f.ctx, &entity.StorageState{StorageID: s.ID, ElementID: e.ID, Quantity: dec(-1), UpdatedAt: time.Now()})
	})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	err = f.tx.Run(f.ctx, func(repos inventory.Repositories) error {
		return repos.States.Upsert(f.ctx, &entity.StorageState{StorageID: 9999, ElementID: e.ID, Quantity: dec(1), UpdatedAt: time.Now()})
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.pool.Exec(f.ctx, `UPDATE inventory_movements SET deleted_at = now() WHERE true`)
	require.NoError(t, err, "sin filas no hay violación")
	_, err = f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: "canastilla", Amount: dec(1)})
	require.NoError(t, err)
	_, err = f.pool.Exec(f.ctx, `UPDATE inventory_movements SET deleted_at = now()`)
	assert.Error(t, err, "deleted_at sin deleted_by viola el CHECK")
}

// Lecturas concurrentes del mismo contador: las aceptadas quedan en orden no decreciente y las
// demás se rechazan como retroceso.
func TestPostgres_ContadorConcurrenteNuncaRetrocede(t *testing.T) {
	f := newPG(t)
	_, err := f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: "rollo-360", Amount: dec(20)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 10; i >= 1; i-- {
		wg.Add(1)
		go func(reading int64) {
			defer wg.Done()
			v := dec(reading * 100)
			_, err := f.moves.Relocation(f.ctx, testUser, dto.RelocationRequest{
				ElementCode: "rollo-360", StorageFrom: "bodega", StorageTo: "trabajo", Amount: dec(1), MeterReading: &v,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, domain.ErrMeterRegression)
			}
		}(int64(i))
	}
	wg.Wait()

	rows, err := f.pool.Query(f.ctx, `SELECT value FROM meter_readings WHERE meter = 'rollo-360' ORDER BY id`)
	require.NoError(t, err)
	var values []decimal.Decimal
	for rows.Next() {
		var v decimal.Decimal
		require.NoError(t, rows.Scan(&v))
		values = append(values, v)
	}
	require.NoError(t, rows.Err())

	assert.GreaterOrEqual(t, ok, 1)
	require.Len(t, values, ok)
	for i := 1; i < len(values); i++ {
		assert.False(t, values[i].LessThan(values[i-1]), "lectura %d retrocede: %s < %s", i, values[i], values[i-1])
	}
	assert.True(t, f.qty(t, "bodega", "rollo-360").Equal(dec(int64(20-ok))))
}

// Traslados cruzados entre dos bodegas bloquean los pares en orden opuesto. PostgreSQL aborta
// una de las transacciones por deadlock y Run la repite completa.
func TestPostgres_TrasladosCruzadosSobrevivenAlDeadlock(t *testing.T) {
	f := newPG(t)
	_, err := f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: "canastilla", StorageCode: "bodega", Amount: dec(50)})
	require.NoError(t, err)
	_, err = f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: "canastilla", StorageCode: "trabajo", Amount: dec(50)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		for _, dir := range [][2]string{{"bodega", "trabajo"}, {"trabajo", "bodega"}} {
			wg.Add(1)
			go func(from, to string) {
				defer wg.Done()
				_, err := f.moves.Relocation(f.ctx, testUser, dto.RelocationRequest{
					ElementCode: "canastilla", StorageFrom: from, StorageTo: to, Amount: dec(1),
				})
				errs <- err
			}(dir[0], dir[1])
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.True(t, f.qty(t, "bodega", "canastilla").Equal(dec(50)))
	assert.True(t, f.qty(t, "trabajo", "canastilla").Equal(dec(50)))
	list, err := f.query.ListMovements(f.ctx, dto.MovementListRequest{Cause: "relocation"})
	require.NoError(t, err)
	assert.Equal(t, 40, list.Page.Total)
}

// Escrituras sobre pares distintos no comparten fila y el token avanza con cada commit.
func TestPostgres_TokenDeVersionSinFilaCompartida(t *testing.T) {
	f := newPG(t)
	start, err := f.query.GetState(f.ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, start.Version)

	var wg sync.WaitGroup
	for _, e := range []string{"canastilla", "tapa-valvula", "termoencogible", "rollo-360"} {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, err := f.moves.Entry(f.ctx, testUser, dto.EntryRequest{ElementCode: code, Amount: dec(1)})
			assert.NoError(t, err)
		}(e)
	}
	wg.Wait()

	mid, err := f.query.GetState(f.ctx, &start.Version)
	require.NoError(t, err)
	assert.True(t, mid.Changed)
	assert.Len(t, mid.Items, 4)

	same, err := f.query.GetState(f.ctx, &mid.Version)
	require.NoError(t, err)
	assert.False(t, same.Changed)

	_, err = f.moves.Relocation(f.ctx, testUser, dto.RelocationRequest{
		ElementCode: "canastilla", StorageFrom: "bodega", StorageTo: "trabajo", Amount: dec(1),
	})
	require.NoError(t, err)
	next, err := f.query.GetState(f.ctx, &mid.Version)
	require.NoError(t, err)
	assert.True(t, next.Changed)
	assert.Greater(t, next.Version, mid.Version)
}
