package components

import (
	"log/slog"

	"refund-settlement-engine/internal/infra/memstore"
	"refund-settlement-engine/internal/infra/readstore"
	"refund-settlement-engine/internal/infra/uow"
	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/usecase/queries"
	"refund-settlement-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewStores,
	),
)

// Stores is the persistence surface of the engine. The policy store is named
// so the cache layer can decorate it.
type Stores struct {
	fx.Out
	UoW          shared.UnitOfWork
	Reservations queries.ReservationReadStore
	Policies     queries.PolicyReadStore `name:"rawPolicyStore"`
	Refunds      queries.RefundReadStore
}

// NewStores picks Postgres when a pool was opened and a seeded in-memory
// store otherwise.
func NewStores(pool *pgxpool.Pool, clk clock.Clock) Stores {
	if pool == nil {
		store := memstore.New()
		ids := store.SeedDemo(clk.Now())
		slog.Info("seeded demo reservations",
			"user_id", memstore.DemoUserID,
			"reservation_ids", ids)
		return Stores{
			UoW:          store,
			Reservations: store.ReservationReader(),
			Policies:     store.PolicyReader(),
			Refunds:      store.RefundReader(),
		}
	}

	return Stores{
		UoW:          uow.NewPostgresUoW(pool),
		Reservations: readstore.NewReservationReadStore(pool),
		Policies:     readstore.NewPolicyReadStore(pool),
		Refunds:      readstore.NewRefundReadStore(pool),
	}
}
