package reportengine

import (
	"log/slog"
	"time"

	httpadapter "tribunal/contexts/moderation/report-engine/adapters/http"
	"tribunal/contexts/moderation/report-engine/adapters/memory"
	"tribunal/contexts/moderation/report-engine/application/commands"
	"tribunal/contexts/moderation/report-engine/application/queries"
	"tribunal/contexts/moderation/report-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Engine  *commands.EngineUseCase

	// Store, Ledger and Clock are set only by NewInMemoryModule for tests and
	// local wiring.
	Store  *memory.Store
	Ledger *memory.AccountBook
	Clock  *memory.ManualClock
}

type Dependencies struct {
	Posts       ports.PostRegistry
	Reports     ports.ReportRepository
	Votes       ports.VoteLedger
	Reputation  ports.ReputationStore
	Stakes      ports.StakeCounter
	Ledger      ports.Ledger
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Outbox      ports.OutboxWriter
	Idempotency ports.IdempotencyStore
	Tx          ports.TxRunner

	IdempotencyTTL time.Duration

	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	engine := &commands.EngineUseCase{
		Posts:       deps.Posts,
		Reports:     deps.Reports,
		Votes:       deps.Votes,
		Reputation:  deps.Reputation,
		Stakes:      deps.Stakes,
		Ledger:      deps.Ledger,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Outbox:      deps.Outbox,
		Idempotency: deps.Idempotency,
		Tx:          deps.Tx,

		IdempotencyTTL: deps.IdempotencyTTL,

		Logger: deps.Logger,
	}
	status := queries.StatusUseCase{
		Posts:      deps.Posts,
		Reports:    deps.Reports,
		Votes:      deps.Votes,
		Reputation: deps.Reputation,
		Stakes:     deps.Stakes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Engine: engine,
			Status: status,
			Logger: deps.Logger,
		},
		Engine: engine,
	}
}

// NewInMemoryModule wires the engine against the in-process store, account
// book and a manual height clock.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	book := memory.NewAccountBook()
	clock := memory.NewManualClock(0)
	module := NewModule(Dependencies{
		Posts:       store,
		Reports:     store,
		Votes:       store,
		Reputation:  store,
		Stakes:      store,
		Ledger:      book,
		Clock:       clock,
		IDGen:       store,
		Outbox:      store,
		Idempotency: store,
		Tx:          store,
		Logger:      logger,
	})
	module.Store = store
	module.Ledger = book
	module.Clock = clock
	return module
}
