package membershipledger

import (
	"log/slog"

	httpadapter "unionhub/contexts/student-union/membership-ledger/adapters/http"
	"unionhub/contexts/student-union/membership-ledger/adapters/memory"
	"unionhub/contexts/student-union/membership-ledger/application/commands"
	"unionhub/contexts/student-union/membership-ledger/application/queries"
	"unionhub/contexts/student-union/membership-ledger/domain/entities"
	"unionhub/contexts/student-union/membership-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Roster  queries.RosterUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Ledger       ports.LedgerRepository
	Capabilities ports.CapabilityChecker
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	membershipUseCase := commands.MembershipUseCase{
		Ledger:       deps.Ledger,
		Capabilities: deps.Capabilities,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	leadershipUseCase := commands.LeadershipUseCase{
		Ledger: deps.Ledger,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	budgetUseCase := commands.BudgetUseCase{
		Ledger: deps.Ledger,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	rosterUseCase := queries.RosterUseCase{
		Ledger: deps.Ledger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Membership: membershipUseCase,
			Leadership: leadershipUseCase,
			Budget:     budgetUseCase,
			Roster:     rosterUseCase,
			Logger:     deps.Logger,
		},
		Roster: rosterUseCase,
	}
}

func NewInMemoryModule(seed []entities.Club, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Ledger:       store,
		Capabilities: store,
		Outbox:       store,
		Clock:        store,
		IDGen:        store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
