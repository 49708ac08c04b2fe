package electionengine

import (
	"log/slog"

	httpadapter "unionhub/contexts/student-union/election-engine/adapters/http"
	"unionhub/contexts/student-union/election-engine/adapters/memory"
	"unionhub/contexts/student-union/election-engine/application/commands"
	"unionhub/contexts/student-union/election-engine/application/queries"
	"unionhub/contexts/student-union/election-engine/domain/entities"
	"unionhub/contexts/student-union/election-engine/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Lifecycle commands.ElectionUseCase
	Store     *memory.Store
}

type Dependencies struct {
	Elections   ports.ElectionRepository
	Ballots     ports.BallotRepository
	Eligibility ports.EligibilityResolver
	Clubs       ports.ClubDirectory
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	lifecycleUseCase := commands.ElectionUseCase{
		Elections: deps.Elections,
		Ballots:   deps.Ballots,
		Clubs:     deps.Clubs,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Elections:   deps.Elections,
		Ballots:     deps.Ballots,
		Eligibility: deps.Eligibility,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Elections: deps.Elections,
		Ballots:   deps.Ballots,
	}
	return Module{
		Handler: httpadapter.Handler{
			Lifecycle: lifecycleUseCase,
			Votes:     voteUseCase,
			Results:   resultsUseCase,
			Logger:    deps.Logger,
		},
		Lifecycle: lifecycleUseCase,
	}
}

func NewInMemoryModule(seed []entities.Election, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Elections:   store,
		Ballots:     store,
		Eligibility: store,
		Clubs:       store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
