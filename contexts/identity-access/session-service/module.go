package sessionservice

import (
	"log/slog"
	"time"

	hashadapter "unionhub/contexts/identity-access/session-service/adapters/hash"
	httpadapter "unionhub/contexts/identity-access/session-service/adapters/http"
	"unionhub/contexts/identity-access/session-service/adapters/memory"
	"unionhub/contexts/identity-access/session-service/adapters/token"
	"unionhub/contexts/identity-access/session-service/application/commands"
	"unionhub/contexts/identity-access/session-service/application/queries"
	"unionhub/contexts/identity-access/session-service/domain/entities"
	"unionhub/contexts/identity-access/session-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Auth     commands.AuthUseCase
	Validate queries.ValidateUseCase
	Store    *memory.Store
}

type Dependencies struct {
	Users      ports.UserRepository
	Sessions   ports.SessionRepository
	Hasher     ports.PasswordHasher
	Tokens     ports.TokenCodec
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	authUseCase := commands.AuthUseCase{
		Users:      deps.Users,
		Sessions:   deps.Sessions,
		Hasher:     deps.Hasher,
		Tokens:     deps.Tokens,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		SessionTTL: deps.SessionTTL,
		Logger:     deps.Logger,
	}
	validateUseCase := queries.ValidateUseCase{
		Users:    deps.Users,
		Sessions: deps.Sessions,
		Tokens:   deps.Tokens,
		Clock:    deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Auth:     authUseCase,
			Validate: validateUseCase,
			Logger:   deps.Logger,
		},
		Auth:     authUseCase,
		Validate: validateUseCase,
	}
}

func NewInMemoryModule(secret string, seed []entities.User, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Users:    store,
		Sessions: store,
		Hasher:   hashadapter.BcryptHasher{},
		Tokens:   token.NewJWTCodec(secret),
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
