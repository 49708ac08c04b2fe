package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"unionhub/contexts/identity-access/session-service/domain/entities"
	domainerrors "unionhub/contexts/identity-access/session-service/domain/errors"
	"unionhub/contexts/identity-access/session-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing the user and session repositories.
type Store struct {
	mu sync.RWMutex

	users    map[string]entities.User
	byEmail  map[string]string
	sessions map[string]entities.Session
}

func NewStore(seed []entities.User) *Store {
	store := &Store{
		users:    make(map[string]entities.User, len(seed)),
		byEmail:  make(map[string]string, len(seed)),
		sessions: make(map[string]entities.Session),
	}
	for _, user := range seed {
		store.users[user.UserID] = user
		store.byEmail[strings.ToLower(user.Email)] = user.UserID
	}
	return store
}

func (s *Store) InsertUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, taken := s.byEmail[email]; taken {
		return domainerrors.ErrEmailTaken
	}
	s.users[user.UserID] = user
	s.byEmail[email] = user.UserID
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return s.users[userID], nil
}

func (s *Store) RecordLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	stamp := at.UTC()
	user.LastLoginAt = &stamp
	s.users[user.UserID] = user
	return nil
}

func (s *Store) InsertSession(_ context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.Session{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) RevokeSession(_ context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return domainerrors.ErrSessionNotFound
	}
	stamp := at.UTC()
	session.RevokedAt = &stamp
	s.sessions[session.SessionID] = session
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.UserRepository = (*Store)(nil)
var _ ports.SessionRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
