package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"unionhub/contexts/student-union/election-engine/domain/entities"
	domainerrors "unionhub/contexts/student-union/election-engine/domain/errors"
	"unionhub/contexts/student-union/election-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InsertElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	candidates := candidateModelsFromEntity(election)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(candidates) > 0 {
			if err := tx.Create(&candidates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("election_repo_insert_failed", err,
			"election_id", strings.TrimSpace(election.ElectionID),
		)
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	return r.getElection(ctx, r.db, electionID)
}

func (r *Repository) getElection(ctx context.Context, db *gorm.DB, electionID string) (entities.Election, error) {
	var row electionModel
	err := db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("election_repo_get_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	candidates, err := r.listCandidates(ctx, db, row.ID)
	if err != nil {
		return entities.Election{}, err
	}
	return row.toEntity(candidates)
}

func (r *Repository) listCandidates(ctx context.Context, db *gorm.DB, electionID string) ([]candidateModel, error) {
	var rows []candidateModel
	if err := db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_candidates_failed", err,
			"election_id", electionID,
		)
	}
	return rows, nil
}

func (r *Repository) ListElections(ctx context.Context) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_failed", err)
	}
	return r.toElectionEntities(ctx, rows)
}

func (r *Repository) ListElectionsByStatus(ctx context.Context, status entities.ElectionStatus) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_by_status_failed", err,
			"status", string(status),
		)
	}
	return r.toElectionEntities(ctx, rows)
}

func (r *Repository) toElectionEntities(ctx context.Context, rows []electionModel) ([]entities.Election, error) {
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		candidates, err := r.listCandidates(ctx, r.db, row.ID)
		if err != nil {
			return nil, err
		}
		entity, err := row.toEntity(candidates)
		if err != nil {
			return nil, err
		}
		items = append(items, entity)
	}
	return items, nil
}

// TransitionStatus is a conditional update: the status change applies only
// while the row still holds one of the expected source statuses and is not
// announced, so racing transitions resolve to exactly one winner.
func (r *Repository) TransitionStatus(
	ctx context.Context,
	electionID string,
	from []entities.ElectionStatus,
	to entities.ElectionStatus,
	at time.Time,
) (entities.Election, error) {
	electionID = strings.TrimSpace(electionID)
	sources := make([]string, 0, len(from))
	for _, status := range from {
		sources = append(sources, string(status))
	}

	update := r.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("id = ?", electionID).
		Where("status IN ?", sources).
		Where("announced = ?", false).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": at.UTC(),
		})
	if update.Error != nil {
		return entities.Election{}, r.logError("election_repo_transition_failed", update.Error,
			"election_id", electionID,
			"to_status", string(to),
		)
	}
	if update.RowsAffected == 0 {
		// Either the row is missing or its status no longer matches.
		if _, err := r.getElection(ctx, r.db, electionID); err != nil {
			return entities.Election{}, err
		}
		return entities.Election{}, domainerrors.ErrInvalidTransition
	}
	return r.getElection(ctx, r.db, electionID)
}

// FreezeResults performs the announce write under a row lock: the tally and
// announced flag land only while the election is completed and unannounced.
func (r *Repository) FreezeResults(
	ctx context.Context,
	electionID string,
	tally []entities.TallyEntry,
	announcedAt time.Time,
) (entities.Election, error) {
	electionID = strings.TrimSpace(electionID)
	payload, err := json.Marshal(tallyModelsFromEntity(tally))
	if err != nil {
		return entities.Election{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row electionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", electionID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrElectionNotFound
			}
			return err
		}
		if row.Announced {
			return domainerrors.ErrAlreadyAnnounced
		}
		if row.Status != string(entities.ElectionStatusCompleted) {
			return domainerrors.ErrInvalidTransition
		}
		return tx.Model(&electionModel{}).
			Where("id = ?", electionID).
			Updates(map[string]any{
				"announced":    true,
				"announced_at": announcedAt.UTC(),
				"results":      payload,
				"updated_at":   announcedAt.UTC(),
			}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrElectionNotFound) ||
			errors.Is(err, domainerrors.ErrAlreadyAnnounced) ||
			errors.Is(err, domainerrors.ErrInvalidTransition) {
			return entities.Election{}, err
		}
		return entities.Election{}, r.logError("election_repo_freeze_results_failed", err,
			"election_id", electionID,
		)
	}
	return r.getElection(ctx, r.db, electionID)
}

// CastBallot relies on the composite unique index on (election_id, voter_id)
// to close the duplicate-vote race at the storage contract, per the vote
// integrity requirement. The ballot insert, counter increment, and voted-set
// append commit or roll back together.
func (r *Repository) CastBallot(ctx context.Context, ballot entities.Ballot) error {
	row := ballotModelFromEntity(ballot)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var election electionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", row.ElectionID).
			First(&election).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrElectionNotFound
			}
			return err
		}
		if election.Status != string(entities.ElectionStatusOngoing) {
			return domainerrors.ErrInvalidTransition
		}

		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		increment := tx.Model(&candidateModel{}).
			Where("election_id = ?", row.ElectionID).
			Where("candidate_id = ?", row.CandidateID).
			Update("votes", gorm.Expr("votes + 1"))
		if increment.Error != nil {
			return increment.Error
		}
		if increment.RowsAffected == 0 {
			return domainerrors.ErrUnknownCandidate
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&votedElectionModel{
				VoterID:    row.VoterID,
				ElectionID: row.ElectionID,
				CastAt:     row.CastAt,
			}).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		if errors.Is(err, domainerrors.ErrElectionNotFound) ||
			errors.Is(err, domainerrors.ErrInvalidTransition) ||
			errors.Is(err, domainerrors.ErrUnknownCandidate) {
			return err
		}
		return r.logError("election_repo_cast_ballot_failed", err,
			"election_id", strings.TrimSpace(ballot.ElectionID),
			"ballot_id", strings.TrimSpace(ballot.BallotID),
		)
	}
	return nil
}

func (r *Repository) HasVoted(ctx context.Context, electionID string, voterID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ballotModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Count(&count).Error
	if err != nil {
		return false, r.logError("election_repo_has_voted_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return count > 0, nil
}

func (r *Repository) CountBallots(ctx context.Context, electionID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ballotModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Count(&count).Error
	if err != nil {
		return 0, r.logError("election_repo_count_ballots_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return int(count), nil
}

func (r *Repository) ListVotedElections(ctx context.Context, voterID string) ([]string, error) {
	var rows []votedElectionModel
	if err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_voted_failed", err,
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.ElectionID)
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:           envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("election_repo_append_outbox_failed", err,
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		}).Error
	if err != nil {
		return r.logError("election_repo_mark_outbox_failed", err,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "student-union/election-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

type electionModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	Title       string     `gorm:"column:title"`
	Scope       string     `gorm:"column:scope"`
	Status      string     `gorm:"column:status"`
	OpensAt     time.Time  `gorm:"column:opens_at"`
	ClosesAt    time.Time  `gorm:"column:closes_at"`
	Announced   bool       `gorm:"column:announced"`
	AnnouncedAt *time.Time `gorm:"column:announced_at"`
	Results     []byte     `gorm:"column:results"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) electionModel {
	row := electionModel{
		ID:        strings.TrimSpace(election.ElectionID),
		Title:     strings.TrimSpace(election.Title),
		Scope:     election.Scope.String(),
		Status:    string(election.Status),
		OpensAt:   election.OpensAt.UTC(),
		ClosesAt:  election.ClosesAt.UTC(),
		Announced: election.Announced,
		CreatedAt: election.CreatedAt.UTC(),
		UpdatedAt: election.UpdatedAt.UTC(),
	}
	if election.AnnouncedAt != nil {
		at := election.AnnouncedAt.UTC()
		row.AnnouncedAt = &at
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m electionModel) toEntity(candidates []candidateModel) (entities.Election, error) {
	scope, err := entities.ParseScope(m.Scope)
	if err != nil {
		return entities.Election{}, err
	}
	entity := entities.Election{
		ElectionID: m.ID,
		Title:      m.Title,
		Scope:      scope,
		Status:     entities.ElectionStatus(m.Status),
		OpensAt:    m.OpensAt.UTC(),
		ClosesAt:   m.ClosesAt.UTC(),
		Announced:  m.Announced,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
	if m.AnnouncedAt != nil {
		at := m.AnnouncedAt.UTC()
		entity.AnnouncedAt = &at
	}
	for _, candidate := range candidates {
		entity.Candidates = append(entity.Candidates, entities.Candidate{
			CandidateID: candidate.CandidateID,
			Name:        candidate.Name,
			Votes:       candidate.Votes,
			Position:    candidate.Position,
		})
	}
	if len(m.Results) > 0 {
		var rows []tallyModel
		if err := json.Unmarshal(m.Results, &rows); err != nil {
			return entities.Election{}, err
		}
		for _, row := range rows {
			entity.Results = append(entity.Results, entities.TallyEntry{
				CandidateID: row.CandidateID,
				Name:        row.Name,
				Votes:       row.Votes,
				Rank:        row.Rank,
			})
		}
	}
	return entity, nil
}

type candidateModel struct {
	ElectionID  string `gorm:"column:election_id;primaryKey"`
	CandidateID string `gorm:"column:candidate_id;primaryKey"`
	Name        string `gorm:"column:name"`
	Votes       int    `gorm:"column:votes"`
	Position    int    `gorm:"column:position"`
}

func (candidateModel) TableName() string {
	return "election_candidates"
}

func candidateModelsFromEntity(election entities.Election) []candidateModel {
	rows := make([]candidateModel, 0, len(election.Candidates))
	for _, candidate := range election.Candidates {
		rows = append(rows, candidateModel{
			ElectionID:  strings.TrimSpace(election.ElectionID),
			CandidateID: candidate.CandidateID,
			Name:        candidate.Name,
			Votes:       candidate.Votes,
			Position:    candidate.Position,
		})
	}
	return rows
}

type ballotModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ElectionID  string    `gorm:"column:election_id;uniqueIndex:uq_ballots_election_voter"`
	VoterID     string    `gorm:"column:voter_id;uniqueIndex:uq_ballots_election_voter"`
	CandidateID string    `gorm:"column:candidate_id"`
	CastAt      time.Time `gorm:"column:cast_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	return ballotModel{
		ID:          strings.TrimSpace(ballot.BallotID),
		ElectionID:  strings.TrimSpace(ballot.ElectionID),
		VoterID:     strings.TrimSpace(ballot.VoterID),
		CandidateID: strings.TrimSpace(ballot.CandidateID),
		CastAt:      ballot.CastAt.UTC(),
	}
}

type votedElectionModel struct {
	VoterID    string    `gorm:"column:voter_id;primaryKey"`
	ElectionID string    `gorm:"column:election_id;primaryKey"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (votedElectionModel) TableName() string {
	return "voter_voted_elections"
}

type tallyModel struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Votes       int    `json:"votes"`
	Rank        int    `json:"rank"`
}

func tallyModelsFromEntity(entries []entities.TallyEntry) []tallyModel {
	rows := make([]tallyModel, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, tallyModel{
			CandidateID: entry.CandidateID,
			Name:        entry.Name,
			Votes:       entry.Votes,
			Rank:        entry.Rank,
		})
	}
	return rows
}

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
