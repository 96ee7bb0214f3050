package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/park285/oto-tournament-bot/internal/domain"
)

const pqUniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var profileColumns = []string{
	"sequence_id", "public_id", "owner_id", "display_name", "game_id", "level", "region", "handle", "created_at",
}

var tournamentColumns = []string{
	"id", "name", "game_type", "map", "mode", "starts_on", "starts_at", "entry_fee", "prize_pool", "created_by", "created_at",
}

// Postgres is the durable store backed by database/sql and lib/pq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects, applies migrations and returns a ready store.
func OpenPostgres(ctx context.Context, databaseURL string, logger *zap.Logger) (*Postgres, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres store")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	// basic pool settings
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewPostgres(db), nil
}

func (p *Postgres) InsertProfile(ctx context.Context, draft domain.ProfileDraft) (*domain.Profile, error) {
	query, args, err := psql.
		Insert("user_profiles").
		Columns("owner_id", "display_name", "game_id", "level", "region", "handle").
		Values(draft.OwnerID, draft.DisplayName, draft.GameID, draft.Level, draft.Region, nullString(draft.Handle)).
		Suffix("RETURNING " + strings.Join(profileColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert profile: %w", err)
	}

	prof, err := scanProfile(p.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, classify("insert profile", err)
	}
	return prof, nil
}

func (p *Postgres) ProfileByOwner(ctx context.Context, owner string) (*domain.Profile, error) {
	query, args, err := psql.
		Select(profileColumns...).
		From("user_profiles").
		Where(sq.Eq{"owner_id": strings.TrimSpace(owner)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile: %w", err)
	}

	prof, err := scanProfile(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("select profile", err)
	}
	return prof, nil
}

func (p *Postgres) InsertTournament(ctx context.Context, draft domain.TournamentDraft) (*domain.Tournament, error) {
	query, args, err := psql.
		Insert("tournaments").
		Columns("name", "game_type", "map", "mode", "starts_on", "starts_at", "entry_fee", "prize_pool", "created_by").
		Values(
			draft.Name,
			string(draft.GameType),
			string(draft.Map),
			string(draft.Mode),
			draft.Date.Format(domain.DateLayout),
			draft.Time,
			draft.EntryFee,
			draft.PrizePool,
			draft.CreatedBy,
		).
		Suffix("RETURNING " + strings.Join(tournamentColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert tournament: %w", err)
	}

	t, err := scanTournament(p.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, classify("insert tournament", err)
	}
	return t, nil
}

func (p *Postgres) RecentTournaments(ctx context.Context, limit int) ([]*domain.Tournament, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	query, args, err := psql.
		Select(tournamentColumns...).
		From("tournaments").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select tournaments: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("select tournaments", err)
	}
	defer rows.Close()

	out := make([]*domain.Tournament, 0, limit)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, classify("scan tournament", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate tournaments", err)
	}
	return out, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

func (p *Postgres) Close() error { return p.db.Close() }

// DB exposes the pool for diagnostics.
func (p *Postgres) DB() *sql.DB { return p.db }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		prof   domain.Profile
		handle sql.NullString
	)
	if err := row.Scan(
		&prof.SequenceID,
		&prof.PublicID,
		&prof.OwnerID,
		&prof.DisplayName,
		&prof.GameID,
		&prof.Level,
		&prof.Region,
		&handle,
		&prof.CreatedAt,
	); err != nil {
		return nil, err
	}
	prof.Handle = handle.String
	return &prof, nil
}

func scanTournament(row rowScanner) (*domain.Tournament, error) {
	var (
		t        domain.Tournament
		gameType string
		mapName  string
		mode     string
		clock    time.Time
	)
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&gameType,
		&mapName,
		&mode,
		&t.Date,
		&clock,
		&t.EntryFee,
		&t.PrizePool,
		&t.CreatedBy,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	t.GameType = domain.GameType(gameType)
	t.Map = domain.MapName(mapName)
	t.Mode = domain.Mode(mode)
	// lib/pq decodes TIME as a time.Time on 0000-01-01.
	t.Time = clock.Format(domain.TimeLayout)
	return &t, nil
}

// classify maps driver errors onto the store sentinels.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
