package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vibin_chat/models"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

// PostgresStore implements ChatStore on PostgreSQL through lib/pq
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			pair_key VARCHAR(520) PRIMARY KEY,
			match_id VARCHAR(64) NOT NULL,
			user1_handle VARCHAR(255) NOT NULL,
			user2_handle VARCHAR(255) NOT NULL,
			status VARCHAR(32) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// One conversation per canonical pair
		`CREATE TABLE IF NOT EXISTS conversations (
			conversation_id VARCHAR(64) PRIMARY KEY,
			user_low VARCHAR(255) NOT NULL,
			user_high VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_low, user_high)
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			seq BIGSERIAL PRIMARY KEY,
			message_id VARCHAR(64) NOT NULL UNIQUE,
			conversation_id VARCHAR(64) NOT NULL REFERENCES conversations(conversation_id),
			sender_id VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_conversation
		ON messages(conversation_id, created_at, seq)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return pkgerrors.Wrap(err, "postgresStore.Migrate")
		}
	}
	return nil
}

func (s *PostgresStore) FindMatch(ctx context.Context, userA, userB string) (*models.Match, error) {
	var m models.Match
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT pair_key, match_id, user1_handle, user2_handle, status, created_at
		FROM matches WHERE pair_key = $1`, models.PairKey(userA, userB)).
		Scan(&m.PairKey, &m.MatchID, &m.User1Handle, &m.User2Handle, &m.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "postgresStore.FindMatch.Scan")
	}
	m.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	return &m, nil
}

func (s *PostgresStore) CreateMatch(ctx context.Context, match models.Match) error {
	low, high := models.CanonicalPair(match.User1Handle, match.User2Handle)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (pair_key, match_id, user1_handle, user2_handle, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pair_key) DO NOTHING`,
		models.PairKey(low, high), match.MatchID, low, high, match.Status, time.Now().UTC())
	return pkgerrors.Wrap(err, "postgresStore.CreateMatch.Insert")
}

func (s *PostgresStore) FindConversation(ctx context.Context, low, high string) (*models.Conversation, error) {
	low, high = models.CanonicalPair(low, high)

	var id string
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT conversation_id, created_at FROM conversations
		WHERE user_low = $1 AND user_high = $2`, low, high).Scan(&id, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "postgresStore.FindConversation.Scan")
	}
	conv := newConversation(id, low, high, createdAt)
	return &conv, nil
}

// CreateConversation inserts or, when the pair already has a row, returns that row
func (s *PostgresStore) CreateConversation(ctx context.Context, low, high string) (*models.Conversation, error) {
	low, high = models.CanonicalPair(low, high)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (conversation_id, user_low, user_high, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_low, user_high) DO NOTHING`,
		uuid.NewString(), low, high, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "postgresStore.CreateConversation.Insert")
	}

	conv, err := s.FindConversation(ctx, low, high)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, pkgerrors.New("postgresStore.CreateConversation: row missing after insert")
	}
	return conv, nil
}

func (s *PostgresStore) GetConversationParticipants(ctx context.Context, conversationID string) (string, string, error) {
	var low, high string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_low, user_high FROM conversations WHERE conversation_id = $1`, conversationID).
		Scan(&low, &high)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrConversationNotFound
	}
	if err != nil {
		return "", "", pkgerrors.Wrap(err, "postgresStore.GetConversationParticipants.Scan")
	}
	return low, high, nil
}

func (s *PostgresStore) InsertMessage(ctx context.Context, message models.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (message_id, conversation_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		message.MessageID, message.ConversationID, message.SenderID, message.Content, message.CreatedAt.UTC())
	return pkgerrors.Wrap(err, "postgresStore.InsertMessage.Insert")
}

func (s *PostgresStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, sender_id, content, created_at FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, seq ASC`, conversationID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "postgresStore.ListMessages.Query")
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m := models.Message{ConversationID: conversationID}
		if err := rows.Scan(&m.MessageID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, pkgerrors.Wrap(err, "postgresStore.ListMessages.Scan")
		}
		m.CreatedAt = m.CreatedAt.UTC()
		m.SortKey = models.MessageSortKey(m.CreatedAt, m.MessageID)
		messages = append(messages, m)
	}
	return messages, pkgerrors.Wrap(rows.Err(), "postgresStore.ListMessages.Rows")
}
