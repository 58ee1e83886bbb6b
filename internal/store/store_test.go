package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*UserRepository, *MessageRepository, *LeadRepository, *FollowUpRepository, *EventRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), NewMessageRepository(db), NewLeadRepository(db),
		NewFollowUpRepository(db), NewEventRepository(db), mock
}

func TestUserRepository_GetOrCreate(t *testing.T) {
	users, _, _, _, _, mock := newMockDB(t)

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("contact-1", "ig-9", "Asha").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "contact_id", "instagram_user_id", "display_name", "created_at"},
		).AddRow(int64(7), "contact-1", "ig-9", "Asha", created))

	u, err := users.GetOrCreate(context.Background(), "contact-1", "ig-9", "Asha")

	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "contact-1", u.ContactID)
	assert.Equal(t, "Asha", u.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetOrCreate_Error(t *testing.T) {
	users, _, _, _, _, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(assert.AnError)

	_, err := users.GetOrCreate(context.Background(), "contact-1", "", "")
	assert.Error(t, err)
}

func TestMessageRepository_AppendInbound(t *testing.T) {
	_, messages, _, _, _, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(int64(7), DirectionInbound, "hello", "mc-msg-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := messages.AppendInbound(context.Background(), 7, "hello", "mc-msg-1")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_AppendOutbound(t *testing.T) {
	_, messages, _, _, _, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(int64(7), DirectionOutbound, "reply text", "pipeline").
		WillReturnResult(sqlmock.NewResult(2, 1))

	err := messages.AppendOutbound(context.Background(), 7, "reply text", "pipeline")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_RecentHistory(t *testing.T) {
	_, messages, _, _, _, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery("SELECT id, user_id, direction, text, created_at").
		WithArgs(int64(7), 5).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "direction", "text", "created_at"},
		).
			AddRow(int64(1), int64(7), DirectionInbound, "hi", now.Add(-2*time.Minute)).
			AddRow(int64(2), int64(7), DirectionOutbound, "hello back", now.Add(-time.Minute)))

	history, err := messages.RecentHistory(context.Background(), 7, 5)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Text)
	assert.Equal(t, DirectionOutbound, history[1].Direction)
}

func TestLeadRepository_Upsert(t *testing.T) {
	_, _, leads, _, _, mock := newMockDB(t)

	lastAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO leads").
		WithArgs(int64(7), "stay", 75, "intent", lastAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := leads.Upsert(context.Background(), 7, "stay", 75, "intent", lastAt)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_Get_NotFound(t *testing.T) {
	_, _, leads, _, _, mock := newMockDB(t)

	mock.ExpectQuery("SELECT user_id, intent, score, stage").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "intent", "score", "stage", "last_message_at", "updated_at"}))

	lead, err := leads.Get(context.Background(), 7)

	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestFollowUpRepository_Upsert(t *testing.T) {
	_, _, _, followUps, _, mock := newMockDB(t)

	at := time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO follow_ups").
		WithArgs(int64(7), at, "draft text", "intent stay, score 75").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := followUps.Upsert(context.Background(), 7, at, "draft text", "intent stay, score 75")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Insert(t *testing.T) {
	_, _, _, _, events, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO lead_events").
		WithArgs(sqlmock.AnyArg(), int64(7), EventLeadScored, []byte(`{"score":75}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := events.Insert(context.Background(), 7, EventLeadScored, map[string]interface{}{"score": 75})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
