package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/seedlink/platform/internal/model"
)

// SessionRepo persists USSD conversation state.  The channel is
// connectionless: every request carries only a session identifier and the
// accumulated input text, so this table is the sole memory of where a
// conversation stands.  A session row is logically private to one
// sessionId, since the gateway delivers turns one at a time, but Save is a
// single atomic upsert so that duplicate deliveries (gateway retries)
// collapse onto one row instead of diverging.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the provided database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Load returns the session for sessionId when one exists and is still
// active; otherwise it returns a fresh blank session for the identifier.
// A row that timed out or terminated is deliberately not resurrected;
// the caller starts over under the same identifier.  Load performs no
// write; the blank session is only persisted by the first Save.
func (r *SessionRepo) Load(ctx context.Context, sessionID, phoneNumber string) (*model.Session, error) {
	const q = `SELECT session_id, phone_number, user_id, current_flow, current_step,
                      invalid_attempts, login_step, is_active, last_interaction
               FROM ussd_sessions WHERE session_id = ?`
	var s model.Session
	var userID sql.NullInt64
	var flow, step, loginStep sql.NullString
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(
		&s.SessionID, &s.PhoneNumber, &userID, &flow, &step,
		&s.InvalidAttempts, &loginStep, &s.IsActive, &s.LastInteraction,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if err == sql.ErrNoRows || !s.IsActive {
		return &model.Session{
			SessionID:   sessionID,
			PhoneNumber: phoneNumber,
			CurrentFlow: model.FlowWelcome,
			IsActive:    true,
		}, nil
	}
	if userID.Valid {
		id := uint64(userID.Int64)
		s.UserID = &id
	}
	s.CurrentFlow = model.Flow(flow.String)
	if s.CurrentFlow == "" {
		s.CurrentFlow = model.FlowWelcome
	}
	s.CurrentStep = step.String
	s.LoginStep = loginStep.String
	return &s, nil
}

// Save upserts the session in a single statement, always refreshing
// last_interaction.  INSERT ... ON DUPLICATE KEY UPDATE makes the
// create-or-overwrite atomic, so two racing saves for one sessionId can
// interleave in either order but can never produce two rows.
func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO ussd_sessions
                   (session_id, phone_number, user_id, current_flow, current_step,
                    invalid_attempts, login_step, is_active, last_interaction)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP())
               ON DUPLICATE KEY UPDATE
                   phone_number = VALUES(phone_number),
                   user_id = VALUES(user_id),
                   current_flow = VALUES(current_flow),
                   current_step = VALUES(current_step),
                   invalid_attempts = VALUES(invalid_attempts),
                   login_step = VALUES(login_step),
                   is_active = VALUES(is_active),
                   last_interaction = UTC_TIMESTAMP()`
	var userID interface{}
	if s.UserID != nil {
		userID = *s.UserID
	}
	_, err := r.db.ExecContext(ctx, q,
		s.SessionID, s.PhoneNumber, userID, string(s.CurrentFlow), s.CurrentStep,
		s.InvalidAttempts, s.LoginStep, s.IsActive,
	)
	return err
}

// SweepExpired marks every active session idle for longer than
// maxIdleMinutes as inactive and returns the number of sessions swept.
// A later request under a swept identifier silently starts fresh.
func (r *SessionRepo) SweepExpired(ctx context.Context, maxIdleMinutes int) (int64, error) {
	threshold := time.Now().UTC().Add(-time.Duration(maxIdleMinutes) * time.Minute)
	const q = `UPDATE ussd_sessions SET is_active = FALSE
               WHERE is_active = TRUE AND last_interaction < ?`
	res, err := r.db.ExecContext(ctx, q, threshold.Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
