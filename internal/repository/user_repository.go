package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/seedlink/platform/internal/model"
)

// UserRepo provides data access to the users table.  USSD users are
// looked up by normalized phone number; the booking API looks up by ID
// taken from the verified identity token.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, phone_number, name, county, account_type, pin_hash, cooldown_until, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var name, county sql.NullString
	var pinHash sql.NullString
	var cooldown sql.NullTime
	var accountType string
	err := row.Scan(&u.ID, &u.PhoneNumber, &name, &county, &accountType, &pinHash, &cooldown, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Name = name.String
	u.County = county.String
	u.AccountType = model.AccountType(accountType)
	if pinHash.Valid {
		h := pinHash.String
		u.PinHash = &h
	}
	if cooldown.Valid {
		t := cooldown.Time
		u.CooldownUntil = &t
	}
	return &u, nil
}

// GetByPhone returns the user registered under the normalized phone
// number, or ErrNotFound.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE phone_number = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, phone))
}

// GetByID returns the user with the given primary key, or ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads the user row under an exclusive lock inside
// the provided transaction.  The reservation engine locks the booker
// before summing outstanding quantities so that two concurrent bookings
// by the same identity serialize on the quota check.
func (r *UserRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.User, error) {
	const q = `SELECT id, cooldown_until, account_type FROM users WHERE id = ? FOR UPDATE`
	var u model.User
	var cooldown sql.NullTime
	var accountType string
	err := tx.QueryRowContext(ctx, q, id).Scan(&u.ID, &cooldown, &accountType)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.AccountType = model.AccountType(accountType)
	if cooldown.Valid {
		t := cooldown.Time
		u.CooldownUntil = &t
	}
	return &u, nil
}

// GetOrCreateByPhone returns the user for the phone number, creating an
// INDIVIDUAL account when none exists.  An existing user with no county
// on record gets the supplied county filled in; an existing county is
// never overwritten.  Name behaves the same way.
func (r *UserRepo) GetOrCreateByPhone(ctx context.Context, phone, county, name string) (*model.User, error) {
	existing, err := r.GetByPhone(ctx, phone)
	if err == nil {
		if (existing.County == "" && county != "") || (existing.Name == "" && name != "") {
			const upd = `UPDATE users
                         SET county = IF(county IS NULL OR county = '', ?, county),
                             name   = IF(name IS NULL OR name = '', ?, name)
                         WHERE id = ?`
			if _, err := r.db.ExecContext(ctx, upd, county, name, existing.ID); err != nil {
				return nil, err
			}
			return r.GetByID(ctx, existing.ID)
		}
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	const ins = `INSERT INTO users (phone_number, name, county, account_type) VALUES (?, ?, ?, 'INDIVIDUAL')`
	res, err := r.db.ExecContext(ctx, ins, phone, name, county)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// SetCooldownTx stamps the user's cooldown inside the provided
// transaction.  Called by the expiry reconciler as the penalty for an
// unclaimed booking.
func (r *UserRepo) SetCooldownTx(ctx context.Context, tx *sql.Tx, userID uint64, until time.Time) error {
	const q = `UPDATE users SET cooldown_until = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, until.UTC().Format("2006-01-02 15:04:05"), userID)
	return err
}

// SetPin stores the bcrypt hash of a user's USSD PIN.  ErrNotFound is
// returned when no user row matches.
func (r *UserRepo) SetPin(ctx context.Context, userID uint64, pinHash string) error {
	const q = `UPDATE users SET pin_hash = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, pinHash, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
