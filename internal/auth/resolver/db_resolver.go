package resolver

import (
	"context"
	"database/sql"
	"errors"

	"authbridge/internal/auth"
	"authbridge/internal/db"

	"github.com/google/uuid"
)

// DBResolver resolves profiles using the database.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	profile *auth.Profile,
) (string, error) {

	if profile == nil {
		return "", errors.New("profile is nil")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	// 1. Try identity lookup (client + subject)
	var userID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE client_name = $1
		  AND subject = $2
	`,
		profile.ClientName,
		profile.ID,
	).Scan(&userID)

	if err == nil {
		return userID.String(), nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	// 2. Email-based linking, only for addresses the provider vouches for
	err = sql.ErrNoRows
	if profile.Email != "" && profile.EmailVerified {
		err = tx.QueryRowContext(ctx, `
			SELECT id
			FROM users
			WHERE LOWER(email) = LOWER($1)
		`,
			profile.Email,
		).Scan(&userID)
	}

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	// 3. Create new user
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (email, email_verified)
			VALUES ($1, $2)
			RETURNING id
		`,
			sql.NullString{String: profile.Email, Valid: profile.Email != ""},
			profile.EmailVerified,
		).Scan(&userID)

		if err != nil {
			return "", err
		}
	}

	// 4. Create identity mapping
	_, err = tx.ExecContext(ctx, `
		INSERT INTO identities (user_id, client_name, subject)
		VALUES ($1, $2, $3)
	`,
		userID,
		profile.ClientName,
		profile.ID,
	)

	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return userID.String(), nil
}
