package verificationtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.VerificationToken) error {

	query :=
		`INSERT INTO verification_tokens (token, identifier, token_type, expires, created_at)
         VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		token.Token, token.Identifier, token.Type, token.Expires, token.CreatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string, tokenType string) (*models.VerificationToken, error) {
	query :=
		`SELECT token, identifier, token_type, expires, created_at FROM verification_tokens
		 WHERE token = $1 AND token_type = $2
		 `

	vt := &models.VerificationToken{}
	err := r.db.QueryRowContext(ctx, query, token, tokenType).
		Scan(&vt.Token, &vt.Identifier, &vt.Type, &vt.Expires, &vt.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return vt, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {

	query :=
		`DELETE FROM verification_tokens
		 WHERE token = $1
		 `

	_, err := r.db.ExecContext(ctx, query, token)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteByIdentifier(ctx context.Context, identifier string, tokenType string) error {

	query :=
		`DELETE FROM verification_tokens
		 WHERE identifier = $1 AND token_type = $2
		 `

	_, err := r.db.ExecContext(ctx, query, identifier, tokenType)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindNewestLive(ctx context.Context, identifier string, tokenType string, now time.Time) (*models.VerificationToken, error) {
	query :=
		`SELECT token, identifier, token_type, expires, created_at FROM verification_tokens
		 WHERE identifier = $1 AND token_type = $2 AND expires > $3
		 ORDER BY created_at DESC
		 LIMIT 1
		 `

	vt := &models.VerificationToken{}
	err := r.db.QueryRowContext(ctx, query, identifier, tokenType, now).
		Scan(&vt.Token, &vt.Identifier, &vt.Type, &vt.Expires, &vt.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return vt, nil
}
