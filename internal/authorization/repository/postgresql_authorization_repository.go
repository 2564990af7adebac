// Package repository implements authorization version persistence for PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"time"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	"github.com/openaccel/beamauth/internal/database"
	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// PostgreSQLAuthorizationRepository implements the append-only authorization
// version store for PostgreSQL. Versions are ordered by their serial ID; the
// current version is the one with the highest ID. Uses transaction support
// via database.GetTx().
type PostgreSQLAuthorizationRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuthorizationRepository creates a new PostgreSQL authorization repository.
func NewPostgreSQLAuthorizationRepository(db *sql.DB) *PostgreSQLAuthorizationRepository {
	return &PostgreSQLAuthorizationRepository{db: db}
}

// FindCurrent retrieves the latest authorization version together with its
// destination rows. Returns ErrAuthorizationNotFound when no version exists.
func (p *PostgreSQLAuthorizationRepository) FindCurrent(ctx context.Context) (*authDomain.Authorization, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, created_at
			  FROM authorizations
			  ORDER BY id DESC
			  LIMIT 1`

	var authorization authDomain.Authorization
	err := querier.QueryRowContext(ctx, query).Scan(&authorization.ID, &authorization.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authDomain.ErrAuthorizationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find current authorization")
	}

	destinations, err := p.listDestinations(ctx, authorization.ID)
	if err != nil {
		return nil, err
	}
	authorization.Destinations = destinations

	return &authorization, nil
}

// CreateVersion persists a new authorization version and all of its
// destination rows, assigning the generated version ID to each row's
// composite key. The caller is responsible for transaction boundaries.
func (p *PostgreSQLAuthorizationRepository) CreateVersion(
	ctx context.Context,
	authorization *authDomain.Authorization,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO authorizations (created_at)
			  VALUES ($1)
			  RETURNING id`

	err := querier.QueryRowContext(ctx, query, authorization.CreatedAt).Scan(&authorization.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to create authorization version")
	}

	insertQuery := `INSERT INTO destination_authorizations
					(beam_destination_id, authorization_id, beam_mode, cw_limit, expiration_date, comments)
					VALUES ($1, $2, $3, $4, $5, $6)`

	for _, dest := range authorization.Destinations {
		dest.AuthorizationID = authorization.ID

		_, err := querier.ExecContext(
			ctx,
			insertQuery,
			dest.DestinationID,
			dest.AuthorizationID,
			dest.BeamMode,
			dest.CWLimit,
			dest.ExpirationDate,
			dest.Comments,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to create destination authorization")
		}
	}

	return nil
}

// ListExpired retrieves destination rows of the given version whose
// permission has expired: beam mode other than None, expiration date in the
// past, and an active destination. Ordered by destination ID.
func (p *PostgreSQLAuthorizationRepository) ListExpired(
	ctx context.Context,
	authorizationID int64,
	now time.Time,
) ([]*authDomain.DestinationAuthorization, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT da.beam_destination_id, da.authorization_id, bd.name,
					 da.beam_mode, da.cw_limit, da.expiration_date, da.comments
			  FROM destination_authorizations da
			  JOIN beam_destinations bd ON bd.id = da.beam_destination_id
			  WHERE da.authorization_id = $1
				AND da.beam_mode != 'None'
				AND da.expiration_date < $2
				AND bd.active = TRUE
			  ORDER BY da.beam_destination_id ASC`

	rows, err := querier.QueryContext(ctx, query, authorizationID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired destination authorizations")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanDestinationAuthorizations(rows)
}

// listDestinations loads all destination rows of one version ordered by
// destination ID.
func (p *PostgreSQLAuthorizationRepository) listDestinations(
	ctx context.Context,
	authorizationID int64,
) ([]*authDomain.DestinationAuthorization, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT da.beam_destination_id, da.authorization_id, bd.name,
					 da.beam_mode, da.cw_limit, da.expiration_date, da.comments
			  FROM destination_authorizations da
			  JOIN beam_destinations bd ON bd.id = da.beam_destination_id
			  WHERE da.authorization_id = $1
			  ORDER BY da.beam_destination_id ASC`

	rows, err := querier.QueryContext(ctx, query, authorizationID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list destination authorizations")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanDestinationAuthorizations(rows)
}

func scanDestinationAuthorizations(rows *sql.Rows) ([]*authDomain.DestinationAuthorization, error) {
	destinations := make([]*authDomain.DestinationAuthorization, 0)
	for rows.Next() {
		var dest authDomain.DestinationAuthorization

		err := rows.Scan(
			&dest.DestinationID,
			&dest.AuthorizationID,
			&dest.DestinationName,
			&dest.BeamMode,
			&dest.CWLimit,
			&dest.ExpirationDate,
			&dest.Comments,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan destination authorization")
		}

		destinations = append(destinations, &dest)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate destination authorizations")
	}

	return destinations, nil
}
