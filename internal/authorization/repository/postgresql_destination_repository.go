package repository

import (
	"context"
	"database/sql"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	"github.com/openaccel/beamauth/internal/database"
	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// PostgreSQLBeamDestinationRepository implements beam destination lookups for PostgreSQL.
type PostgreSQLBeamDestinationRepository struct {
	db *sql.DB
}

// NewPostgreSQLBeamDestinationRepository creates a new PostgreSQL beam destination repository.
func NewPostgreSQLBeamDestinationRepository(db *sql.DB) *PostgreSQLBeamDestinationRepository {
	return &PostgreSQLBeamDestinationRepository{db: db}
}

// Get retrieves a beam destination by ID. Returns ErrDestinationNotFound if no row exists.
func (p *PostgreSQLBeamDestinationRepository) Get(
	ctx context.Context,
	id int64,
) (*authDomain.BeamDestination, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, active
			  FROM beam_destinations
			  WHERE id = $1`

	var dest authDomain.BeamDestination
	err := querier.QueryRowContext(ctx, query, id).Scan(&dest.ID, &dest.Name, &dest.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authDomain.ErrDestinationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get beam destination")
	}

	return &dest, nil
}

// List retrieves beam destinations ordered by ID, optionally restricted to
// active destinations.
func (p *PostgreSQLBeamDestinationRepository) List(
	ctx context.Context,
	activeOnly bool,
) ([]*authDomain.BeamDestination, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, active
			  FROM beam_destinations
			  ORDER BY id ASC`
	if activeOnly {
		query = `SELECT id, name, active
				 FROM beam_destinations
				 WHERE active = TRUE
				 ORDER BY id ASC`
	}

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list beam destinations")
	}
	defer func() {
		_ = rows.Close()
	}()

	destinations := make([]*authDomain.BeamDestination, 0)
	for rows.Next() {
		var dest authDomain.BeamDestination
		if err := rows.Scan(&dest.ID, &dest.Name, &dest.Active); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan beam destination")
		}
		destinations = append(destinations, &dest)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate beam destinations")
	}

	return destinations, nil
}
