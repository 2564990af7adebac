// Package repository implements staff directory persistence for PostgreSQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/openaccel/beamauth/internal/database"
	directoryDomain "github.com/openaccel/beamauth/internal/directory/domain"
	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// PostgreSQLStaffRepository implements staff lookups for PostgreSQL.
// Uses transaction support via database.GetTx().
type PostgreSQLStaffRepository struct {
	db *sql.DB
}

// NewPostgreSQLStaffRepository creates a new PostgreSQL staff repository.
func NewPostgreSQLStaffRepository(db *sql.DB) *PostgreSQLStaffRepository {
	return &PostgreSQLStaffRepository{db: db}
}

// Get retrieves a staff member by ID. Returns ErrStaffNotFound if no row exists.
func (p *PostgreSQLStaffRepository) Get(ctx context.Context, id int64) (*directoryDomain.Staff, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, username, first_name, last_name, admin
			  FROM staff
			  WHERE id = $1`

	return p.scanStaff(querier.QueryRowContext(ctx, query, id))
}

// FindByUsername retrieves a staff member by username.
// Returns ErrStaffNotFound if no row exists.
func (p *PostgreSQLStaffRepository) FindByUsername(
	ctx context.Context,
	username string,
) (*directoryDomain.Staff, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, username, first_name, last_name, admin
			  FROM staff
			  WHERE username = $1`

	return p.scanStaff(querier.QueryRowContext(ctx, query, username))
}

func (p *PostgreSQLStaffRepository) scanStaff(row *sql.Row) (*directoryDomain.Staff, error) {
	var staff directoryDomain.Staff

	err := row.Scan(
		&staff.ID,
		&staff.Username,
		&staff.FirstName,
		&staff.LastName,
		&staff.Admin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, directoryDomain.ErrStaffNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get staff")
	}

	return &staff, nil
}
