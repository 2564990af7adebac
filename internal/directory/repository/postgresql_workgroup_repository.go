package repository

import (
	"context"
	"database/sql"

	"github.com/openaccel/beamauth/internal/database"
	directoryDomain "github.com/openaccel/beamauth/internal/directory/domain"
	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// PostgreSQLWorkgroupRepository implements workgroup membership lookups for PostgreSQL.
type PostgreSQLWorkgroupRepository struct {
	db *sql.DB
}

// NewPostgreSQLWorkgroupRepository creates a new PostgreSQL workgroup repository.
func NewPostgreSQLWorkgroupRepository(db *sql.DB) *PostgreSQLWorkgroupRepository {
	return &PostgreSQLWorkgroupRepository{db: db}
}

// Leaders retrieves the leaders of a workgroup ordered by username.
// Returns an empty slice when the workgroup has no leaders.
func (p *PostgreSQLWorkgroupRepository) Leaders(
	ctx context.Context,
	workgroupID int64,
) ([]*directoryDomain.Staff, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT s.id, s.username, s.first_name, s.last_name, s.admin
			  FROM workgroup_leaders wl
			  JOIN staff s ON s.id = wl.staff_id
			  WHERE wl.workgroup_id = $1
			  ORDER BY s.username ASC`

	rows, err := querier.QueryContext(ctx, query, workgroupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list workgroup leaders")
	}
	defer func() {
		_ = rows.Close()
	}()

	leaders := make([]*directoryDomain.Staff, 0)
	for rows.Next() {
		var staff directoryDomain.Staff
		err := rows.Scan(
			&staff.ID,
			&staff.Username,
			&staff.FirstName,
			&staff.LastName,
			&staff.Admin,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan workgroup leader")
		}
		leaders = append(leaders, &staff)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate workgroup leaders")
	}

	return leaders, nil
}

// IsLeader reports whether the staff member is a leader of the workgroup.
func (p *PostgreSQLWorkgroupRepository) IsLeader(
	ctx context.Context,
	staffID, workgroupID int64,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				SELECT 1 FROM workgroup_leaders
				WHERE workgroup_id = $1 AND staff_id = $2
			  )`

	var isLeader bool
	err := querier.QueryRowContext(ctx, query, workgroupID, staffID).Scan(&isLeader)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check workgroup leadership")
	}

	return isLeader, nil
}
