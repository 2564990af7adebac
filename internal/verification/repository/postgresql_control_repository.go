package repository

import (
	"context"
	"database/sql"

	"github.com/openaccel/beamauth/internal/database"
	apperrors "github.com/openaccel/beamauth/internal/errors"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// PostgreSQLControlRepository implements credited control lookups for
// PostgreSQL. Uses transaction support via database.GetTx().
type PostgreSQLControlRepository struct {
	db *sql.DB
}

// NewPostgreSQLControlRepository creates a new PostgreSQL credited control repository.
func NewPostgreSQLControlRepository(db *sql.DB) *PostgreSQLControlRepository {
	return &PostgreSQLControlRepository{db: db}
}

// Get retrieves a credited control with its group by ID. Returns
// ErrControlNotFound when no row exists.
func (p *PostgreSQLControlRepository) Get(
	ctx context.Context,
	id int64,
) (*verificationDomain.CreditedControl, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT cc.id, cc.name, cc.weight, g.id, g.name, g.leader_workgroup_id
			  FROM credited_controls cc
			  JOIN groups g ON g.id = cc.group_id
			  WHERE cc.id = $1`

	var (
		control verificationDomain.CreditedControl
		group   verificationDomain.Group
	)

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&control.ID,
		&control.Name,
		&control.Weight,
		&group.ID,
		&group.Name,
		&group.LeaderWorkgroupID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, verificationDomain.ErrControlNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credited control")
	}

	control.Group = &group

	return &control, nil
}

// List retrieves all credited controls with their groups ordered by weight.
func (p *PostgreSQLControlRepository) List(
	ctx context.Context,
) ([]*verificationDomain.CreditedControl, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT cc.id, cc.name, cc.weight, g.id, g.name, g.leader_workgroup_id
			  FROM credited_controls cc
			  JOIN groups g ON g.id = cc.group_id
			  ORDER BY cc.weight ASC, cc.id ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credited controls")
	}
	defer func() {
		_ = rows.Close()
	}()

	controls := make([]*verificationDomain.CreditedControl, 0)
	for rows.Next() {
		var (
			control verificationDomain.CreditedControl
			group   verificationDomain.Group
		)

		err := rows.Scan(
			&control.ID,
			&control.Name,
			&control.Weight,
			&group.ID,
			&group.Name,
			&group.LeaderWorkgroupID,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credited control")
		}

		control.Group = &group
		controls = append(controls, &control)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credited controls")
	}

	return controls, nil
}
