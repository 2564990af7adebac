package repository

import (
	"context"
	"database/sql"

	"github.com/openaccel/beamauth/internal/database"
	directoryDomain "github.com/openaccel/beamauth/internal/directory/domain"
	apperrors "github.com/openaccel/beamauth/internal/errors"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// PostgreSQLHistoryRepository implements the append-only verification audit
// log for PostgreSQL. Uses transaction support via database.GetTx().
type PostgreSQLHistoryRepository struct {
	db *sql.DB
}

// NewPostgreSQLHistoryRepository creates a new PostgreSQL verification history repository.
func NewPostgreSQLHistoryRepository(db *sql.DB) *PostgreSQLHistoryRepository {
	return &PostgreSQLHistoryRepository{db: db}
}

// Create appends an audit row and assigns the generated ID.
func (p *PostgreSQLHistoryRepository) Create(
	ctx context.Context,
	history *verificationDomain.VerificationHistory,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO verification_history
			  (control_verification_id, verification_id, verification_date, verified_by,
			   expiration_date, comments, modified_by, modified_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		history.ControlVerificationID,
		history.Status,
		history.VerificationDate,
		staffID(history.VerifiedBy),
		history.ExpirationDate,
		history.Comments,
		history.ModifiedBy.ID,
		history.ModifiedDate,
	).Scan(&history.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to create verification history")
	}

	return nil
}

// ListByVerification retrieves a page of audit rows for one verification,
// newest first.
func (p *PostgreSQLHistoryRepository) ListByVerification(
	ctx context.Context,
	controlVerificationID int64,
	offset int,
	limit int,
) ([]*verificationDomain.VerificationHistory, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT vh.id, vh.control_verification_id, vh.verification_id,
					 vh.verification_date, vh.expiration_date, vh.comments, vh.modified_date,
					 vs.id, vs.username, vs.first_name, vs.last_name, vs.admin,
					 ms.id, ms.username, ms.first_name, ms.last_name, ms.admin
			  FROM verification_history vh
			  LEFT JOIN staff vs ON vs.id = vh.verified_by
			  JOIN staff ms ON ms.id = vh.modified_by
			  WHERE vh.control_verification_id = $1
			  ORDER BY vh.modified_date DESC, vh.id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, controlVerificationID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list verification history")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*verificationDomain.VerificationHistory, 0)
	for rows.Next() {
		var (
			history  verificationDomain.VerificationHistory
			modifier directoryDomain.Staff

			verifierID        sql.NullInt64
			verifierUsername  sql.NullString
			verifierFirstName sql.NullString
			verifierLastName  sql.NullString
			verifierAdmin     sql.NullBool
		)

		err := rows.Scan(
			&history.ID,
			&history.ControlVerificationID,
			&history.Status,
			&history.VerificationDate,
			&history.ExpirationDate,
			&history.Comments,
			&history.ModifiedDate,
			&verifierID,
			&verifierUsername,
			&verifierFirstName,
			&verifierLastName,
			&verifierAdmin,
			&modifier.ID,
			&modifier.Username,
			&modifier.FirstName,
			&modifier.LastName,
			&modifier.Admin,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan verification history")
		}

		history.ModifiedBy = modifier
		if verifierID.Valid {
			history.VerifiedBy = &directoryDomain.Staff{
				ID:        verifierID.Int64,
				Username:  verifierUsername.String,
				FirstName: verifierFirstName.String,
				LastName:  verifierLastName.String,
				Admin:     verifierAdmin.Bool,
			}
		}

		entries = append(entries, &history)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate verification history")
	}

	return entries, nil
}
