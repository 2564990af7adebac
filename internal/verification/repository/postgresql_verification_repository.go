// Package repository implements verification registry persistence for PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/openaccel/beamauth/internal/database"
	directoryDomain "github.com/openaccel/beamauth/internal/directory/domain"
	apperrors "github.com/openaccel/beamauth/internal/errors"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// verificationColumns is the shared select list for control verification
// queries. The verifier join is a LEFT JOIN because rows created by Toggle
// have never been verified.
const verificationColumns = `
	cv.id, cv.verification_id, cv.verification_date, cv.expiration_date,
	cv.comments, cv.modified_date,
	cc.id, cc.name, cc.weight,
	g.id, g.name, g.leader_workgroup_id,
	bd.id, bd.name,
	vs.id, vs.username, vs.first_name, vs.last_name, vs.admin,
	ms.id, ms.username, ms.first_name, ms.last_name, ms.admin`

const verificationJoins = `
	FROM control_verifications cv
	JOIN credited_controls cc ON cc.id = cv.credited_control_id
	JOIN groups g ON g.id = cc.group_id
	JOIN beam_destinations bd ON bd.id = cv.beam_destination_id
	LEFT JOIN staff vs ON vs.id = cv.verified_by
	JOIN staff ms ON ms.id = cv.modified_by`

// PostgreSQLVerificationRepository implements the verification registry store
// for PostgreSQL. Uses transaction support via database.GetTx().
type PostgreSQLVerificationRepository struct {
	db *sql.DB
}

// NewPostgreSQLVerificationRepository creates a new PostgreSQL verification repository.
func NewPostgreSQLVerificationRepository(db *sql.DB) *PostgreSQLVerificationRepository {
	return &PostgreSQLVerificationRepository{db: db}
}

// Get retrieves a control verification by ID. Returns ErrVerificationNotFound
// when no row exists.
func (p *PostgreSQLVerificationRepository) Get(
	ctx context.Context,
	id int64,
) (*verificationDomain.ControlVerification, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT` + verificationColumns + verificationJoins + `
			  WHERE cv.id = $1`

	row := querier.QueryRowContext(ctx, query, id)

	verification, err := scanVerification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, verificationDomain.ErrVerificationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get control verification")
	}

	return verification, nil
}

// Find retrieves the verification for one control at one destination.
// Returns ErrVerificationNotFound when the pair has never been toggled on.
func (p *PostgreSQLVerificationRepository) Find(
	ctx context.Context,
	controlID int64,
	destinationID int64,
) (*verificationDomain.ControlVerification, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT` + verificationColumns + verificationJoins + `
			  WHERE cv.credited_control_id = $1 AND cv.beam_destination_id = $2`

	row := querier.QueryRowContext(ctx, query, controlID, destinationID)

	verification, err := scanVerification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, verificationDomain.ErrVerificationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find control verification")
	}

	return verification, nil
}

// ListByDestination retrieves all verifications at one destination ordered by
// control weight.
func (p *PostgreSQLVerificationRepository) ListByDestination(
	ctx context.Context,
	destinationID int64,
) ([]*verificationDomain.ControlVerification, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT` + verificationColumns + verificationJoins + `
			  WHERE cv.beam_destination_id = $1
			  ORDER BY cc.weight ASC, cc.id ASC`

	rows, err := querier.QueryContext(ctx, query, destinationID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list control verifications")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanVerifications(rows)
}

// ListExpired retrieves verifications at active destinations whose expiration
// date has passed, regardless of status. Ordered by control weight.
func (p *PostgreSQLVerificationRepository) ListExpired(
	ctx context.Context,
	now time.Time,
) ([]*verificationDomain.ControlVerification, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT` + verificationColumns + verificationJoins + `
			  WHERE cv.expiration_date < $1
				AND bd.active = TRUE
			  ORDER BY cc.weight ASC, cc.id ASC`

	rows, err := querier.QueryContext(ctx, query, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired control verifications")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanVerifications(rows)
}

// ListVerifiedButExpired retrieves expired verifications at active
// destinations still holding a Verified or Provisionally Verified status.
// These are the rows the scanner must demote. Ordered by control weight.
func (p *PostgreSQLVerificationRepository) ListVerifiedButExpired(
	ctx context.Context,
	now time.Time,
) ([]*verificationDomain.ControlVerification, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT` + verificationColumns + verificationJoins + `
			  WHERE cv.expiration_date < $1
				AND cv.verification_id IN ($2, $3)
				AND bd.active = TRUE
			  ORDER BY cc.weight ASC, cc.id ASC`

	rows, err := querier.QueryContext(
		ctx,
		query,
		now,
		verificationDomain.StatusVerified,
		verificationDomain.StatusProvisional,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list verified but expired control verifications")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanVerifications(rows)
}

// ListUpcomingExpirations retrieves verified rows at active destinations
// expiring between now and deadline. Ordered by control weight.
func (p *PostgreSQLVerificationRepository) ListUpcomingExpirations(
	ctx context.Context,
	now time.Time,
	deadline time.Time,
) ([]*verificationDomain.ControlVerification, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT` + verificationColumns + verificationJoins + `
			  WHERE cv.expiration_date > $1
				AND cv.expiration_date < $2
				AND cv.verification_id IN ($3, $4)
				AND bd.active = TRUE
			  ORDER BY cc.weight ASC, cc.id ASC`

	rows, err := querier.QueryContext(
		ctx,
		query,
		now,
		deadline,
		verificationDomain.StatusVerified,
		verificationDomain.StatusProvisional,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list upcoming control verification expirations")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanVerifications(rows)
}

// Create inserts a new control verification and assigns the generated ID.
func (p *PostgreSQLVerificationRepository) Create(
	ctx context.Context,
	verification *verificationDomain.ControlVerification,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO control_verifications
			  (credited_control_id, beam_destination_id, verification_id, verification_date,
			   verified_by, expiration_date, comments, modified_by, modified_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		verification.CreditedControl.ID,
		verification.DestinationID,
		verification.Status,
		verification.VerificationDate,
		staffID(verification.VerifiedBy),
		verification.ExpirationDate,
		verification.Comments,
		verification.ModifiedBy.ID,
		verification.ModifiedDate,
	).Scan(&verification.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to create control verification")
	}

	return nil
}

// Update rewrites the mutable verification fields. Returns
// ErrVerificationNotFound when the row no longer exists.
func (p *PostgreSQLVerificationRepository) Update(
	ctx context.Context,
	verification *verificationDomain.ControlVerification,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE control_verifications
			  SET verification_id = $1, verification_date = $2, verified_by = $3,
				  expiration_date = $4, comments = $5, modified_by = $6, modified_date = $7
			  WHERE id = $8`

	result, err := querier.ExecContext(
		ctx,
		query,
		verification.Status,
		verification.VerificationDate,
		staffID(verification.VerifiedBy),
		verification.ExpirationDate,
		verification.Comments,
		verification.ModifiedBy.ID,
		verification.ModifiedDate,
		verification.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update control verification")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return verificationDomain.ErrVerificationNotFound
	}

	return nil
}

// Delete removes a control verification. The audit history rows remain.
func (p *PostgreSQLVerificationRepository) Delete(ctx context.Context, id int64) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM control_verifications WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete control verification")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return verificationDomain.ErrVerificationNotFound
	}

	return nil
}

// BulkRevoke demotes the given verifications to Not Verified in one
// statement: status 100, comment "Expired", verifier cleared, verification
// and modified dates set to modifiedDate. No-op for an empty ID list.
func (p *PostgreSQLVerificationRepository) BulkRevoke(
	ctx context.Context,
	ids []int64,
	modifiedBy int64,
	modifiedDate time.Time,
) error {
	if len(ids) == 0 {
		return nil
	}

	querier := database.GetTx(ctx, p.db)

	placeholders := make([]string, len(ids))
	args := []any{verificationDomain.StatusNotVerified, verificationDomain.ExpiredComment, modifiedDate, modifiedBy}
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}

	query := fmt.Sprintf(`UPDATE control_verifications
			  SET verification_id = $1, comments = $2, verified_by = NULL,
				  verification_date = $3, modified_date = $3, modified_by = $4
			  WHERE id IN (%s)`, strings.Join(placeholders, ", "))

	_, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to bulk revoke control verifications")
	}

	return nil
}

func staffID(staff *directoryDomain.Staff) any {
	if staff == nil {
		return nil
	}
	return staff.ID
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerification(row rowScanner) (*verificationDomain.ControlVerification, error) {
	var (
		verification verificationDomain.ControlVerification
		control      verificationDomain.CreditedControl
		group        verificationDomain.Group
		modifier     directoryDomain.Staff

		verifierID        sql.NullInt64
		verifierUsername  sql.NullString
		verifierFirstName sql.NullString
		verifierLastName  sql.NullString
		verifierAdmin     sql.NullBool
	)

	err := row.Scan(
		&verification.ID,
		&verification.Status,
		&verification.VerificationDate,
		&verification.ExpirationDate,
		&verification.Comments,
		&verification.ModifiedDate,
		&control.ID,
		&control.Name,
		&control.Weight,
		&group.ID,
		&group.Name,
		&group.LeaderWorkgroupID,
		&verification.DestinationID,
		&verification.DestinationName,
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
		return nil, err
	}

	control.Group = &group
	verification.CreditedControl = &control
	verification.ModifiedBy = modifier

	if verifierID.Valid {
		verification.VerifiedBy = &directoryDomain.Staff{
			ID:        verifierID.Int64,
			Username:  verifierUsername.String,
			FirstName: verifierFirstName.String,
			LastName:  verifierLastName.String,
			Admin:     verifierAdmin.Bool,
		}
	}

	return &verification, nil
}

func scanVerifications(rows *sql.Rows) ([]*verificationDomain.ControlVerification, error) {
	verifications := make([]*verificationDomain.ControlVerification, 0)
	for rows.Next() {
		verification, err := scanVerification(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan control verification")
		}
		verifications = append(verifications, verification)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate control verifications")
	}

	return verifications, nil
}
