// Package usecase implements the staff directory and actor permission oracle.
package usecase

import (
	"context"

	directoryDomain "github.com/openaccel/beamauth/internal/directory/domain"
	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// directoryUseCase implements DirectoryUseCase backed by the staff directory.
type directoryUseCase struct {
	staffRepo     StaffRepository
	workgroupRepo WorkgroupRepository
}

// NewDirectoryUseCase creates a new DirectoryUseCase with the provided repositories.
func NewDirectoryUseCase(staffRepo StaffRepository, workgroupRepo WorkgroupRepository) DirectoryUseCase {
	return &directoryUseCase{
		staffRepo:     staffRepo,
		workgroupRepo: workgroupRepo,
	}
}

// Resolve maps a username to its staff record.
func (d *directoryUseCase) Resolve(ctx context.Context, username string) (*directoryDomain.Staff, error) {
	staff, err := d.staffRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to resolve username %q", username)
	}

	return staff, nil
}

// CheckAdmin returns ErrForbidden unless the staff member is an administrator.
func (d *directoryUseCase) CheckAdmin(staff *directoryDomain.Staff) error {
	if staff == nil || !staff.Admin {
		return apperrors.Wrap(apperrors.ErrForbidden, "administrator role required")
	}

	return nil
}

// CheckAdminOrLeader returns ErrForbidden unless the staff member is an
// administrator or a leader of the given workgroup.
func (d *directoryUseCase) CheckAdminOrLeader(
	ctx context.Context,
	staff *directoryDomain.Staff,
	workgroupID int64,
) error {
	if staff == nil {
		return apperrors.Wrap(apperrors.ErrForbidden, "administrator or group leader role required")
	}

	if staff.Admin {
		return nil
	}

	isLeader, err := d.workgroupRepo.IsLeader(ctx, staff.ID, workgroupID)
	if err != nil {
		return apperrors.Wrap(err, "failed to check group leadership")
	}

	if !isLeader {
		return apperrors.Wrap(apperrors.ErrForbidden, "administrator or group leader role required")
	}

	return nil
}

// WorkgroupLeaders lists the leaders of a workgroup.
func (d *directoryUseCase) WorkgroupLeaders(
	ctx context.Context,
	workgroupID int64,
) ([]*directoryDomain.Staff, error) {
	leaders, err := d.workgroupRepo.Leaders(ctx, workgroupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list workgroup leaders")
	}

	return leaders, nil
}
