package usecase

import (
	"context"

	directoryDomain "github.com/openaccel/beamauth/internal/directory/domain"
)

// StaffRepository defines staff directory lookup operations.
type StaffRepository interface {
	Get(ctx context.Context, id int64) (*directoryDomain.Staff, error)
	FindByUsername(ctx context.Context, username string) (*directoryDomain.Staff, error)
}

// WorkgroupRepository defines workgroup membership lookup operations.
type WorkgroupRepository interface {
	Leaders(ctx context.Context, workgroupID int64) ([]*directoryDomain.Staff, error)
	IsLeader(ctx context.Context, staffID, workgroupID int64) (bool, error)
}

// DirectoryUseCase resolves actor identities and answers role questions.
// It is the permission oracle consulted by the verification registry before
// any mutating operation.
type DirectoryUseCase interface {
	// Resolve maps a username to its staff record.
	Resolve(ctx context.Context, username string) (*directoryDomain.Staff, error)

	// CheckAdmin returns ErrForbidden unless the staff member is an administrator.
	CheckAdmin(staff *directoryDomain.Staff) error

	// CheckAdminOrLeader returns ErrForbidden unless the staff member is an
	// administrator or a leader of the given workgroup.
	CheckAdminOrLeader(ctx context.Context, staff *directoryDomain.Staff, workgroupID int64) error

	// WorkgroupLeaders lists the leaders of a workgroup.
	WorkgroupLeaders(ctx context.Context, workgroupID int64) ([]*directoryDomain.Staff, error)
}
