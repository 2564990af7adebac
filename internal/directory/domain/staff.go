// Package domain defines the staff directory domain models.
// Staff records identify operators, verifiers, and group leaders; workgroups
// are the organizational units that receive escalation notifications.
package domain

import "strings"

// Staff represents a member of the facility staff directory.
type Staff struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Admin     bool
}

// FullName returns the display name for a staff member, falling back to the
// username when no name parts are recorded.
func (s *Staff) FullName() string {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		return s.Username
	}
	return name
}

// Workgroup is an organizational unit whose leaders receive escalation
// notifications for controls owned by the corresponding group.
type Workgroup struct {
	ID   int64
	Name string
}
