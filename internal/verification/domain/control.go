package domain

// Group is a named collection of credited controls whose verification is the
// responsibility of one leader workgroup.
type Group struct {
	ID                int64
	Name              string
	LeaderWorkgroupID int64
}

// CreditedControl is a safety control credited toward beam authorization.
// Weight orders controls within reports.
type CreditedControl struct {
	ID     int64
	Name   string
	Weight int
	Group  *Group
}
