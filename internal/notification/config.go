// Package notification delivers expiration and downgrade notices to admins,
// operations, and group leaders via email and the incident logbook.
package notification

// Config carries every setting the dispatcher needs. It is populated from
// the application config at wire-up time; the dispatcher itself never reads
// the environment.
type Config struct {
	// Sender is the From address for every outgoing message.
	Sender string

	// EmailDomain is appended to staff usernames to derive group leader
	// addresses.
	EmailDomain string

	// AdminRecipients receive the full expiration report whenever any set is
	// non-empty.
	AdminRecipients []string

	// OpsRecipients receive the expired sets only.
	OpsRecipients []string

	// DowngradedRecipients receive verification downgrade notices.
	DowngradedRecipients []string

	UpcomingExpirationSubject string
	ExpiredSubject            string
	DowngradedSubject         string

	// ProxyHostname is the public web host used to build absolute links in
	// message bodies.
	ProxyHostname string

	// NotifyGroups gates the per-workgroup leader fan-out so test
	// deployments do not mail real group leaders.
	NotifyGroups bool
}
