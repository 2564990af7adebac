package notification

import (
	"fmt"
	"html"
	"strings"
	"time"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

const friendlyDateFormat = "02-Jan-2006 15:04"

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(friendlyDateFormat)
}

func formatComments(comments *string) string {
	if comments == nil {
		return ""
	}
	return html.EscapeString(*comments)
}

// ExpirationMessageBody renders the HTML report sent to admins, ops, and
// group leaders. Each set produces a section only when non-empty; callers
// scope the report by passing nil for the sets a recipient should not see.
func ExpirationMessageBody(
	proxyHostname string,
	expiredAuthorizations []*authDomain.DestinationAuthorization,
	expiredVerifications []*verificationDomain.ControlVerification,
	upcomingAuthorizationExpirations []*authDomain.DestinationAuthorization,
	upcomingVerificationExpirations []*verificationDomain.ControlVerification,
) string {
	var builder strings.Builder

	if len(expiredAuthorizations) > 0 {
		builder.WriteString("<h1>--- Expired Director's Authorizations ---</h1>\n")
		for _, authorization := range expiredAuthorizations {
			builder.WriteString("<div><b>Beam Destination:</b> ")
			builder.WriteString(html.EscapeString(authorization.DestinationName))
			builder.WriteString("</div>\n<div><b>Expired On:</b> ")
			builder.WriteString(formatDate(authorization.ExpirationDate))
			builder.WriteString("</div>\n<div><b>Comments:</b> ")
			builder.WriteString(formatComments(authorization.Comments))
			builder.WriteString("</div>\n<br/><br/>\n")
		}
	}

	if len(expiredVerifications) > 0 {
		builder.WriteString("<h1>--- Expired Credited Control Verifications ---</h1>\n")
		writeVerificationSection(&builder, expiredVerifications, "Expired On")
	}

	if len(upcomingAuthorizationExpirations) > 0 {
		builder.WriteString("<h1>--- Director's Authorizations Expiring Soon ---</h1>\n")
		for _, authorization := range upcomingAuthorizationExpirations {
			builder.WriteString("<div><b>Beam Destination:</b> ")
			builder.WriteString(html.EscapeString(authorization.DestinationName))
			builder.WriteString("</div>\n<div><b>Expires On:</b> ")
			builder.WriteString(formatDate(authorization.ExpirationDate))
			builder.WriteString("</div>\n<div><b>Comments:</b> ")
			builder.WriteString(formatComments(authorization.Comments))
			builder.WriteString("</div>\n<br/><br/>\n")
		}
	}

	if len(upcomingVerificationExpirations) > 0 {
		builder.WriteString("<h1>--- Credited Control Verifications Expiring Soon ---</h1>\n")
		writeVerificationSection(&builder, upcomingVerificationExpirations, "Expiring On")
	}

	writeSeeLink(&builder, proxyHostname)

	return builder.String()
}

func writeVerificationSection(
	builder *strings.Builder,
	verifications []*verificationDomain.ControlVerification,
	expirationLabel string,
) {
	for _, verification := range verifications {
		builder.WriteString("<div><b>Credited Control:</b> ")
		builder.WriteString(html.EscapeString(verification.CreditedControl.Name))
		builder.WriteString("</div>\n<div><b>Beam Destination:</b> ")
		builder.WriteString(html.EscapeString(verification.DestinationName))
		builder.WriteString("</div>\n<div><b>Verified On:</b> ")
		builder.WriteString(formatDate(verification.VerificationDate))
		builder.WriteString("</div>\n<div><b>Verified By:</b> ")
		if verification.VerifiedBy != nil {
			builder.WriteString(html.EscapeString(verification.VerifiedBy.FullName()))
		}
		fmt.Fprintf(builder, "</div>\n<div><b>%s:</b> ", expirationLabel)
		builder.WriteString(formatDate(verification.ExpirationDate))
		builder.WriteString("</div>\n<div><b>Comments:</b> ")
		builder.WriteString(formatComments(verification.Comments))
		builder.WriteString("</div>\n<br/><br/>\n")
	}
}

// DowngradeMessageBody renders the notice sent when a credited control
// verification is downgraded. All entries in the list share one control and
// one modification, so the header fields come from the first entry.
func DowngradeMessageBody(
	proxyHostname string,
	downgraded []*verificationDomain.ControlVerification,
) string {
	if len(downgraded) == 0 {
		return ""
	}

	first := downgraded[0]

	var builder strings.Builder

	builder.WriteString("<div><b>Credited Control:</b> ")
	builder.WriteString(html.EscapeString(first.CreditedControl.Name))
	builder.WriteString("</div>\n<div><b>Beam Destinations:</b> ")
	for _, verification := range downgraded {
		builder.WriteString("<div>")
		builder.WriteString(html.EscapeString(verification.DestinationName))
		builder.WriteString("</div>")
	}
	builder.WriteString("</div>\n<div><b>Modified On:</b> ")
	builder.WriteString(first.ModifiedDate.Format(friendlyDateFormat))
	builder.WriteString("</div>\n<div><b>Modified By:</b> ")
	builder.WriteString(html.EscapeString(first.ModifiedBy.FullName()))
	builder.WriteString("</div>\n<div><b>Verification:</b> ")
	builder.WriteString(first.Status.String())
	builder.WriteString("</div>\n<div><b>Comments:</b> ")
	builder.WriteString(formatComments(first.Comments))
	builder.WriteString("</div>")

	writeSeeLink(&builder, proxyHostname)

	return builder.String()
}

func writeSeeLink(builder *strings.Builder, proxyHostname string) {
	fmt.Fprintf(builder,
		"\n<div><b>See:</b> <a href=\"https://%s/beam-auth/\">Beam Authorization</a></div>\n",
		proxyHostname)
}
