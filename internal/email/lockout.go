package email

import (
	"fmt"
	"time"
)

const lockoutSubject = "Keywarden: account temporarily locked"

func lockoutText(username string, until time.Time, attempts int) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour account was locked after %d failed sign-in attempts.\n"+
			"You can try again after %s.\n\nIf this wasn't you, rotate your password.\n",
		username, attempts, until.UTC().Format(time.RFC1123),
	)
}

func lockoutHTML(username string, until time.Time, attempts int) string {
	return fmt.Sprintf(
		`<p>Hi %s,</p><p>Your account was locked after <b>%d</b> failed sign-in attempts.</p>`+
			`<p>You can try again after <b>%s</b>.</p><p>If this wasn't you, rotate your password.</p>`,
		username, attempts, until.UTC().Format(time.RFC1123),
	)
}
