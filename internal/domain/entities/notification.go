package entities

import "time"

// EmailMessage is an outbound email
type EmailMessage struct {
	From     string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// LoginContext describes where a login came from
type LoginContext struct {
	IPAddress string
	UserAgent string
	At        time.Time
}
