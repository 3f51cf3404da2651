package utils

import (
	"net/url"
	"regexp"
	"strings"
)

const mailWebHost = "mail.google.com"

var (
	mailFragmentPattern = regexp.MustCompile(`(?i)^[^/]+/([a-f0-9]+)$`)
	bareThreadPattern   = regexp.MustCompile(`(?i)^[a-f0-9]{12,}$`)
)

// MailReference identifies a mail thread and the web link that opens it
type MailReference struct {
	ThreadID string
	URL      string
}

// ParseMailReference accepts a mail web URL such as
// https://mail.google.com/mail/u/0/#inbox/<id> or a bare hexadecimal thread id.
func ParseMailReference(input string) (MailReference, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return MailReference{}, false
	}

	if strings.Contains(input, mailWebHost+"/mail/") {
		u, err := url.Parse(input)
		if err == nil {
			if m := mailFragmentPattern.FindStringSubmatch(u.Fragment); m != nil {
				return MailReference{ThreadID: m[1], URL: input}, true
			}
		}
	}

	if bareThreadPattern.MatchString(input) {
		return MailReference{
			ThreadID: input,
			URL:      "https://" + mailWebHost + "/mail/u/0/#all/" + input,
		}, true
	}

	return MailReference{}, false
}
