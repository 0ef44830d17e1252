package view

import (
	"errors"
	"strings"
)

var ErrNoPhone = errors.New("no dialable phone number")

// NormalizePhone keeps the digits of s and a leading '+'. It returns ""
// when no digits remain.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, c := range s {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '+' && i == 0:
			b.WriteRune(c)
		}
	}
	out := b.String()
	if strings.Trim(out, "+") == "" {
		return ""
	}
	return out
}

// DialURI builds the telephony URI the host shell opens. iOS gets the
// call-prompt scheme, everything else tel:.
func DialURI(phone, platform string) (string, error) {
	n := NormalizePhone(phone)
	if n == "" {
		return "", ErrNoPhone
	}
	if strings.EqualFold(strings.TrimSpace(platform), "ios") {
		return "telprompt:" + n, nil
	}
	return "tel:" + n, nil
}
