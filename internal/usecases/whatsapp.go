package usecases

import (
	"net/url"
	"strings"
)

// WhatsAppLink builds a wa.me chat link, with msg prefilled when given. Spaces are sent
// as %20 so the text survives clients that do not decode '+'.
func WhatsAppLink(number, msg string) string {
	link := "https://wa.me/" + strings.TrimPrefix(strings.TrimSpace(number), "+")
	if msg == "" {
		return link
	}
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

// joinLines drops empty lines and joins the rest with newlines.
func joinLines(lines ...string) string {
	kept := lines[:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func lineIf(ok bool, line string) string {
	if !ok {
		return ""
	}
	return line
}
