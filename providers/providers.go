package providers

import "strings"

// ID identifies a supported identity-provider family.
type ID string

const (
	Google    ID = "google"
	Microsoft ID = "microsoft"
	Unknown   ID = "unknown"
)

var (
	googleSuffixes = []string{
		"@gmail.com",
		"@googlemail.com",
	}
	microsoftSuffixes = []string{
		"@outlook.com",
		"@hotmail.com",
		"@live.com",
		"@office365.com",
	}
)

// Classify maps a mailbox address to a provider family by domain suffix,
// case-insensitively. Unknown is not an error: it means the caller must ask
// the user which provider hosts the address instead of auto-routing.
func Classify(email string) ID {
	e := strings.ToLower(strings.TrimSpace(email))
	for _, suffix := range googleSuffixes {
		if strings.HasSuffix(e, suffix) {
			return Google
		}
	}
	for _, suffix := range microsoftSuffixes {
		if strings.HasSuffix(e, suffix) {
			return Microsoft
		}
	}
	return Unknown
}
