package domain

import (
	"regexp"
	"strings"
)

// Username policy, enforced on both client and server: 3 to 20 characters
// from [a-zA-Z0-9._], no leading or trailing separator, no doubled
// separator.
var usernameChars = regexp.MustCompile(`^[a-zA-Z0-9._]{3,20}$`)

// ValidUsername reports whether name satisfies the username policy.
func ValidUsername(name string) bool {
	if !usernameChars.MatchString(name) {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		strings.HasSuffix(name, ".") || strings.HasSuffix(name, "_") {
		return false
	}
	for _, doubled := range []string{"..", "__", "._", "_."} {
		if strings.Contains(name, doubled) {
			return false
		}
	}
	return true
}
