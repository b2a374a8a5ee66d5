package tracker

import "strings"

var credentialKeywords = []string{
	"credential",
	"login",
	"auth",
	"password",
	"username",
	"sign in",
	"logged in",
}

// IsCredentialFailure reports whether an error text looks like a missing
// or rejected sign-in. The match is a case-insensitive substring test.
func IsCredentialFailure(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range credentialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
