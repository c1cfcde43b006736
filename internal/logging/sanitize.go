package logging

import (
	"regexp"
	"strings"
)

const redacted = "<redacted>"

var (
	sensitiveName        = `token|access-token|api-key|apikey|secret|password|passwd|authorization|auth|cookie|session|client-secret|bearer`
	sensitiveFlagPattern = regexp.MustCompile(`(?i)(--(?:` + sensitiveName + `))(=|\s+)(\S+)`)
	sensitiveFlagToken   = regexp.MustCompile(`(?i)^--(?:` + sensitiveName + `)$`)
	sensitiveEnvPattern  = regexp.MustCompile(`(?i)\b([A-Z0-9_]*?(?:TOKEN|SECRET|PASSWORD|PASS|API_KEY|APIKEY|AUTH|AUTHORIZATION|BEARER|COOKIE|SESSION|CLIENT_SECRET)[A-Z0-9_]*)=([^\s]+)`)
	authBearerPattern    = regexp.MustCompile(`(?i)\bAuthorization:\s*Bearer\s+[^\s"'` + "`" + `]+`)
	bearerPattern        = regexp.MustCompile(`(?i)\bBearer\s+[^\s]+`)
)

// SanitizeCommand redacts common secrets in a command line string.
func SanitizeCommand(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	out := sensitiveFlagPattern.ReplaceAllString(value, "$1$2"+redacted)
	out = sensitiveEnvPattern.ReplaceAllString(out, "$1="+redacted)
	out = authBearerPattern.ReplaceAllString(out, "Authorization: Bearer "+redacted)
	out = bearerPattern.ReplaceAllString(out, "Bearer "+redacted)
	return out
}

// SanitizeTokens returns a copy of an argument vector with secret-looking
// option values redacted. A sensitive option given as "--token value" has the
// following token replaced.
func SanitizeTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	redactNext := false
	for i, tok := range tokens {
		switch {
		case redactNext:
			out[i] = redacted
			redactNext = false
		case sensitiveFlagToken.MatchString(tok):
			out[i] = tok
			redactNext = true
		default:
			out[i] = SanitizeCommand(tok)
		}
	}
	return out
}

var sensitiveKey = regexp.MustCompile(`(?i)^(?:` + sensitiveName + `)$`)

// RedactValues returns a copy of values with entries whose key names a
// secret replaced by "<redacted>".
func RedactValues[M ~map[string]any](values M) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if sensitiveKey.MatchString(k) {
			out[k] = redacted
			continue
		}
		out[k] = v
	}
	return out
}
