package privacy

import (
	"regexp"
	"strconv"
)

// DefaultRedaction is the replacement text substituted for every match.
const DefaultRedaction = "[REDACTED]"

// Patterns are applied credentials-first so a looser rule can't partially
// swallow a token a tighter rule would otherwise redact whole.
var (
	credentialPattern  = regexp.MustCompile(`(?i)\b(api[_-]?key|bearer|token|secret|password|auth)\b\s*[:=]?\s*['"]?([A-Za-z0-9_\-\.]{12,})['"]?`)
	emailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	ipv4Pattern        = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	posixHomePattern   = regexp.MustCompile(`/(?:home|Users)/[^/\s]+(?:/[^\s]*)?`)
	windowsHomePattern = regexp.MustCompile(`C:\\Users\\[^\\\s]+(?:\\[^\s]*)?`)
)

func isPreservedIP(ip string) bool {
	if ip == "127.0.0.1" || ip == "0.0.0.0" {
		return true
	}
	return len(ip) >= 8 && ip[:8] == "192.168."
}

func redactIPv4(redaction string) func(string) string {
	return func(match string) string {
		if isPreservedIP(match) {
			return match
		}
		return redaction
	}
}

// Config controls which redaction rules run, plus the user-supplied
// pattern list applied after the built-ins. The built-in rules always run
// in a fixed order (credentials, emails, IPv4, file paths); Config has no
// setting that changes that order.
type Config struct {
	Enabled           bool
	RedactCredentials bool
	RedactEmails      bool
	RedactIPv4        bool
	RedactFilePaths   bool
	Replacement       string
	CustomPatterns    []string
}

// DefaultConfig enables every built-in rule with the default replacement.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		RedactCredentials: true,
		RedactEmails:      true,
		RedactIPv4:        true,
		RedactFilePaths:   true,
		Replacement:       DefaultRedaction,
	}
}

// Result reports how many matches each rule produced, without mutating
// the input.
type Result struct {
	Counts map[string]int
	Total  int
}

// Scrub applies every enabled rule in order and returns the redacted
// text. If cfg.Enabled is false, text is returned unchanged.
func Scrub(text string, cfg Config) string {
	if !cfg.Enabled {
		return text
	}
	replacement := cfg.Replacement
	if replacement == "" {
		replacement = DefaultRedaction
	}

	if cfg.RedactCredentials {
		text = credentialPattern.ReplaceAllString(text, "$1 "+replacement)
	}
	if cfg.RedactEmails {
		text = emailPattern.ReplaceAllString(text, replacement)
	}
	if cfg.RedactIPv4 {
		text = ipv4Pattern.ReplaceAllStringFunc(text, redactIPv4(replacement))
	}
	if cfg.RedactFilePaths {
		text = posixHomePattern.ReplaceAllString(text, replacement)
		text = windowsHomePattern.ReplaceAllString(text, replacement)
	}
	for _, pattern := range cfg.CustomPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		text = re.ReplaceAllString(text, replacement)
	}
	return text
}

// Analyze counts matches per rule without mutating text.
func Analyze(text string, cfg Config) Result {
	result := Result{Counts: make(map[string]int)}
	if !cfg.Enabled {
		return result
	}

	if cfg.RedactCredentials {
		n := len(credentialPattern.FindAllString(text, -1))
		result.Counts["credentials"] = n
		result.Total += n
	}
	if cfg.RedactEmails {
		n := len(emailPattern.FindAllString(text, -1))
		result.Counts["emails"] = n
		result.Total += n
	}
	if cfg.RedactIPv4 {
		n := 0
		for _, match := range ipv4Pattern.FindAllString(text, -1) {
			if isPreservedIP(match) {
				continue
			}
			n++
		}
		result.Counts["ipv4"] = n
		result.Total += n
	}
	if cfg.RedactFilePaths {
		n := len(posixHomePattern.FindAllString(text, -1)) + len(windowsHomePattern.FindAllString(text, -1))
		result.Counts["file_paths"] = n
		result.Total += n
	}
	for i, pattern := range cfg.CustomPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		n := len(re.FindAllString(text, -1))
		result.Counts[customRuleName(i)] = n
		result.Total += n
	}
	return result
}

func customRuleName(i int) string {
	return "custom_" + strconv.Itoa(i)
}
