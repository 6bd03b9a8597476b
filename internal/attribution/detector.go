// Package attribution resolves who a memory's created_by should name: the
// human or agent actually driving the session, not the hook event that
// happened to trigger the save. Privacy's is_visible check keys off this
// value, so it has to identify a person/agent consistently across
// invocations of the same short-lived hook process.
package attribution

import (
	"os"
	"os/exec"
	"strings"
	"sync"
)

var (
	cachedName string
	once       sync.Once
)

// DetectAgent returns the identity cmd/kaizen-hook stamps onto created_by.
// Checks, in order: KAIZEN_AGENT_NAME, KAIZEN_USER, `git config user.name`,
// then "hooks". The git lookup is cached after the first call since it
// shells out and a hook process otherwise pays that cost on every
// invocation.
//
// The terminal fallback is "hooks", not "unknown": is_visible's private
// branch only ever matches created_by against current_user or the
// legacy-creator set ("default", "hooks"), so a hook invocation with no
// resolvable identity has to land on one of those two sentinels to keep
// its own private memories visible to the session that wrote them —
// "unknown" would match neither and silently orphan them.
func DetectAgent() string {
	once.Do(func() {
		cachedName = detectAgentUncached()
	})
	return cachedName
}

func detectAgentUncached() string {
	if name := strings.TrimSpace(os.Getenv("KAIZEN_AGENT_NAME")); name != "" {
		return name
	}
	if name := strings.TrimSpace(os.Getenv("KAIZEN_USER")); name != "" {
		return name
	}
	if name := gitUserName(); name != "" {
		return name
	}
	return "hooks"
}

func gitUserName() string {
	out, err := exec.Command("git", "config", "--get", "user.name").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
