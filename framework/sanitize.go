package framework

import "regexp"

// BlockedPrefix marks observations produced by the sanitizer or the
// confinement checks instead of a tool handler.
const BlockedPrefix = "BLOCKED: "

// dangerousPatterns is the built-in blocklist applied to every action before
// routing. It is a documented defense-in-depth layer, not the sole safety
// boundary: hosts can layer a policy hook on top and the file-write handler
// has its own confinement check.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)rm\s+(-[a-z]*r[a-z]*f|-[a-z]*f[a-z]*r)[a-z]*\s`),
	regexp.MustCompile(`(?i)rm\s+-[rf]+\s+/`),
	regexp.MustCompile(`(?i)mkfs(\.[a-z0-9]+)?\s`),
	regexp.MustCompile(`(?i)dd\s+.*of=/dev/`),
	regexp.MustCompile(`(?i)>\s*/dev/(sd|hd|nvme)`),
	regexp.MustCompile(`:\(\)\s*\{.*\};\s*:`),
	regexp.MustCompile(`(?i)chmod\s+(-[a-z]+\s+)?777\s+/`),
	regexp.MustCompile(`(?i)(curl|wget)[^|;&]*\|\s*(ba)?sh`),
	regexp.MustCompile(`(?i);\s*rm\s`),
	regexp.MustCompile("`[^`]*rm\\s[^`]*`"),
	regexp.MustCompile(`(?i)(python[0-9.]*|perl|ruby|node)\s+-[ce]\s+.*os\.(system|remove|rmdir)`),
	regexp.MustCompile(`(?i)shutil\.rmtree`),
	regexp.MustCompile(`(?i)subprocess\.(run|call|popen)`),
	regexp.MustCompile(`(?i)kill\s+-9\s+-?1\b`),
	regexp.MustCompile(`(?i)(shutdown|reboot|halt|poweroff)\b`),
	regexp.MustCompile(`(?i)/etc/(passwd|shadow|sudoers)`),
}

// Sanitize vets an action string against the dangerous-pattern blocklist.
// When a rule matches it returns a BLOCKED observation and false; otherwise it
// returns the action unchanged. The check is idempotent: an already blocked
// string still trips the same rules.
func Sanitize(action string) (string, bool) {
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(action) {
			return BlockedPrefix + "dangerous pattern detected in: " + action, false
		}
	}
	return action, true
}
