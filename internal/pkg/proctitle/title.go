// Package proctitle names planner processes so ps and top tell the server
// apart from plannerctl runs.
package proctitle

import "strings"

// MaxLen is the kernel limit for a task name, excluding the NUL.
const MaxLen = 15

// For builds the title for a process role such as "server" or "ctl".
func For(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return "planner"
	}
	return Truncate("planner-" + role)
}

// Truncate trims title to MaxLen bytes without splitting a UTF-8 sequence.
func Truncate(title string) string {
	title = strings.TrimSpace(title)
	if len(title) <= MaxLen {
		return title
	}
	cut := MaxLen
	for cut > 0 && title[cut]&0xC0 == 0x80 {
		cut--
	}
	return title[:cut]
}
