package internal

import (
	"fmt"
	"io"
	"strings"
)

// Logf writes one line to w: the prefix, the calendar when given, then the
// formatted message.
func Logf(w io.Writer, prefix string, cal *CalendarInfo, format string, a ...any) {
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if cal != nil {
		parts = append(parts, fmt.Sprintf("Calendar %s:", cal))
	}
	parts = append(parts, fmt.Sprintf(format, a...))
	fmt.Fprintln(w, strings.Join(parts, " "))
}
