package utils

import "strings"

// SanitizeFilename strips characters that would break a quoted
// Content-Disposition filename parameter.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	return strings.ReplaceAll(name, "\r\n", " ")
}
