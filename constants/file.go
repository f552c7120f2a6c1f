package constants

import "strings"

// PDF is the only document format the extraction pipeline accepts.
const PDF = "PDF"

// AllowedExtensions holds the file extensions accepted for extraction.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// MaxUploadMBDefault caps uploads accepted by the HTTP API.
const MaxUploadMBDefault = 25

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without dot, any case) is accepted.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
