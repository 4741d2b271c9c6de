package export

import "strings"

// SanitizeFilename replaces every character outside [A-Za-z0-9] with an
// underscore and lowercases the result.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}

func CSVFilename(reportName string) string {
	return SanitizeFilename(reportName) + ".csv"
}

func PowerBIFilename(reportName string) string {
	return SanitizeFilename(reportName) + "_powerbi.csv"
}

func TemplateFilename(reportName string) string {
	return SanitizeFilename(reportName) + "_template.json"
}
