package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	filePrefix    = "Cours_"
	fileExt       = ".pdf"
	untitled      = "sans_titre"
	maxTitleRunes = 120
)

// FileName returns the document file name for a lesson title:
// Cours_<title>.pdf with whitespace runs turned into "_" and characters that
// are unsafe in file names replaced.
func FileName(title string) string {
	title = norm.NFC.String(strings.TrimSpace(title))

	var b strings.Builder
	n := 0
	pendingSep := false
	for _, r := range title {
		if n >= maxTitleRunes {
			break
		}
		if unicode.IsSpace(r) {
			pendingSep = true
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			n++
			pendingSep = false
		}
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			r = '_'
		}
		b.WriteRune(r)
		n++
	}

	name := strings.Trim(b.String(), "._")
	if name == "" {
		name = untitled
	}
	return filePrefix + name + fileExt
}
