package ingest

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Extensions picked up by a walk. Everything else is ignored.
var noteExtensions = map[string]bool{
	".pdf":  true,
	".ppt":  true,
	".pptx": true,
	".doc":  true,
	".docx": true,
}

var (
	unitInPath     = regexp.MustCompile(`(?i)UNIT\s*(\d+)`)
	moduleInPath   = regexp.MustCompile(`(?:^|[/\\\s_\-.(])[Mm](\d+)`)
	chapterInName  = regexp.MustCompile(`(?i)chap-?(\d+)`)
	dollarPrefix   = regexp.MustCompile(`^_\$`)
	chapterPrefix  = regexp.MustCompile(`(?i)^Chap-?\d+_?`)
	unitPrefix     = regexp.MustCompile(`(?i)^Unit\s*\d+\s*-?\s*`)
	modulePrefix   = regexp.MustCompile(`(?i)^M\d+\s*`)
	copySuffix     = regexp.MustCompile(`\s*\(\d+\)\s*`)
	underscores    = regexp.MustCompile(`_+`)
	hyphens        = regexp.MustCompile(`-+`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

// IsNoteFile reports whether name has one of the ingestible extensions
func IsNoteFile(name string) bool {
	return noteExtensions[strings.ToLower(filepath.Ext(name))]
}

// ExtractUnitNumber finds the unit of a file from, in order: a "UNIT n" path
// segment or file name, a module marker such as M2, or a chapter marker such
// as Chap-3. relPath is relative to the ingestion root.
func ExtractUnitNumber(relPath string) *int {
	relPath = filepath.ToSlash(relPath)
	base := filepath.Base(relPath)

	for _, m := range []struct {
		re  *regexp.Regexp
		src string
	}{
		{unitInPath, relPath},
		{moduleInPath, relPath},
		{chapterInName, base},
	} {
		if match := m.re.FindStringSubmatch(m.src); match != nil {
			if n, err := strconv.Atoi(match[1]); err == nil {
				return &n
			}
		}
	}
	return nil
}

// GenerateTitle turns a file name into a display title: known prefixes are
// dropped, separators become spaces and every word is capitalised.
func GenerateTitle(fileName string) string {
	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))

	title := dollarPrefix.ReplaceAllString(name, "")
	title = chapterPrefix.ReplaceAllString(title, "")
	title = unitPrefix.ReplaceAllString(title, "")
	title = modulePrefix.ReplaceAllString(title, "")
	title = copySuffix.ReplaceAllString(title, " ")
	title = underscores.ReplaceAllString(title, " ")
	title = hyphens.ReplaceAllString(title, " ")
	title = strings.TrimSpace(repeatedSpaces.ReplaceAllString(title, " "))

	if title == "" {
		return name
	}
	return capitalizeWords(title)
}

// capitalizeWords upper cases every letter that starts a word
func capitalizeWords(s string) string {
	runes := []rune(s)
	prevWord := false
	for i, r := range runes {
		isWord := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWord && !prevWord {
			runes[i] = unicode.ToUpper(r)
		}
		prevWord = isWord
	}
	return string(runes)
}

// Description is the text stored with an ingested file
func Description(unit *int) string {
	if unit == nil {
		return "Course material"
	}
	return "Unit " + strconv.Itoa(*unit) + " material"
}
