package language

import "strings"

type entry struct {
	code2   string // ISO 639-1
	code3   string // ISO 639-2 primary
	alt3    string // ISO 639-2 bibliographic alternate ("fre" vs "fra")
	display string
	word    string // full English name, lowercase
}

// Languages Whisper-family transcribers emit in practice. Codes outside
// this table pass through Normalize untouched when they look like ISO
// 639-1 already.
var languages = []entry{
	{"en", "eng", "", "English", "english"},
	{"es", "spa", "", "Spanish", "spanish"},
	{"fr", "fra", "fre", "French", "french"},
	{"de", "deu", "ger", "German", "german"},
	{"it", "ita", "", "Italian", "italian"},
	{"pt", "por", "", "Portuguese", "portuguese"},
	{"ja", "jpn", "", "Japanese", "japanese"},
	{"ko", "kor", "", "Korean", "korean"},
	{"zh", "zho", "chi", "Chinese", "chinese"},
	{"ru", "rus", "", "Russian", "russian"},
	{"ar", "ara", "", "Arabic", "arabic"},
	{"hi", "hin", "", "Hindi", "hindi"},
	{"nl", "nld", "dut", "Dutch", "dutch"},
	{"pl", "pol", "", "Polish", "polish"},
	{"sv", "swe", "", "Swedish", "swedish"},
	{"da", "dan", "", "Danish", "danish"},
	{"no", "nor", "", "Norwegian", "norwegian"},
	{"fi", "fin", "", "Finnish", "finnish"},
	{"tr", "tur", "", "Turkish", "turkish"},
	{"uk", "ukr", "", "Ukrainian", "ukrainian"},
}

var byKey map[string]*entry

func init() {
	byKey = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		byKey[e.code2] = e
		byKey[e.code3] = e
		if e.alt3 != "" {
			byKey[e.alt3] = e
		}
		byKey[e.word] = e
	}
}

func lookup(code string) *entry {
	return byKey[strings.ToLower(strings.TrimSpace(code))]
}

// Normalize converts a language code or English name to ISO 639-1 for
// storage alongside indexed chunks. Unrecognized two-letter codes pass
// through lowercased; anything else unrecognized normalizes to empty.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// Display returns a human-readable name for a recognized code, the
// uppercased code for an unrecognized one, and "Unknown" for empty input.
func Display(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
