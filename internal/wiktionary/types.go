// Package wiktionary extracts sense observations from Kaikki JSONL dumps
// of Wiktionary. One dictionary entry in, zero or more observations out;
// malformed lines are logged and skipped.
package wiktionary

// Entry mirrors one line of a Kaikki dump (only the fields we need).
type Entry struct {
	Word         string        `json:"word"`
	POS          string        `json:"pos"`
	Lang         string        `json:"lang"`
	LangCode     string        `json:"lang_code"`
	Senses       []Sense       `json:"senses"`
	Translations []Translation `json:"translations"`
}

// Sense mirrors one sense of a Kaikki entry.
type Sense struct {
	Glosses      []string      `json:"glosses"`
	Translations []Translation `json:"translations"`
	Synonyms     []Synonym     `json:"synonyms"`
}

// Translation mirrors a translation from a Kaikki translation table.
// Sense is nil when the dump omits it; the table's gloss then falls back
// to the headword.
type Translation struct {
	Lang  string  `json:"lang"`
	Code  string  `json:"code"`
	Word  string  `json:"word"`
	Roman string  `json:"roman"`
	Sense *string `json:"sense"`
}

// Synonym mirrors a synonym listed under a Kaikki sense.
type Synonym struct {
	Word string `json:"word"`
}

// Stats holds extraction statistics for logging.
type Stats struct {
	TotalLines     int
	MalformedLines int
	SkippedEntries int
	Observations   int
	Duplicates     int
	Warnings       int
}

// warning kinds logged for suspicious dictionary data.
const (
	kindMalformedJSON     = "malformed-json"
	kindMalformedEntry    = "malformed-entry"
	kindLineTooLong       = "line-too-long"
	kindMissingCode       = "missing-code"
	kindMissingWord       = "missing-word"
	kindMissingSense      = "missing-sense"
	kindInvalidWhitespace = "invalid-whitespace"
)

// placeholderGloss is the heading Wiktionary uses for translation tables
// that carry no gloss of their own.
const placeholderGloss = "Translations"
