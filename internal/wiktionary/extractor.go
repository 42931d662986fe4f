package wiktionary

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

const (
	// defaultMaxLineSize is the largest accepted JSONL line (16 MB).
	defaultMaxLineSize = 16 << 20

	// ctxCheckEvery is how many lines pass between cancellation checks.
	ctxCheckEvery = 4096
)

// Options configures an Extractor.
type Options struct {
	Policy       domain.SensePolicy
	SkipPOS      []string
	SkipSynonyms bool
	// DedupWindow is the number of recent observations remembered across
	// entries to drop repeats; 0 disables the window.
	DedupWindow int
	MaxLineSize int
}

// Extractor turns Kaikki entries into sense observations.
type Extractor struct {
	log    *slog.Logger
	opts   Options
	recent *lru.Cache[domain.Observation, struct{}]
}

// New creates an Extractor.
func New(log *slog.Logger, opts Options) (*Extractor, error) {
	if log == nil {
		log = slog.Default()
	}
	if opts.Policy == "" {
		opts.Policy = domain.SensePolicyExact
	}
	if opts.MaxLineSize <= 0 {
		opts.MaxLineSize = defaultMaxLineSize
	}
	skip := make([]string, len(opts.SkipPOS))
	for i, pos := range opts.SkipPOS {
		skip[i] = strings.ToLower(strings.TrimSpace(pos))
	}
	opts.SkipPOS = skip

	x := &Extractor{log: log, opts: opts}
	if opts.DedupWindow > 0 {
		cache, err := lru.New[domain.Observation, struct{}](opts.DedupWindow)
		if err != nil {
			return nil, fmt.Errorf("dedup window: %w", err)
		}
		x.recent = cache
	}
	return x, nil
}

// Run streams JSONL entries from r and calls emit once per observation, in
// input order. Malformed lines are logged and counted, never fatal. An error
// from emit or from reading r aborts the run.
func (x *Extractor) Run(ctx context.Context, r io.Reader, emit func(domain.Observation) error) (Stats, error) {
	var stats Stats
	br := bufio.NewReaderSize(r, x.opts.MaxLineSize)

	for {
		if stats.TotalLines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		line, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			for errors.Is(err, bufio.ErrBufferFull) {
				_, err = br.ReadSlice('\n')
			}
			stats.TotalLines++
			stats.MalformedLines++
			x.warn(&stats, kindLineTooLong, slog.Int("line", stats.TotalLines))
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return stats, fmt.Errorf("read line %d: %w", stats.TotalLines+1, err)
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("read line %d: %w", stats.TotalLines+1, err)
		}

		if trimmed := strings.TrimSpace(string(line)); trimmed != "" {
			stats.TotalLines++
			if procErr := x.processLine([]byte(trimmed), &stats, emit); procErr != nil {
				return stats, procErr
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	return stats, nil
}

func (x *Extractor) processLine(line []byte, stats *Stats, emit func(domain.Observation) error) error {
	var entry Entry
	if err := json.Unmarshal(line, &entry); err != nil {
		stats.MalformedLines++
		x.warn(stats, kindMalformedJSON, slog.Int("line", stats.TotalLines), slog.String("error", err.Error()))
		return nil
	}

	observations, err := x.ExtractEntry(&entry, stats)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedEntry) {
			stats.MalformedLines++
			x.warn(stats, kindMalformedEntry, slog.Int("line", stats.TotalLines), slog.String("error", err.Error()))
			return nil
		}
		return err
	}

	for _, o := range observations {
		if x.recent != nil {
			if x.recent.Contains(o) {
				stats.Duplicates++
				continue
			}
			x.recent.Add(o, struct{}{})
		}
		if err := emit(o); err != nil {
			return fmt.Errorf("emit observation: %w", err)
		}
		stats.Observations++
	}
	return nil
}

// ExtractEntry returns the distinct observations carried by one entry, in a
// deterministic order: translations (top-level table first, then per sense,
// synonyms after each sense's table), followed by the headword itself once
// per distinct gloss. An entry missing its word, language code or part of
// speech, including one that whitespace repair empties, wraps
// domain.ErrMalformedEntry. Translations left without a code or word by
// repair are skipped with a warning. Entries without senses or with a
// non-lexical part of speech yield nothing.
func (x *Extractor) ExtractEntry(entry *Entry, stats *Stats) ([]domain.Observation, error) {
	if stats == nil {
		stats = &Stats{}
	}
	if entry.Word == "" {
		return nil, fmt.Errorf("missing word: %w", domain.ErrMalformedEntry)
	}
	headword := x.clean(entry.Word, stats)
	language := x.clean(entry.LangCode, stats)
	switch {
	case headword == "":
		return nil, fmt.Errorf("entry %q: empty word after repair: %w", entry.Word, domain.ErrMalformedEntry)
	case language == "":
		return nil, fmt.Errorf("entry %q: missing lang_code: %w", entry.Word, domain.ErrMalformedEntry)
	case entry.POS == "":
		return nil, fmt.Errorf("entry %q: missing pos: %w", entry.Word, domain.ErrMalformedEntry)
	}

	if len(entry.Senses) == 0 || slices.Contains(x.opts.SkipPOS, strings.ToLower(entry.POS)) {
		stats.SkippedEntries++
		return nil, nil
	}

	c := collector{seen: make(map[domain.Observation]struct{})}
	var glosses []string
	seenGloss := make(map[string]struct{})

	// add records a translation after repairing its fields and reports
	// whether it was usable.
	add := func(tr Translation) bool {
		tr.Code = x.clean(tr.Code, stats)
		tr.Word = x.clean(tr.Word, stats)
		if !x.checkTranslation(entry, tr, stats) {
			return false
		}
		gloss := x.gloss(tr.Sense, headword, stats)
		c.add(domain.Observation{
			Word:     tr.Word,
			Language: tr.Code,
			Sense:    gloss,
			Headword: headword,
		})
		if _, ok := seenGloss[gloss]; !ok {
			seenGloss[gloss] = struct{}{}
			glosses = append(glosses, gloss)
		}
		return true
	}

	for _, tr := range entry.Translations {
		add(tr)
	}

	for i := range entry.Senses {
		sense := &entry.Senses[i]

		// The first translation gloss of a sense also describes its synonyms.
		var description *string
		for _, tr := range sense.Translations {
			if add(tr) && description == nil {
				description = tr.Sense
			}
		}

		if x.opts.SkipSynonyms || description == nil {
			continue
		}
		for _, syn := range usableSynonyms(sense.Synonyms) {
			add(Translation{Code: language, Word: syn.Word, Sense: description})
		}
	}

	for _, gloss := range glosses {
		c.add(domain.Observation{Word: headword, Language: language, Sense: gloss})
	}

	return c.out, nil
}

// checkTranslation logs data problems and reports whether the repaired tr
// is usable. A missing sense is logged but usable.
func (x *Extractor) checkTranslation(entry *Entry, tr Translation, stats *Stats) bool {
	switch {
	case tr.Code == "":
		x.warnTranslation(stats, kindMissingCode, entry, tr)
		return false
	case tr.Word == "":
		x.warnTranslation(stats, kindMissingWord, entry, tr)
		return false
	case tr.Sense == nil:
		x.warnTranslation(stats, kindMissingSense, entry, tr)
	}
	return true
}

// gloss resolves the sense key of a translation table entry. Missing or
// placeholder glosses fall back to the headword.
func (x *Extractor) gloss(sense *string, headword string, stats *Stats) string {
	if sense == nil {
		return x.opts.Policy.Key(headword)
	}
	g := x.clean(*sense, stats)
	if strings.TrimSpace(g) == "" || g == placeholderGloss {
		g = headword
	}
	return x.opts.Policy.Key(g)
}

// clean repairs whitespace in one field, logging when it had to.
func (x *Extractor) clean(text string, stats *Stats) string {
	fixed, ok := FixWhitespace(text)
	if !ok {
		x.warn(stats, kindInvalidWhitespace, slog.String("text", text))
	}
	return fixed
}

func (x *Extractor) warnTranslation(stats *Stats, kind string, entry *Entry, tr Translation) {
	x.warn(stats, kind,
		slog.String("language", entry.LangCode),
		slog.String("word", entry.Word),
		slog.String("translation_lang", tr.Lang),
		slog.String("translation_word", tr.Word),
	)
}

func (x *Extractor) warn(stats *Stats, kind string, attrs ...any) {
	stats.Warnings++
	x.log.Warn("suspicious dictionary data", append([]any{slog.String("kind", kind)}, attrs...)...)
}

// usableSynonyms returns the synonyms of a sense, or none at all when any
// of them lacks a word: one broken synonym usually means the list was
// scraped wrongly.
func usableSynonyms(synonyms []Synonym) []Synonym {
	for _, s := range synonyms {
		if s.Word == "" {
			return nil
		}
	}
	return synonyms
}

// collector keeps the first occurrence of each observation.
type collector struct {
	seen map[domain.Observation]struct{}
	out  []domain.Observation
}

func (c *collector) add(o domain.Observation) {
	if _, ok := c.seen[o]; ok {
		return
	}
	c.seen[o] = struct{}{}
	c.out = append(c.out, o)
}
