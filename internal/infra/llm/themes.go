// Theme analyzer: asks the chat backend for a three-section report over
// a batch of entry bodies and parses it into a structured ThemeReport.
//
// The parser slices free-form model output on literal section labels,
// which is inherently fragile; the analysis prompt constrains the reply
// format as tightly as a local model allows, and every malformed line is
// skipped with a warning rather than failing the call.
package llm

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// entrySeparator joins entry bodies in the analysis prompt. Downstream
// parsers rely on the literal value to recover entry boundaries.
const entrySeparator = "\n\n---\n\n"

const (
	labelPatterns = "PATTERNS:"
	labelInsights = "INSIGHTS:"
	labelMoods    = "MOODS:"
)

const (
	defaultPatternStrength = 0.8
	defaultPatternType     = "custom"

	// Synthetic fallback pattern emitted when the model reply yields no
	// patterns but the user clearly journals regularly.
	fallbackPatternTitle       = "Regular Journaling"
	fallbackPatternDescription = "You keep a steady journaling habit across your entries"
	fallbackPatternStrength    = 0.7
	fallbackPatternType        = "habit"
	fallbackPatternTag         = "consistency"

	// Fallback threshold: strictly more than this many entries.
	fallbackMinEntries = 3
)

// AnalyzeThemes runs theme analysis over the given entry bodies.
//
// An empty input yields an empty report without touching the backend. A
// failed chat call is swallowed: the error is logged and a fixed
// neutral-leaning mood report is returned instead, because the journal UI
// treats analysis as best-effort. Cancellation is the exception and
// always propagates.
func (a *Adapter) AnalyzeThemes(ctx context.Context, entries []string) (*ThemeReport, error) {
	if len(entries) == 0 {
		return &ThemeReport{
			Patterns:   []ThemePattern{},
			Insights:   []string{},
			MoodTrends: map[string]float64{},
		}, nil
	}

	resp, err := a.Chat(ctx, ChatRequest{Message: analysisPrompt(entries)})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		a.logger.Warn("theme analysis chat failed, returning fallback report", "error", err)
		return &ThemeReport{
			Patterns:   []ThemePattern{},
			Insights:   []string{},
			MoodTrends: map[string]float64{"neutral": 0.5, "positive": 0.3, "negative": 0.2},
		}, nil
	}

	report := a.parseThemeReport(resp.Response)
	if len(report.Patterns) == 0 && len(entries) > fallbackMinEntries {
		report.Patterns = append(report.Patterns, ThemePattern{
			ID:          uuid.NewString(),
			Title:       fallbackPatternTitle,
			Description: fallbackPatternDescription,
			Strength:    fallbackPatternStrength,
			EntryIDs:    []string{},
			Tags:        []string{fallbackPatternTag},
			PatternType: fallbackPatternType,
		})
	}
	return report, nil
}

// analysisPrompt builds the chat message: format instructions followed by
// the joined entry bodies. No separate context field is used — the
// entries are the message.
func analysisPrompt(entries []string) string {
	var b strings.Builder
	b.WriteString("Analyze the following journal entries and report the recurring themes.\n")
	b.WriteString("Reply with exactly three labeled sections, in this order and syntax:\n\n")
	b.WriteString(labelPatterns + "\n- <title>: <description>\n")
	b.WriteString(labelInsights + "\n- <insight>\n")
	b.WriteString(labelMoods + "\n- <mood>: <percentage>\n\n")
	b.WriteString("Entries:\n\n")
	b.WriteString(strings.Join(entries, entrySeparator))
	return b.String()
}

// parseThemeReport slices the model reply on the section labels and
// parses each section's "- " lines. Lines that do not match are skipped
// with a warning; they never fail the report.
func (a *Adapter) parseThemeReport(out string) *ThemeReport {
	report := &ThemeReport{
		Patterns:   []ThemePattern{},
		Insights:   []string{},
		MoodTrends: map[string]float64{},
	}

	for _, line := range sectionLines(out, labelPatterns) {
		title, desc, ok := splitItem(line)
		if !ok {
			a.logger.Warn("skipping malformed pattern line", "line", line)
			continue
		}
		report.Patterns = append(report.Patterns, ThemePattern{
			ID:          uuid.NewString(),
			Title:       title,
			Description: desc,
			Strength:    defaultPatternStrength,
			EntryIDs:    []string{},
			Tags:        []string{},
			PatternType: defaultPatternType,
		})
	}

	report.Insights = append(report.Insights, sectionLines(out, labelInsights)...)

	for _, line := range sectionLines(out, labelMoods) {
		mood, value, ok := splitItem(line)
		if !ok {
			a.logger.Warn("skipping malformed mood line", "line", line)
			continue
		}
		pct, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			a.logger.Warn("skipping unparseable mood value", "mood", mood, "value", value)
			continue
		}
		// Wire format is a percentage; stored as a fraction, unclamped.
		report.MoodTrends[mood] = pct / 100
	}

	return report
}

// sectionLines returns the "- " item texts between the first occurrence
// of label and the next following section label. A repeated label only
// contributes its first occurrence. Lines not starting with "- " are
// dropped here; sections that need key/value splitting filter further.
func sectionLines(out, label string) []string {
	start := strings.Index(out, label)
	if start < 0 {
		return nil
	}
	section := out[start+len(label):]

	end := len(section)
	for _, other := range []string{labelPatterns, labelInsights, labelMoods} {
		if idx := strings.Index(section, other); idx >= 0 && idx < end {
			end = idx
		}
	}
	section = section[:end]

	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		items = append(items, strings.TrimSpace(strings.TrimPrefix(line, "- ")))
	}
	return items
}

// splitItem splits a section item once on ":" into a trimmed key and
// value. Items without a ":" or with an empty key are malformed.
func splitItem(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return "", "", false
	}
	return key, value, true
}
