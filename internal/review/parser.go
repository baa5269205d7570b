package review

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Fixed literal strings the analysis prompt instructs the model to emit.
const (
	SummaryMarker = "**Ethical Review Summary:**"
	ScoringMarker = "**Ethical Scoring:**"

	// Placeholders substituted upstream when generation yields nothing.
	PlaceholderNoResponse = "[No response generated or content blocked]"
	PlaceholderNoAnalysis = "[No analysis generated or content blocked]"
)

// jsonBlockRe captures the first fenced ```json block containing an object.
// Non-greedy so trailing prose after the fence is never swallowed.
var jsonBlockRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// Parser splits raw analysis text into a textual summary and a validated
// score set. Parsing never returns an error: every malformed input degrades
// to (best-effort summary, nil scores).
type Parser struct {
	log *zap.Logger
}

// NewParser creates a Parser. A nil logger is replaced with a no-op logger.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// Parse extracts (summary, scores) from raw analysis text.
//
// Empty input and the blocked-generation placeholders are legal and yield
// nil scores immediately. Missing markers degrade the summary to the full
// text; a missing, malformed, or structurally invalid JSON block yields nil
// scores without discarding an already-extracted summary.
func (p *Parser) Parse(raw string) (summary string, scores EthicalScores) {
	defer func() {
		// Last-resort fallback: a panic while picking apart hostile model
		// output must not escape to the caller.
		if r := recover(); r != nil {
			p.log.Error("analysis parse panicked", zap.Any("panic", r))
			summary = raw
			scores = nil
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	if raw == PlaceholderNoAnalysis || raw == PlaceholderNoResponse {
		return raw, nil
	}

	summaryIdx := strings.Index(raw, SummaryMarker)
	scoringIdx := strings.Index(raw, ScoringMarker)

	switch {
	case summaryIdx >= 0 && scoringIdx > summaryIdx:
		summary = strings.TrimSpace(raw[summaryIdx+len(SummaryMarker) : scoringIdx])
	case summaryIdx >= 0:
		summary = strings.TrimSpace(raw[summaryIdx+len(SummaryMarker):])
	default:
		// Degrade gracefully: the whole text becomes the summary.
		p.log.Debug("summary marker not found in analysis text",
			zap.Int("len", len(raw)))
		summary = strings.TrimSpace(raw)
	}

	match := jsonBlockRe.FindStringSubmatch(raw)
	if match == nil {
		return summary, nil
	}
	blockText := match[0]

	var decoded map[string]any
	if err := json.Unmarshal([]byte(match[1]), &decoded); err != nil {
		snippet := match[1]
		if len(snippet) > 120 {
			snippet = snippet[:120]
		}
		p.log.Warn("scoring block is not valid JSON",
			zap.Error(err), zap.String("snippet", snippet))
		return summary, nil
	}

	candidate := EthicalScores(decoded)
	if !candidate.Validate() {
		p.log.Warn("scoring block failed structural validation")
		return summary, nil
	}

	// The JSON block can bleed into the summary when the markers are absent
	// or out of order; cut it back out now that it parsed.
	if scoringIdx >= 0 {
		if cut := strings.Index(summary, ScoringMarker); cut >= 0 {
			summary = strings.TrimSpace(summary[:cut])
		}
	} else {
		summary = strings.TrimSpace(strings.Replace(summary, blockText, "", 1))
	}

	return summary, candidate
}
