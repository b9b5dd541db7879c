package forensic

import (
	"time"

	"github.com/google/uuid"
)

// TextMode selects between the two text-analysis contracts.
type TextMode string

const (
	ModeAIDetect  TextMode = "AI_DETECT"
	ModeFactCheck TextMode = "FACT_CHECK"
)

// Media-result defaults. Substituted whenever a field is absent or of
// the wrong shape; callers depend on these exact strings.
const (
	defaultSummary          = "Forensic analysis complete."
	defaultRecommendation   = "Verify manually."
	defaultManipulationType = "Digital Synthesis"
	defaultGuidance         = "Caution advised."
	defaultStepExplanation  = "Analyzing..."
	defaultStepQualifier    = "Medium"
	defaultStepScore        = 50

	defaultTextSummary  = "Analysis complete."
	defaultVerdictLabel = "STRICT"
)

// Normalizer turns a partial, loosely-typed backend record into a total,
// schema-complete result. Pure transformation plus default injection; no
// backend I/O. Now and NewID exist so tests can pin identity fields.
type Normalizer struct {
	Now   func() time.Time
	NewID func() string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// decideVerdict applies the classification policy. The backend's
// categorical verdict and its numeric score can disagree; the numeric
// score wins when unambiguous, the label breaks the tie at the exact
// midpoint, and anything short of a clear REAL signal classifies as
// LIKELY_FAKE.
func decideVerdict(rec Record) Verdict {
	declared, _ := rec.String("verdict")
	prob := 0.0
	if n, ok := rec.Number("deepfakeProbability"); ok {
		prob = n
	}

	switch {
	case declared == string(VerdictReal) && prob < 50:
		return VerdictReal
	case prob > 50:
		return VerdictLikelyFake
	case declared == string(VerdictReal):
		return VerdictReal
	default:
		return VerdictLikelyFake
	}
}

// bucketConfidence maps the numeric confidence to its display level.
// The High boundary is exclusive: 85 is still Medium.
func bucketConfidence(confidence int) ConfidenceLevel {
	switch {
	case confidence > 85:
		return ConfidenceHigh
	case confidence < 50:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func stepFrom(group map[string]any, key string) StepScore {
	step := StepScore{
		Score:               defaultStepScore,
		Explanation:         defaultStepExplanation,
		ConfidenceQualifier: defaultStepQualifier,
	}
	raw, ok := group[key].(map[string]any)
	if !ok {
		return step
	}
	sub := Record(raw)
	step.Score = sub.IntOr("score", defaultStepScore)
	step.Explanation = sub.StringOr("explanation", defaultStepExplanation)
	step.ConfidenceQualifier = sub.StringOr("confidenceQualifier", defaultStepQualifier)
	return step
}

func stepsFrom(rec Record) AnalysisSteps {
	group, _ := rec.Map("analysisSteps")
	return AnalysisSteps{
		Integrity:   stepFrom(group, "integrity"),
		Consistency: stepFrom(group, "consistency"),
		AIPatterns:  stepFrom(group, "aiPatterns"),
		Temporal:    stepFrom(group, "temporal"),
	}
}

func explanationsFrom(rec Record) []Explanation {
	out := []Explanation{}
	items, ok := rec.Slice("explanations")
	if !ok {
		return out
	}
	for _, it := range items {
		raw, ok := it.(map[string]any)
		if !ok {
			continue
		}
		entry := Record(raw)
		out = append(out, Explanation{
			Point:     entry.StringOr("point", ""),
			Detail:    entry.StringOr("detail", ""),
			Category:  entry.StringOr("category", ""),
			Timestamp: entry.StringOr("timestamp", ""),
		})
	}
	return out
}

// NormalizeMedia produces the total media result. Identity is assigned
// here, not at request time: two normalizations of the same record are
// never equal by id or timestamp.
func (n *Normalizer) NormalizeMedia(rec Record, meta FileMetadata) AnalysisResult {
	confidence := rec.IntOr("confidence", 50)

	return AnalysisResult{
		ID:                  n.NewID(),
		Timestamp:           n.Now(),
		Verdict:             decideVerdict(rec),
		Confidence:          confidence,
		ConfidenceLevel:     bucketConfidence(confidence),
		DeepfakeProbability: rec.IntOr("deepfakeProbability", 50),
		Summary:             rec.StringOr("summary", defaultSummary),
		UserRecommendation:  rec.StringOr("userRecommendation", defaultRecommendation),
		ManipulationType:    rec.StringOr("manipulationType", defaultManipulationType),
		Guidance:            rec.StringOr("guidance", defaultGuidance),
		AnalysisSteps:       stepsFrom(rec),
		Explanations:        explanationsFrom(rec),
		FileMetadata:        meta,
	}
}

func claimsFrom(rec Record) []Claim {
	out := []Claim{}
	items, ok := rec.Slice("claims")
	if !ok {
		return out
	}
	for _, it := range items {
		raw, ok := it.(map[string]any)
		if !ok {
			continue
		}
		entry := Record(raw)
		out = append(out, Claim{
			Claim:     entry.StringOr("claim", ""),
			Status:    entry.StringOr("status", ""),
			SourceURL: entry.StringOr("sourceUrl", ""),
			Category:  entry.StringOr("category", ""),
		})
	}
	return out
}

// NormalizeText produces the total text result for either text mode.
// Claims are parsed in fact-check mode only; sources are the grounded
// citations collected from the same reply.
func (n *Normalizer) NormalizeText(rec Record, mode TextMode, sources []Citation) TextAnalysisResult {
	result := TextAnalysisResult{
		AIProbability: rec.IntOr("aiProbability", 0),
		VerdictLabel:  rec.StringOr("verdictLabel", defaultVerdictLabel),
		Summary:       rec.StringOr("summary", defaultTextSummary),
		AISignals:     rec.StringSlice("aiSignals"),
		HumanSignals:  rec.StringSlice("humanSignals"),
		Claims:        []Claim{},
		Sources:       []Citation{},
	}
	if mode == ModeFactCheck {
		result.Claims = claimsFrom(rec)
	}
	if sources != nil {
		result.Sources = sources
	}
	return result
}

func findingsFrom(rec Record) []Finding {
	out := []Finding{}
	items, ok := rec.Slice("findings")
	if !ok {
		return out
	}
	for _, it := range items {
		raw, ok := it.(map[string]any)
		if !ok {
			continue
		}
		entry := Record(raw)
		out = append(out, Finding{
			Type:   entry.StringOr("type", ""),
			Detail: entry.StringOr("detail", ""),
		})
	}
	return out
}

// NormalizeTrace produces the total reverse-source-lookup result.
func (n *Normalizer) NormalizeTrace(rec Record, sources []Citation) SourceTraceResult {
	manipulated, _ := rec.Bool("manipulationDetected")
	result := SourceTraceResult{
		Summary:              rec.StringOr("summary", defaultTextSummary),
		OriginalEvent:        rec.StringOr("originalEvent", ""),
		ManipulationDetected: manipulated,
		Confidence:           rec.IntOr("confidence", 0),
		Findings:             findingsFrom(rec),
		Sources:              []Citation{},
	}
	if sources != nil {
		result.Sources = sources
	}
	return result
}
