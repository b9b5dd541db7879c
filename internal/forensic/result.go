package forensic

import "time"

// Verdict is the binary classification exposed to callers. The set is
// closed; no "unknown" state ever leaves the engine.
type Verdict string

const (
	VerdictReal       Verdict = "REAL"
	VerdictLikelyFake Verdict = "LIKELY_FAKE"
)

// ConfidenceLevel is a display bucket derived from the numeric
// confidence. It is always computed, never backend-supplied.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "Low"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceHigh   ConfidenceLevel = "High"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaText  MediaKind = "text"
)

// FileMetadata is caller-supplied side information about the uploaded
// file, passed through to the result unchanged.
type FileMetadata struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	MIMEType   string `json:"mimeType"`
	CapturedAt string `json:"capturedAt,omitempty"`
}

// AnalysisRequest is one media submission. Immutable once constructed;
// owned by the call that carries it.
type AnalysisRequest struct {
	Data     []byte
	Kind     MediaKind
	MIMEType string
	Metadata FileMetadata
}

// StepScore is one named forensic sub-check.
type StepScore struct {
	Score               int    `json:"score"`
	Explanation         string `json:"explanation"`
	ConfidenceQualifier string `json:"confidenceQualifier"`
}

// AnalysisSteps is the fixed set of four sub-scores every media result
// carries, populated from the backend or from defaults.
type AnalysisSteps struct {
	Integrity   StepScore `json:"integrity"`
	Consistency StepScore `json:"consistency"`
	AIPatterns  StepScore `json:"aiPatterns"`
	Temporal    StepScore `json:"temporal"`
}

type Explanation struct {
	Point     string `json:"point"`
	Detail    string `json:"detail"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
}

// AnalysisResult is the durable, caller-facing output of a media
// analysis. Every field is present and type-correct regardless of how
// much the backend actually answered; the normalizer is the sole writer.
type AnalysisResult struct {
	ID                  string          `json:"id"`
	Timestamp           time.Time       `json:"timestamp"`
	Verdict             Verdict         `json:"verdict"`
	Confidence          int             `json:"confidence"`
	ConfidenceLevel     ConfidenceLevel `json:"confidenceLevel"`
	DeepfakeProbability int             `json:"deepfakeProbability"`
	Summary             string          `json:"summary"`
	UserRecommendation  string          `json:"userRecommendation"`
	ManipulationType    string          `json:"manipulationType"`
	Guidance            string          `json:"guidance"`
	AnalysisSteps       AnalysisSteps   `json:"analysisSteps"`
	Explanations        []Explanation   `json:"explanations"`
	FileMetadata        FileMetadata    `json:"fileMetadata"`
}

// Citation is one grounded web source backing a reply.
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Claim is one verified statement from a fact-check run.
type Claim struct {
	Claim     string `json:"claim"`
	Status    string `json:"status"`
	SourceURL string `json:"sourceUrl"`
	Category  string `json:"category"`
}

// TextAnalysisResult is the total output of the text modes. Claims are
// populated in fact-check mode only; sources come from grounding.
type TextAnalysisResult struct {
	AIProbability int        `json:"aiProbability"`
	VerdictLabel  string     `json:"verdictLabel"`
	Summary       string     `json:"summary"`
	AISignals     []string   `json:"aiSignals"`
	HumanSignals  []string   `json:"humanSignals"`
	Claims        []Claim    `json:"claims"`
	Sources       []Citation `json:"sources"`
}

type Finding struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// SourceTraceResult is the output of a reverse source lookup.
type SourceTraceResult struct {
	Summary              string     `json:"summary"`
	OriginalEvent        string     `json:"originalEvent"`
	ManipulationDetected bool       `json:"manipulationDetected"`
	Confidence           int        `json:"confidence"`
	Findings             []Finding  `json:"findings"`
	Sources              []Citation `json:"sources"`
}
