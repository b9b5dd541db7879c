package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ModelsConfig struct {
	Media      string `toml:"media"`
	Text       string `toml:"text"`
	FactCheck  string `toml:"fact_check"`
	Trace      string `toml:"trace"`
	Transcribe string `toml:"transcribe"`
	Chat       string `toml:"chat"`
	Image      string `toml:"image"`
	Video      string `toml:"video"`
}

type PromptsConfig struct {
	Media       string `toml:"media"`
	AIDetect    string `toml:"ai_detect"`
	FactCheck   string `toml:"fact_check"`
	Trace       string `toml:"trace"`
	Transcribe  string `toml:"transcribe"`
	Certificate string `toml:"certificate"`
	Assistant   string `toml:"assistant"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type Config struct {
	Models  ModelsConfig  `toml:"models"`
	Prompts PromptsConfig `toml:"prompts"`
	LLM     LLMConfig     `toml:"llm"`
}

// Default returns the built-in configuration used when no config file is
// present. Prompt texts are the contracts the normalizer's schema
// expectations are written against; a config file may reword them but must
// keep the same output fields.
func Default() *Config {
	return &Config{
		Models: ModelsConfig{
			Media:      "gemini-3-flash-preview",
			Text:       "gemini-3-flash-preview",
			FactCheck:  "gemini-3-pro-preview",
			Trace:      "gemini-3-pro-preview",
			Transcribe: "gemini-3-flash-preview",
			Chat:       "gemini-3-flash-preview",
			Image:      "gemini-2.5-flash-image",
			Video:      "veo-3.1-fast-generate-preview",
		},
		Prompts: PromptsConfig{
			Media: "Forensic analysis: Output JSON with verdict (REAL/LIKELY_FAKE), " +
				"deepfakeProbability (0-100), confidence (0-100), summary, " +
				"explanations (array: {point, detail, category, timestamp}), userRecommendation.",
			AIDetect: "Detect AI-generated text. Return JSON with 'aiProbability', " +
				"'verdictLabel', 'aiSignals', 'humanSignals', 'summary'.",
			FactCheck: "Verify claims using Google Search. Return JSON with 'claims' array and 'summary'. " +
				"Each claim has 'status', 'claim', 'sourceUrl', 'category'.",
			Trace: "Find the original source of this image using Google Search. " +
				"Return JSON: {summary, originalEvent, manipulationDetected, confidence, findings: [{type, detail}]}",
			Transcribe:  "Transcribe the audio exactly. Output the text only.",
			Certificate: "Generate a formal forensic analysis certificate for this data: %s. Include file name, verdict, probability scores, and detailed anomaly descriptions.",
			Assistant: "You are FAKEY-AI Forensic Assistant. Use Google Search for news/facts. " +
				"Help users interpret deepfake scores and forensic data.",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-3-flash-preview",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}
