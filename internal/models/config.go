package models

// Config represents the service configuration.
type Config struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	OCR      OCRConfig      `yaml:"ocr"`
	AI       AIConfig       `yaml:"ai"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// OCRConfig configures the text-extraction collaborators.
type OCRConfig struct {
	PdfToTextBin string `yaml:"pdftotext_bin"` // default "pdftotext"
	ConvertBin   string `yaml:"convert_bin"`   // default "convert"
	MinTextChars int    `yaml:"min_text_chars"`
}

// AIConfig represents AI provider configuration.
type AIConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`

	DefaultProvider string `yaml:"default_provider"` // "openai" or "gemini"
}

// OpenAIConfig for OpenAI or any compatible endpoint.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

// GeminiConfig for Google Gemini.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AnalysisConfig holds the defaults of the comparison pipeline.
type AnalysisConfig struct {
	DefaultZipcode      string  `yaml:"default_zipcode"`       // default "75001"
	ConfidenceMinAuto   float64 `yaml:"confidence_min_auto"`   // default 0.5
	ConfidenceMinForced float64 `yaml:"confidence_min_forced"` // default 0.6
	VicesPerEnergy      int     `yaml:"vices_per_energy"`      // default 6
}
