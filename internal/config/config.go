package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
// Pointing BaseURL at an Ollama server (http://127.0.0.1:11434/api) works too.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
	ChunkSize         int    `yaml:"chunk_size"`
	ChunkOverlap      int    `yaml:"chunk_overlap"`
	Separator         string `yaml:"separator"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SQLiteConfig points at the on-disk index file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// OllamaConfig configures the local language model.
type OllamaConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// WikipediaConfig configures the encyclopedic lookup backend.
type WikipediaConfig struct {
	Lang              string  `yaml:"lang"`
	BaseURL           string  `yaml:"base_url"`
	MaxChars          int     `yaml:"max_chars"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// RouterConfig configures tool routing.
type RouterConfig struct {
	Threshold        int    `yaml:"threshold"`
	EncyclopediaTool string `yaml:"encyclopedia_tool"`
	CorpusTool       string `yaml:"corpus_tool"`
	EncyclopediaTopK int    `yaml:"encyclopedia_top_k"`
	CorpusTopK       int    `yaml:"corpus_top_k"`
}

// QAConfig configures question answering over the corpus.
type QAConfig struct {
	TopK int `yaml:"top_k"`
}

// StoryConfig configures the lullaby chain.
type StoryConfig struct {
	Temperature float64 `yaml:"temperature"`
	Words       int     `yaml:"words"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Ollama      OllamaConfig      `yaml:"ollama"`
	Wikipedia   WikipediaConfig   `yaml:"wikipedia"`
	Router      RouterConfig      `yaml:"router"`
	QA          QAConfig          `yaml:"qa"`
	Story       StoryConfig       `yaml:"story"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	// Decode over the defaults so that keys set to zero on purpose stay zero.
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/docchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects component types the binary does not know how to build.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "tfidf", "openai":
	default:
		return fmt.Errorf("unknown embedder: %q", c.Embedder.Type)
	}
	switch c.Chunker.Type {
	case "sentence", "character":
	default:
		return fmt.Errorf("unknown chunker: %q", c.Chunker.Type)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			return errors.New("qdrant config missing")
		}
	case "sqlite":
		if c.VectorStore.SQLite == nil || c.VectorStore.SQLite.Path == "" {
			return errors.New("sqlite config missing")
		}
	default:
		return fmt.Errorf("unknown vector store: %q", c.VectorStore.Type)
	}
	if c.Summarizer.Type != "frequency" {
		return fmt.Errorf("unknown summarizer: %q", c.Summarizer.Type)
	}
	if c.Router.Threshold <= 0 {
		return fmt.Errorf("router threshold must be positive, got %d", c.Router.Threshold)
	}
	if c.Router.EncyclopediaTool == c.Router.CorpusTool {
		return fmt.Errorf("router tool names must differ, both are %q", c.Router.CorpusTool)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Chunker:     ChunkerConfig{Type: "sentence", OverlapSentences: 1, ChunkOverlap: 200},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Summarizer:  SummarizerConfig{Type: "frequency"},
		Story:       StoryConfig{Temperature: 0.7},
	}
	applyConfigDefaults(cfg)
	return cfg
}

// applyConfigDefaults fills fields where zero is never a usable value.
// Overlaps and temperatures may legitimately be zero and are seeded by
// defaultConfig instead.
func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "sentence"
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
	}
	if cfg.Chunker.Separator == "" {
		cfg.Chunker.Separator = "\n\n"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "docchat"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 5
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 5
		}
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://127.0.0.1:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "gemma3:1b"
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = 120
	}
	if cfg.Wikipedia.Lang == "" {
		cfg.Wikipedia.Lang = "en"
	}
	if cfg.Wikipedia.MaxChars == 0 {
		cfg.Wikipedia.MaxChars = 4000
	}
	if cfg.Wikipedia.TimeoutSecs == 0 {
		cfg.Wikipedia.TimeoutSecs = 15
	}
	if cfg.Wikipedia.RequestsPerSecond == 0 {
		cfg.Wikipedia.RequestsPerSecond = 2
	}
	if cfg.Router.Threshold == 0 {
		cfg.Router.Threshold = 5
	}
	if cfg.Router.EncyclopediaTool == "" {
		cfg.Router.EncyclopediaTool = "Wikipedia"
	}
	if cfg.Router.CorpusTool == "" {
		cfg.Router.CorpusTool = "Corpus"
	}
	if cfg.Router.EncyclopediaTopK == 0 {
		cfg.Router.EncyclopediaTopK = 1
	}
	if cfg.Router.CorpusTopK == 0 {
		cfg.Router.CorpusTopK = 5
	}
	if cfg.QA.TopK == 0 {
		cfg.QA.TopK = 3
	}
	if cfg.Story.Words == 0 {
		cfg.Story.Words = 90
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
