package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string          `mapstructure:"port"`
	UploadDir   string          `mapstructure:"upload_dir"`
	CORSOrigins []string        `mapstructure:"cors_origins"` // empty allows every origin
	JWTSecret   string          `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration   `mapstructure:"token_ttl"`
	MongoDB     MongoDBConfig   `mapstructure:"mongodb"`
	Provider    ProviderConfig  `mapstructure:"provider"`
	Chunker     ChunkerConfig   `mapstructure:"chunker"`
	Retrieval   RetrievalConfig `mapstructure:"retrieval"`
	Index       IndexConfig     `mapstructure:"index"`
	PDF         PDFConfig       `mapstructure:"pdf"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	AppName  string `mapstructure:"app_name"`
	Database string `mapstructure:"database"`
}

// ConnectionURI returns the configured URI, or assembles an Atlas SRV URI
// from the individual credentials when no URI is set.
func (c MongoDBConfig) ConnectionURI() string {
	if c.URI != "" || c.User == "" {
		return c.URI
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, url.QueryEscape(c.AppName))
}

type ProviderConfig struct {
	Name           string        `mapstructure:"name"` // gemini, openai or langchain
	GoogleAPIKey   string        `mapstructure:"google_api_key"`
	OpenAIAPIKey   string        `mapstructure:"openai_api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	ChatModel      string        `mapstructure:"chat_model"`
	Temperature    float32       `mapstructure:"temperature"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Retries        int           `mapstructure:"retries"`
}

type ChunkerConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
	Overlap   int `mapstructure:"overlap"`
}

type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

type IndexConfig struct {
	Backend  string              `mapstructure:"backend"` // local or weaviate
	Path     string              `mapstructure:"path"`
	Weaviate WeaviateStoreConfig `mapstructure:"weaviate"`
}

type WeaviateStoreConfig struct {
	Host      string `mapstructure:"host"`
	APIKey    string `mapstructure:"api_key"`
	ClassName string `mapstructure:"class_name"`
}

type PDFConfig struct {
	OCR          bool   `mapstructure:"ocr"`
	OCRLanguages string `mapstructure:"ocr_languages"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 24*time.Hour)

	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.user", "")
	v.SetDefault("mongodb.password", "")
	v.SetDefault("mongodb.host", "")
	v.SetDefault("mongodb.app_name", "")
	v.SetDefault("mongodb.database", "chatbot")

	v.SetDefault("provider.name", "gemini")
	v.SetDefault("provider.google_api_key", "")
	v.SetDefault("provider.openai_api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.embedding_model", "models/embedding-001")
	v.SetDefault("provider.chat_model", "gemini-pro")
	v.SetDefault("provider.temperature", 0.9)
	v.SetDefault("provider.timeout", 2*time.Minute)
	v.SetDefault("provider.retries", 0)

	v.SetDefault("chunker.chunk_size", 10000)
	v.SetDefault("chunker.overlap", 1000)
	v.SetDefault("retrieval.top_k", 4)

	v.SetDefault("index.backend", "local")
	v.SetDefault("index.path", "vector_index")
	v.SetDefault("index.weaviate.host", "http://localhost:8080")
	v.SetDefault("index.weaviate.api_key", "")
	v.SetDefault("index.weaviate.class_name", "PdfChunk")

	v.SetDefault("pdf.ocr", false)
	v.SetDefault("pdf.ocr_languages", "eng")
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file; running on defaults and env alone is fine
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("port", "PORT")
	v.BindEnv("jwt_secret", "JWT_SECRET_USER")
	v.BindEnv("mongodb.uri", "MONGODB_URI")
	v.BindEnv("mongodb.user", "MONGODB_USER")
	v.BindEnv("mongodb.password", "MONGODB_PASSWORD")
	v.BindEnv("mongodb.app_name", "MONGODB_CLUSTER")
	v.BindEnv("mongodb.database", "MONGODB_DB")
	v.BindEnv("provider.google_api_key", "GOOGLE_API_KEY")
	v.BindEnv("provider.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("index.weaviate.api_key", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("chunker.chunk_size must be positive, got %d", c.Chunker.ChunkSize)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("chunker.overlap must be in [0, chunk_size), got %d", c.Chunker.Overlap)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Provider.Retries < 0 {
		return fmt.Errorf("provider.retries cannot be negative, got %d", c.Provider.Retries)
	}
	switch c.Provider.Name {
	case "gemini", "openai", "langchain":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	switch c.Index.Backend {
	case "local", "weaviate":
	default:
		return fmt.Errorf("unknown index backend %q", c.Index.Backend)
	}
	return nil
}
