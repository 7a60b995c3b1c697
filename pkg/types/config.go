package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "govmeta/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for retrieving and expanding metadata payloads.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxBodyBytes caps the size of a fetched payload (default 1 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// IPFSGateway is the HTTP gateway prefix used for ipfs:// sources
	// (default "https://ipfs.io/ipfs/").
	IPFSGateway string `json:"ipfs_gateway" yaml:"ipfs_gateway" mapstructure:"ipfs_gateway"`

	// AllowRemoteContexts lets JSON-LD expansion dereference remote
	// @context IRIs. When false only inline contexts are accepted.
	AllowRemoteContexts bool `json:"allow_remote_contexts" yaml:"allow_remote_contexts" mapstructure:"allow_remote_contexts"`

	// DownloadDelay is the delay between consecutive fetches in a batch.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay" mapstructure:"download_delay"`

	// DocumentsDir is the base directory for fetched documents
	// (contains raw/ and metadata/).
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir" mapstructure:"documents_dir"`
}

// StoreConfig holds settings for the document index.
type StoreConfig struct {
	// StoreDir is the base directory for the index (contains index/).
	StoreDir string `json:"store_dir" yaml:"store_dir" mapstructure:"store_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ServerConfig holds settings for the HTTP extraction service.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// RequestTimeout bounds fetch and extraction per request (default 30s).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// LogConfig selects diagnostic log verbosity.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all stage configurations.
type Config struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when neither a config file
// nor flags override a setting.
func DefaultConfig() Config {
	return Config{
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "govmeta/0.1",
			},
			MaxRetries:    5,
			MaxBodyBytes:  1 << 20,
			IPFSGateway:   "https://ipfs.io/ipfs/",
			DownloadDelay: 1 * time.Second,
			DocumentsDir:  "documents",
		},
		Store: StoreConfig{
			StoreDir:   "store",
			MaxResults: 20,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
