// Package config loads docrender settings from TOML files.
//
// A file only needs the keys it changes; everything else keeps the value
// from Default. Unknown keys are rejected so typos do not go unnoticed.
//
//	[server]
//	addr = ":5001"
//
//	[render]
//	optional_fields = "when-present"
//	logo = "assets/logo.png"
//
//	[fields.delivery_note.cliente]
//	x = 42
//	y = 76
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lvillar/docrender/doctpl"
)

// Storage kinds.
const (
	StorageNone   = "none"
	StorageDir    = "dir"
	StorageGridFS = "gridfs"
)

// Cache kinds.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the complete service configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Log     Log     `toml:"log"`
	Render  Render  `toml:"render"`
	Storage Storage `toml:"storage"`
	Cache   Cache   `toml:"cache"`
	Fields  Fields  `toml:"fields"`
}

// Server configures the HTTP transport.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// Log configures diagnostics.
type Log struct {
	Level string `toml:"level"`
}

// Render configures document layout and encoding.
type Render struct {
	OptionalFields        string `toml:"optional_fields"`
	PaginateDeliveryItems bool   `toml:"paginate_delivery_items"`
	Logo                  string `toml:"logo"`
	Stationery            string `toml:"stationery"`
	Barcode               bool   `toml:"barcode"`
	Compress              bool   `toml:"compress"`
}

// Storage configures where rendered PDFs are uploaded.
type Storage struct {
	Kind               string   `toml:"kind"`
	Dir                string   `toml:"dir"`
	MongoURI           string   `toml:"mongo_uri"`
	Database           string   `toml:"database"`
	Bucket             string   `toml:"bucket"`
	DeliveryNoteFolder string   `toml:"delivery_note_folder"`
	QuotationFolder    string   `toml:"quotation_folder"`
	Retries            int      `toml:"retries"`
	RetryDelay         Duration `toml:"retry_delay"`
	Timeout            Duration `toml:"timeout"`
}

// Cache configures the rendered document cache.
type Cache struct {
	Kind          string   `toml:"kind"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// Fields holds element position overrides per template.
type Fields struct {
	DeliveryNote map[string]doctpl.Position `toml:"delivery_note"`
	Quotation    map[string]doctpl.Position `toml:"quotation"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":5001",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
			MaxBodyBytes: 1 << 20,
		},
		Log: Log{Level: "info"},
		Render: Render{
			OptionalFields:        string(doctpl.AsObserved),
			PaginateDeliveryItems: true,
			Compress:              true,
		},
		Storage: Storage{
			Kind:               StorageDir,
			Dir:                "generated_pdfs",
			Database:           "docrender",
			Bucket:             "pdfs",
			DeliveryNoteFolder: "remitos",
			QuotationFolder:    "presupuestos",
			Retries:            3,
			RetryDelay:         Duration{time.Second},
			Timeout:            Duration{30 * time.Second},
		},
		Cache: Cache{
			Kind:      CacheNone,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
	}
}

// Load reads the TOML file at path over Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := doctpl.ParseOptionalRule(c.Render.OptionalFields); err != nil {
		return err
	}
	switch c.Storage.Kind {
	case StorageNone:
	case StorageDir:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for dir storage")
		}
	case StorageGridFS:
		if c.Storage.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for gridfs storage")
		}
	default:
		return fmt.Errorf("unknown storage.kind %q", c.Storage.Kind)
	}
	switch c.Cache.Kind {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required for redis cache")
		}
	default:
		return fmt.Errorf("unknown cache.kind %q", c.Cache.Kind)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	return nil
}
