package docpager

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every session of an application.
type Config struct {
	// Secret signs cursor tokens. Empty means plain, unauthenticated tokens.
	Secret string `mapstructure:"secret" json:"-" yaml:"secret"`
	// MaxLimit caps the page size; zero passes the requested limit through.
	MaxLimit int `mapstructure:"max_limit" json:"max_limit" yaml:"max_limit"`
}

// LoadConfig reads the Config stored under key. An empty key reads the root.
//
//	docpager:
//	  secret: "change-me"
//	  max_limit: 100
func LoadConfig(v *viper.Viper, key string) (Config, error) {
	var cfg Config
	if v == nil {
		return cfg, nil
	}

	sub := v
	if key != "" {
		sub = v.Sub(key)
		if sub == nil {
			return cfg, nil
		}
	}

	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("cannot read pagination config: %w", err)
	}
	if cfg.MaxLimit < 0 {
		return Config{}, fmt.Errorf("cannot read pagination config: negative max_limit %d", cfg.MaxLimit)
	}

	return cfg, nil
}

type settings struct {
	codec      *Codec
	logger     logrus.FieldLogger
	identifier *Key
	getters    any
	maxLimit   int
}

// Option configures a Session.
type Option func(*settings)

// WithConfig applies an application Config.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.codec = NewCodec(cfg.Secret)
		s.maxLimit = cfg.MaxLimit
	}
}

// WithCodec sets the token codec. Sessions use plain tokens by default.
func WithCodec(codec *Codec) Option {
	return func(s *settings) {
		s.codec = codec
	}
}

// WithLogger sets the logger receiving notes about ignored cursors.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithIdentifier replaces DefaultIdentifier as the tiebreaker key.
func WithIdentifier(identifier Key) Option {
	return func(s *settings) {
		s.identifier = &identifier
	}
}

// WithMaxLimit normalizes the requested limit with NormalizeLimitMax.
func WithMaxLimit(maxLimit int) Option {
	return func(s *settings) {
		s.maxLimit = maxLimit
	}
}

// WithGetters sets explicit field accessors for boundary documents. The type
// parameter must match the session's document type, otherwise the getters
// are ignored.
func WithGetters[T any](getters Getters[T]) Option {
	return func(s *settings) {
		s.getters = getters
	}
}

var _discardLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()
