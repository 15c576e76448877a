package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"golang.org/x/text/encoding/htmlindex"
)

type Config struct {
	Chat   ChatConfig   `mapstructure:"chat"`
	Stream StreamConfig `mapstructure:"stream"`
	Log    LogConfig    `mapstructure:"log"`
}

type ChatConfig struct {
	URL           string        `mapstructure:"url" validate:"omitempty,url"`
	Path          string        `mapstructure:"path"`
	Token         string        `mapstructure:"token"`
	ChatbotID     string        `mapstructure:"chatbot_id"`
	QuestionField string        `mapstructure:"question_field" validate:"required"`
	Greeting      string        `mapstructure:"greeting"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type StreamConfig struct {
	Framing      string `mapstructure:"framing"`
	Charset      string `mapstructure:"charset"`
	ReadSize     int    `mapstructure:"read_size" validate:"gte=0,lte=1048576"`
	StrictSchema bool   `mapstructure:"strict_schema"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every key on v. Keys without a
// default are invisible to Unmarshal when they only come from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("chat.url", "http://localhost:8080")
	v.SetDefault("chat.path", "/api/chat")
	v.SetDefault("chat.token", "")
	v.SetDefault("chat.chatbot_id", "")
	v.SetDefault("chat.question_field", "question")
	v.SetDefault("chat.greeting", "Hello! How can I help you?")
	v.SetDefault("chat.timeout", "0s")
	v.SetDefault("stream.framing", "tokenizer")
	v.SetDefault("stream.charset", "utf-8")
	v.SetDefault("stream.read_size", 4096)
	v.SetDefault("stream.strict_schema", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	if strings.ContainsAny(c.Chat.QuestionField, " \t\n") || c.Chat.QuestionField == "chatbot_id" {
		return fmt.Errorf("invalid chat.question_field: %q", c.Chat.QuestionField)
	}
	switch c.Stream.Framing {
	case "", "tokenizer", "legacy":
	default:
		return fmt.Errorf("invalid stream.framing: %s", c.Stream.Framing)
	}
	if c.Stream.Charset != "" {
		if _, err := htmlindex.Get(c.Stream.Charset); err != nil {
			return fmt.Errorf("invalid stream.charset: %s", c.Stream.Charset)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log.format: %s", c.Log.Format)
	}
	return nil
}
