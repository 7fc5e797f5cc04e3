package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/csvjson/internal/converter"
	"github.com/turbolytics/csvjson/internal/position"
	"github.com/turbolytics/csvjson/internal/preserver"
)

type Logger struct {
	Level string `yaml:"level"`
}

// Build returns a development logger at the configured level.
func (l Logger) Build() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if l.Level != "" {
		level, err := zap.ParseAtomicLevel(l.Level)
		if err != nil {
			return nil, err
		}
		cfg.Level = level
	}
	return cfg.Build()
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

type Source struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
}

type Transform struct {
	Fields     []string `yaml:"fields"`
	NonNumeric string   `yaml:"non_numeric"`
}

type LocalConfig struct {
	Path       string `yaml:"path"`
	CreateDirs bool   `yaml:"create_dirs"`
}

type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type Repository struct {
	Type        string      `yaml:"type"`
	LocalConfig LocalConfig `yaml:"local"`
	S3Config    S3Config    `yaml:"s3"`
}

type JSONConfig struct {
	DocumentKey string `yaml:"document_key"`
	Indent      string `yaml:"indent"`
}

type Preserver struct {
	Type string     `yaml:"type"`
	JSON JSONConfig `yaml:"json"`
}

type Output struct {
	Key        string `yaml:"key"`
	CatalogKey string `yaml:"catalog_key"`
}

type Converter struct {
	Source     Source     `yaml:"source"`
	Transform  Transform  `yaml:"transform"`
	Repository Repository `yaml:"repository"`
	Preserver  Preserver  `yaml:"preserver"`
	Output     Output     `yaml:"output"`
}

type Csvjson struct {
	Global    Global    `yaml:"global"`
	Converter Converter `yaml:"converter"`
}

// Default reproduces the fixed behavior: earth.csv in, json/earth.json out,
// relative to the working directory.
func Default() *Csvjson {
	return &Csvjson{
		Global: Global{
			Logger: Logger{Level: "info"},
		},
		Converter: Converter{
			Source: Source{
				Path:      converter.DefaultSourcePath,
				Delimiter: ",",
			},
			Transform: Transform{
				Fields:     position.DefaultFields,
				NonNumeric: string(position.PolicyPassthrough),
			},
			Repository: Repository{
				Type: "local",
				LocalConfig: LocalConfig{
					Path: ".",
				},
			},
			Preserver: Preserver{
				Type: "json",
				JSON: JSONConfig{
					DocumentKey: preserver.DefaultDocumentKey,
				},
			},
			Output: Output{
				Key: converter.DefaultOutputKey,
			},
		},
	}
}

// NewFromFile reads a yaml config. Keys missing from the file keep their
// Default values.
func NewFromFile(fpath string) (*Csvjson, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(bs, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", fpath, err)
	}

	return c, nil
}

func (c *Csvjson) Validate() error {
	conv := c.Converter

	if conv.Source.Path == "" {
		return fmt.Errorf("converter.source.path is required")
	}
	if utf8.RuneCountInString(conv.Source.Delimiter) != 1 {
		return fmt.Errorf("converter.source.delimiter must be a single character, got %q", conv.Source.Delimiter)
	}
	switch conv.Source.DelimiterRune() {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("converter.source.delimiter %q is not allowed", conv.Source.Delimiter)
	}
	if _, err := position.ParsePolicy(conv.Transform.NonNumeric); err != nil {
		return err
	}
	if conv.Output.Key == "" {
		return fmt.Errorf("converter.output.key is required")
	}

	switch conv.Repository.Type {
	case "local", "stdout":
	case "s3":
		if conv.Repository.S3Config.Bucket == "" {
			return fmt.Errorf("converter.repository.s3.bucket is required")
		}
	default:
		return fmt.Errorf("unknown repository type: %s", conv.Repository.Type)
	}

	switch conv.Preserver.Type {
	case "json", "parquet":
	default:
		return fmt.Errorf("unknown preserver type: %s", conv.Preserver.Type)
	}

	return nil
}

// DelimiterRune returns the configured delimiter as a rune. Call Validate first.
func (s Source) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	return r
}
