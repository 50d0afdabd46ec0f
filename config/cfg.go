package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	InputConfig struct {
		// file extensions (with dot) recognized as convertible sources
		HTMLExtensions     []string `yaml:"html_extensions" validate:"dive,required,startswith=."`
		MarkdownExtensions []string `yaml:"markdown_extensions" validate:"dive,required,startswith=."`
		MarkdownGFM        bool     `yaml:"markdown_gfm"`
	}

	ImagesConfig struct {
		RasterizeSVG bool `yaml:"rasterize_svg"`
		ConvertWebP  bool `yaml:"convert_webp"`
		// larger images are scaled down to fit, 0 disables
		MaxDimension int `yaml:"max_dimension" validate:"gte=0"`
	}

	FetchConfig struct {
		Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
		MaxSize   int64         `yaml:"max_size" validate:"gt=0"`
		Workers   int           `yaml:"workers" validate:"min=1,max=32"`
		UserAgent string        `yaml:"user_agent"`
	}

	MetainformationConfig struct {
		TitleTemplate string `yaml:"title_template"`
		Creator       string `yaml:"creator"`
	}

	DocumentConfig struct {
		FixZip                bool                  `yaml:"fix_zip"`
		OutputNameTemplate    string                `yaml:"output_name_template"`
		FileNameTransliterate bool                  `yaml:"file_name_transliterate"`
		Input                 InputConfig           `yaml:"input"`
		Images                ImagesConfig          `yaml:"images"`
		Fetch                 FetchConfig           `yaml:"fetch"`
		Metainformation       MetainformationConfig `yaml:"metainformation"`
		Options               ConversionOptions     `yaml:"options"`
	}

	ServerConfig struct {
		Listen         string        `yaml:"listen" validate:"required"`
		Token          SecretString  `yaml:"token"`
		MaxBodySize    int64         `yaml:"max_body_size" validate:"gt=0"`
		RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Server    ServerConfig   `yaml:"server"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
	MetaTitleTemplateFieldName  TemplateFieldName = "title_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(MetaTitleTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation. Conversion options are not
// sanitized here, it happens when conversion starts so library callers get
// the same treatment.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
