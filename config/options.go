package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"htmldocx/units"
)

// Number is a float which never fails to decode: anything which is not a
// number becomes NaN and is replaced with default value by Sanitize.
type Number float64

func (n Number) Float() float64 {
	return float64(n)
}

func (n Number) valid() bool {
	return !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
}

func parseNumber(s string) Number {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Number(math.NaN())
	}
	return Number(v)
}

func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		*n = Number(math.NaN())
		return nil
	}
	*n = parseNumber(value.Value)
	return nil
}

func (n Number) MarshalYAML() (any, error) {
	return float64(n), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if s, err := strconv.Unquote(string(data)); err == nil {
		*n = parseNumber(s)
		return nil
	}
	*n = parseNumber(string(data))
	return nil
}

func (n *Number) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		*n = Number(x)
	case float64:
		*n = Number(x)
	case string:
		*n = parseNumber(x)
	default:
		*n = Number(math.NaN())
	}
	return nil
}

// Page size names.
const (
	PageA4     = "A4"
	PageLetter = "Letter"
	PageLegal  = "Legal"
)

// PageSize is either one of the known names or custom dimensions in inches.
type PageSize struct {
	Name   string
	Width  Number
	Height Number
}

type customPageSize struct {
	Width  Number `yaml:"width" json:"width" toml:"width"`
	Height Number `yaml:"height" json:"height" toml:"height"`
}

func (p *PageSize) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*p = PageSize{Name: value.Value}
	case yaml.MappingNode:
		var c customPageSize
		if err := value.Decode(&c); err != nil {
			*p = PageSize{Name: "invalid"}
			return nil
		}
		*p = PageSize{Width: c.Width, Height: c.Height}
	default:
		*p = PageSize{Name: "invalid"}
	}
	return nil
}

func (p PageSize) MarshalYAML() (any, error) {
	if len(p.Name) > 0 {
		return p.Name, nil
	}
	return customPageSize{Width: p.Width, Height: p.Height}, nil
}

func (p *PageSize) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*p = PageSize{Name: name}
		return nil
	}
	var c customPageSize
	if err := json.Unmarshal(data, &c); err != nil {
		*p = PageSize{Name: "invalid"}
		return nil
	}
	*p = PageSize{Width: c.Width, Height: c.Height}
	return nil
}

func (p *PageSize) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		*p = PageSize{Name: x}
	case map[string]any:
		var w, h Number
		_ = w.UnmarshalTOML(x["width"])
		_ = h.UnmarshalTOML(x["height"])
		*p = PageSize{Width: w, Height: h}
	default:
		*p = PageSize{Name: "invalid"}
	}
	return nil
}

// Dimensions returns page width and height in inches for portrait
// orientation.
func (p PageSize) Dimensions() (float64, float64) {
	switch p.Name {
	case PageLetter:
		return 8.5, 11
	case PageLegal:
		return 8.5, 14
	case "":
		return p.Width.Float(), p.Height.Float()
	default:
		return 8.27, 11.69
	}
}

// Page border styles.
const (
	BorderSingle = "single"
	BorderDouble = "double"
	BorderThick  = "thick"
	BorderDotted = "dotted"
	BorderDashed = "dashed"
)

type PageBorder struct {
	Style string `yaml:"style" json:"style" toml:"style"`
	Color string `yaml:"color" json:"color" toml:"color"`
	// points
	Size Number `yaml:"size" json:"size" toml:"size"`
	// points
	Radius Number `yaml:"radius" json:"radius" toml:"radius"`
	// inches, when absent half of the left margin is used
	MarginOffset *Number `yaml:"margin_offset,omitempty" json:"marginOffset,omitempty" toml:"margin_offset"`
}

// ConversionOptions controls page geometry and document defaults. Lengths
// are in inches, font size in points.
type ConversionOptions struct {
	FontSize   Number `yaml:"font_size" json:"fontSize" toml:"font_size"`
	FontFamily string `yaml:"font_family" json:"fontFamily" toml:"font_family"`
	LineHeight Number `yaml:"line_height" json:"lineHeight" toml:"line_height"`

	PageSize    PageSize `yaml:"page_size" json:"pageSize" toml:"page_size"`
	Orientation string   `yaml:"orientation" json:"orientation" toml:"orientation"`

	MarginTop    Number `yaml:"margin_top" json:"marginTop" toml:"margin_top"`
	MarginRight  Number `yaml:"margin_right" json:"marginRight" toml:"margin_right"`
	MarginBottom Number `yaml:"margin_bottom" json:"marginBottom" toml:"margin_bottom"`
	MarginLeft   Number `yaml:"margin_left" json:"marginLeft" toml:"margin_left"`
	MarginHeader Number `yaml:"margin_header" json:"marginHeader" toml:"margin_header"`
	MarginFooter Number `yaml:"margin_footer" json:"marginFooter" toml:"margin_footer"`

	Header       string `yaml:"header" json:"header" toml:"header"`
	Footer       string `yaml:"footer" json:"footer" toml:"footer"`
	EnableHeader *bool  `yaml:"enable_header,omitempty" json:"enableHeader,omitempty" toml:"enable_header"`
	EnableFooter *bool  `yaml:"enable_footer,omitempty" json:"enableFooter,omitempty" toml:"enable_footer"`
	HeaderHeight Number `yaml:"header_height" json:"headerHeight" toml:"header_height"`
	FooterHeight Number `yaml:"footer_height" json:"footerHeight" toml:"footer_height"`

	EnablePageNumbers   bool   `yaml:"enable_page_numbers" json:"enablePageNumbers" toml:"enable_page_numbers"`
	PageNumberAlignment string `yaml:"page_number_alignment" json:"pageNumberAlignment" toml:"page_number_alignment"`

	PageBorder       *PageBorder `yaml:"page_border,omitempty" json:"pageBorder,omitempty" toml:"page_border"`
	EnablePageBorder *bool       `yaml:"enable_page_border,omitempty" json:"enablePageBorder,omitempty" toml:"enable_page_border"`

	HeadingReplacements []string `yaml:"heading_replacements" json:"headingReplacements" toml:"heading_replacements"`

	Title   string `yaml:"title" json:"title" toml:"title"`
	Creator string `yaml:"creator" json:"creator" toml:"creator"`
}

// Documented defaults.
const (
	DefaultFontSize            = 11
	DefaultFontFamily          = "Calibri"
	DefaultLineHeight          = 1.15
	DefaultMargin              = 1
	DefaultMarginHeader        = 0.5
	DefaultHeaderHeight        = 1
	DefaultPageNumberAlignment = "center"
	DefaultBorderSize          = 1
)

// DefaultOptions returns options with every field set to its default.
func DefaultOptions() ConversionOptions {
	return ConversionOptions{
		FontSize:            DefaultFontSize,
		FontFamily:          DefaultFontFamily,
		LineHeight:          DefaultLineHeight,
		PageSize:            PageSize{Name: PageA4},
		Orientation:         "portrait",
		MarginTop:           DefaultMargin,
		MarginRight:         DefaultMargin,
		MarginBottom:        DefaultMargin,
		MarginLeft:          DefaultMargin,
		MarginHeader:        DefaultMarginHeader,
		MarginFooter:        DefaultMarginHeader,
		HeaderHeight:        DefaultHeaderHeight,
		FooterHeight:        DefaultHeaderHeight,
		PageNumberAlignment: DefaultPageNumberAlignment,
	}
}

// HeaderEnabled reports whether header part should be produced for its own
// content.
func (o *ConversionOptions) HeaderEnabled() bool {
	return len(strings.TrimSpace(o.Header)) > 0 && (o.EnableHeader == nil || *o.EnableHeader)
}

// FooterEnabled reports whether footer part should be produced for its own
// content.
func (o *ConversionOptions) FooterEnabled() bool {
	return len(strings.TrimSpace(o.Footer)) > 0 && (o.EnableFooter == nil || *o.EnableFooter)
}

// PageBorderEnabled reports whether page border overlay is requested.
func (o *ConversionOptions) PageBorderEnabled() bool {
	return o.PageBorder != nil && (o.EnablePageBorder == nil || *o.EnablePageBorder)
}

var headingMarker = regexp.MustCompile(`data-h[1-6]\b`)

// Sanitize replaces every invalid value with its default and logs what was
// replaced. It never fails, after it returns no other component needs to
// validate options.
func (o *ConversionOptions) Sanitize(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	s := sanitizer{log: log}

	s.positive("font_size", &o.FontSize, DefaultFontSize)
	s.positive("line_height", &o.LineHeight, DefaultLineHeight)
	if len(strings.TrimSpace(o.FontFamily)) == 0 {
		o.FontFamily = DefaultFontFamily
	}

	o.sanitizePageSize(s)
	switch strings.ToLower(strings.TrimSpace(o.Orientation)) {
	case "landscape":
		o.Orientation = "landscape"
	case "portrait", "":
		o.Orientation = "portrait"
	default:
		s.replaced("orientation", o.Orientation, "portrait")
		o.Orientation = "portrait"
	}

	s.nonNegative("margin_top", &o.MarginTop, DefaultMargin)
	s.nonNegative("margin_right", &o.MarginRight, DefaultMargin)
	s.nonNegative("margin_bottom", &o.MarginBottom, DefaultMargin)
	s.nonNegative("margin_left", &o.MarginLeft, DefaultMargin)
	s.nonNegative("margin_header", &o.MarginHeader, DefaultMarginHeader)
	s.nonNegative("margin_footer", &o.MarginFooter, DefaultMarginHeader)
	s.positive("header_height", &o.HeaderHeight, DefaultHeaderHeight)
	s.positive("footer_height", &o.FooterHeight, DefaultHeaderHeight)

	switch a := strings.ToLower(strings.TrimSpace(o.PageNumberAlignment)); a {
	case "left", "center", "right":
		o.PageNumberAlignment = a
	case "":
		o.PageNumberAlignment = DefaultPageNumberAlignment
	default:
		s.replaced("page_number_alignment", o.PageNumberAlignment, DefaultPageNumberAlignment)
		o.PageNumberAlignment = DefaultPageNumberAlignment
	}

	if o.PageBorder != nil {
		o.sanitizePageBorder(s)
	}

	var kept []string
	for _, tmpl := range o.HeadingReplacements {
		if !headingMarker.MatchString(tmpl) {
			log.Warn("Heading replacement template has no data-h1..data-h6 marker, ignoring", zap.String("template", tmpl))
			continue
		}
		kept = append(kept, tmpl)
	}
	o.HeadingReplacements = kept
}

func (o *ConversionOptions) sanitizePageSize(s sanitizer) {
	if len(o.PageSize.Name) == 0 {
		w, h := o.PageSize.Width, o.PageSize.Height
		if w.valid() && h.valid() && w > 0 && h > 0 {
			return
		}
		s.replaced("page_size", fmt.Sprintf("%vx%v", w.Float(), h.Float()), PageA4)
		o.PageSize = PageSize{Name: PageA4}
		return
	}
	for _, name := range []string{PageA4, PageLetter, PageLegal} {
		if strings.EqualFold(strings.TrimSpace(o.PageSize.Name), name) {
			o.PageSize = PageSize{Name: name}
			return
		}
	}
	s.replaced("page_size", o.PageSize.Name, PageA4)
	o.PageSize = PageSize{Name: PageA4}
}

func (o *ConversionOptions) sanitizePageBorder(s sanitizer) {
	b := o.PageBorder
	switch st := strings.ToLower(strings.TrimSpace(b.Style)); st {
	case BorderSingle, BorderDouble, BorderThick, BorderDotted, BorderDashed:
		b.Style = st
	case "", "solid":
		b.Style = BorderSingle
	default:
		s.replaced("page_border.style", b.Style, BorderSingle)
		b.Style = BorderSingle
	}
	b.Color = units.Color(b.Color)
	s.positive("page_border.size", &b.Size, DefaultBorderSize)
	s.nonNegative("page_border.radius", &b.Radius, 0)
	if b.MarginOffset != nil && (!b.MarginOffset.valid() || *b.MarginOffset < 0) {
		s.replaced("page_border.margin_offset", b.MarginOffset.Float(), "half of left margin")
		b.MarginOffset = nil
	}
}

type sanitizer struct {
	log *zap.Logger
}

func (s sanitizer) replaced(name string, was, now any) {
	s.log.Warn("Invalid option value, using default",
		zap.String("option", name), zap.Any("value", was), zap.Any("default", now))
}

func (s sanitizer) positive(name string, n *Number, def float64) {
	if n.valid() && *n > 0 {
		return
	}
	s.replaced(name, n.Float(), def)
	*n = Number(def)
}

func (s sanitizer) nonNegative(name string, n *Number, def float64) {
	if n.valid() && *n >= 0 {
		return
	}
	s.replaced(name, n.Float(), def)
	*n = Number(def)
}

// Clone returns deep copy, so decoding into it never changes o.
func (o ConversionOptions) Clone() ConversionOptions {
	c := o
	c.HeadingReplacements = append([]string(nil), o.HeadingReplacements...)
	if o.PageBorder != nil {
		pb := *o.PageBorder
		if o.PageBorder.MarginOffset != nil {
			mo := *o.PageBorder.MarginOffset
			pb.MarginOffset = &mo
		}
		c.PageBorder = &pb
	}
	c.EnableHeader = cloneBool(o.EnableHeader)
	c.EnableFooter = cloneBool(o.EnableFooter)
	c.EnablePageBorder = cloneBool(o.EnablePageBorder)
	return c
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// LoadOptions reads conversion options from YAML, JSON or TOML file
// (selected by extension) on top of base. Result is sanitized.
func LoadOptions(path string, base ConversionOptions, log *zap.Logger) (ConversionOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("unable to read options file: %w", err)
	}

	opts := base.Clone()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &opts)
	case ".toml":
		_, err = toml.Decode(string(data), &opts)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&opts); errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if err != nil {
		return base, fmt.Errorf("unable to decode options file '%s': %w", path, err)
	}
	opts.Sanitize(log)
	return opts, nil
}
