// Package css reads inline style declarations using tdewolff CSS grammar
// parser.
package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Declarations keeps declarations in source order.
type Declarations []Declaration

// Get returns value of the last declaration of the property, which is the one
// browsers use.
func (d Declarations) Get(prop string) (string, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Property == prop {
			return d[i].Value, true
		}
	}
	return "", false
}

// Parser parses inline style attributes.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new parser, log may be nil.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// ParseInline parses content of style attribute. Malformed declarations are
// skipped, custom properties are ignored.
func (p *Parser) ParseInline(style string) Declarations {
	if len(strings.TrimSpace(style)) == 0 {
		return nil
	}

	input := parse.NewInput(bytes.NewReader([]byte(style)))
	parser := css.NewParser(input, true)

	var decls Declarations
	// parser always consumes input on error, bound the loop anyway
	for range len(style) + 1 {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			err := parser.Err()
			if err == nil || errors.Is(err, io.EOF) {
				return decls
			}
			p.log.Debug("Skipping malformed declaration", zap.String("style", style), zap.Error(err))
		case css.DeclarationGrammar:
			value, important := joinValues(parser.Values())
			if len(value) == 0 {
				continue
			}
			decls = append(decls, Declaration{
				Property:  strings.ToLower(string(data)),
				Value:     value,
				Important: important,
			})
		case css.CustomPropertyGrammar:
			continue
		}
	}
	return decls
}

var defaultParser = NewParser(nil)

// ParseInline parses style attribute without logging.
func ParseInline(style string) Declarations {
	return defaultParser.ParseInline(style)
}

// joinValues rebuilds declaration value from tokens collapsing whitespace and
// stripping "!important".
func joinValues(tokens []css.Token) (string, bool) {
	var (
		sb        strings.Builder
		important bool
		space     bool
	)
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t.TokenType == css.WhitespaceToken:
			space = sb.Len() > 0
			continue
		case t.TokenType == css.DelimToken && string(t.Data) == "!":
			j := i + 1
			for j < len(tokens) && tokens[j].TokenType == css.WhitespaceToken {
				j++
			}
			if j < len(tokens) && tokens[j].TokenType == css.IdentToken && strings.EqualFold(string(tokens[j].Data), "important") {
				important = true
				i = j
				continue
			}
		case t.TokenType == css.IdentToken && strings.EqualFold(string(t.Data), "!important"):
			important = true
			continue
		}
		if space && !tight(sb.String(), t.TokenType) {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String()), important
}

// tight reports whether whitespace between previous output and the next token
// is insignificant.
func tight(prev string, next css.TokenType) bool {
	if next == css.CommaToken || next == css.RightParenthesisToken {
		return true
	}
	return strings.HasSuffix(prev, "(") || strings.HasSuffix(prev, ",")
}
