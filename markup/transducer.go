// Package markup transduces HTML tree into WordprocessingML fragments.
package markup

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmldocx/config"
	"htmldocx/media"
	"htmldocx/shape"
	"htmldocx/style"
	"htmldocx/units"
)

// HeadingPlaceholder is replaced with heading text in heading templates.
const HeadingPlaceholder = "HEADING_TEXT"

var headingLevelRe = regexp.MustCompile(`(?i)\bdata-h([1-6])\b`)

// Transducer converts markup of a single document part. It is not safe for
// concurrent use, the media manager it shares is.
type Transducer struct {
	media     *media.Manager
	part      media.Part
	geom      shape.Geometry
	ids       *shape.Counter
	templates map[int]string
	baseSize  int
	depth     int
	log       *zap.Logger
}

// NewTransducer creates transducer for part. Options provide base font size
// and heading templates, geometry is needed for table widths and page
// anchored images. Shape counter is shared by all parts of the document.
func NewTransducer(mgr *media.Manager, part media.Part, opts *config.ConversionOptions, geom shape.Geometry, ids *shape.Counter, log *zap.Logger) *Transducer {
	if log == nil {
		log = zap.NewNop()
	}
	if ids == nil {
		ids = shape.NewCounter()
	}
	t := &Transducer{
		media:     mgr,
		part:      part,
		geom:      geom,
		ids:       ids,
		templates: make(map[int]string),
		baseSize:  units.Round(config.DefaultFontSize * 2),
		log:       log.Named("markup").With(zap.Stringer("part", part)),
	}
	if opts != nil {
		if opts.FontSize.Float() > 0 {
			t.baseSize = units.Round(opts.FontSize.Float() * 2)
		}
		for _, tmpl := range opts.HeadingReplacements {
			m := headingLevelRe.FindStringSubmatch(tmpl)
			if m == nil {
				continue
			}
			level, _ := strconv.Atoi(m[1])
			if _, exists := t.templates[level]; exists {
				t.log.Debug("Duplicate heading template, ignoring", zap.Int("level", level))
				continue
			}
			t.templates[level] = tmpl
		}
	}
	return t
}

// ProcessMarkup cleans and parses markup and converts content of its body.
// Only context cancellation is reported as error, everything else degrades
// to omitted content.
func (t *Transducer) ProcessMarkup(ctx context.Context, markup string) (Body, error) {
	doc, err := html.Parse(strings.NewReader(Clean(markup)))
	if err != nil {
		return nil, fmt.Errorf("unable to parse markup: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return nil, nil
	}

	if t.depth == 0 && t.media != nil {
		if err := t.media.Prefetch(ctx, imageRefs(body)); err != nil {
			return nil, err
		}
	}

	els, err := t.blocks(ctx, body, style.Record{}, paraProps{})
	if err != nil {
		return nil, err
	}
	return paragraphs(els), nil
}

// reenter returns transducer for heading template expansion.
func (t *Transducer) reenter() *Transducer {
	sub := *t
	sub.depth++
	return &sub
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// imageRefs collects remote image sources in document order.
func imageRefs(n *html.Node) []string {
	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			if src, ok := attr(n, "src"); ok && media.IsRemote(src) {
				refs = append(refs, strings.TrimSpace(src))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return refs
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attr(n, key)
	return ok
}

// textContent returns text of node with whitespace collapsed.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
