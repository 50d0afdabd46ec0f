package markup

import (
	"bytes"

	"github.com/beevik/etree"
)

// Kind is type of generated element.
type Kind int

const (
	KindParagraph Kind = iota
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	}
	return "unknown"
}

// Fragment is an immutable piece of WordprocessingML produced by the
// transducer.
type Fragment struct {
	kind Kind
	el   *etree.Element
}

// fragment takes ownership of block element.
func fragment(el *etree.Element) Fragment {
	if el.Space == "w" && el.Tag == "tbl" {
		return Fragment{kind: KindTable, el: el}
	}
	return Fragment{kind: KindParagraph, el: el}
}

func (f Fragment) Kind() Kind {
	return f.kind
}

// Element returns deep copy of wrapped element.
func (f Fragment) Element() *etree.Element {
	if f.el == nil {
		return nil
	}
	return f.el.Copy()
}

// Bytes serializes fragment.
func (f Fragment) Bytes() []byte {
	if f.el == nil {
		return nil
	}
	var buf bytes.Buffer
	f.el.WriteTo(&buf, &etree.WriteSettings{})
	return buf.Bytes()
}

func (f Fragment) String() string {
	return string(f.Bytes())
}

// Body is ordered list of block fragments.
type Body []Fragment

// Elements returns copies of all fragment elements in order.
func (b Body) Elements() []*etree.Element {
	res := make([]*etree.Element, 0, len(b))
	for _, f := range b {
		res = append(res, f.Element())
	}
	return res
}

// Bytes serializes body.
func (b Body) Bytes() []byte {
	var buf bytes.Buffer
	for _, f := range b {
		buf.Write(f.Bytes())
	}
	return buf.Bytes()
}

func paragraphs(els []*etree.Element) Body {
	res := make(Body, 0, len(els))
	for _, el := range els {
		res = append(res, fragment(el))
	}
	return res
}
