package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/multierr"
)

// MimeType of produced documents.
const MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Part is a named archive entry.
type Part struct {
	Name string
	Data []byte
	// already compressed data is stored as is
	Store bool
}

// Package is ordered set of parts ready to be archived.
type Package struct {
	parts    []Part
	index    map[string]int
	modified time.Time
}

func newPackage(modified time.Time) *Package {
	return &Package{index: make(map[string]int), modified: modified}
}

// Add appends part, part with the same name is replaced in place.
func (p *Package) Add(part Part) {
	if i, ok := p.index[part.Name]; ok {
		p.parts[i] = part
		return
	}
	p.index[part.Name] = len(p.parts)
	p.parts = append(p.parts, part)
}

func (p *Package) addXML(name string, doc *etree.Document) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("unable to serialize %s: %w", name, err)
	}
	p.Add(Part{Name: name, Data: data})
	return nil
}

// Parts returns parts in archive order.
func (p *Package) Parts() []Part {
	return append([]Part(nil), p.parts...)
}

// Part returns content of named part.
func (p *Package) Part(name string) ([]byte, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.parts[i].Data, true
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// WriteTo writes zip archive with all parts.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, part := range p.parts {
		method := zip.Deflate
		if part.Store {
			method = zip.Store
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.Name,
			Method:   method,
			Modified: p.modified,
		})
		if err != nil {
			return cw.n, fmt.Errorf("unable to create archive entry %s: %w", part.Name, err)
		}
		if _, err := fw.Write(part.Data); err != nil {
			return cw.n, fmt.Errorf("unable to write archive entry %s: %w", part.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("unable to close archive: %w", err)
	}
	return cw.n, nil
}

// Bytes returns archive in memory.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes archive to file going through temporary file in the same
// directory. When fix is set entries are rewritten without data descriptors.
func (p *Package) Save(path string, fix bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".htmldocx-*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if rerr := os.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
			err = multierr.Append(err, rerr)
		}
	}()

	if _, err := p.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to finalize temporary file: %w", err)
	}

	if fix {
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("unable to create target file (%s): %w", path, err)
		}
		return multierr.Append(copyZipWithoutDataDescriptors(tmpName, out), out.Close())
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("unable to move archive into place: %w", err)
	}
	return nil
}

// FixedBytes returns archive without data descriptors, some older office
// suites cannot read them.
func (p *Package) FixedBytes() (data []byte, err error) {
	tmp, err := os.CreateTemp("", "htmldocx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		err = multierr.Append(err, os.Remove(tmpName))
	}()

	if _, err := p.WriteTo(tmp); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize temporary file: %w", err)
	}

	var buf bytes.Buffer
	if err := copyZipWithoutDataDescriptors(tmpName, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func copyZipWithoutDataDescriptors(from string, to io.Writer) error {
	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(to)
	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to copy archive entry (%s): %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to close archive: %w", err)
	}
	return nil
}
