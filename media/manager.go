// Package media keeps images and hyperlinks referenced by a document and
// assigns relationship identifiers to them.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"htmldocx/config"
)

const (
	firstRelID     = 100
	firstImageID   = 1
	defaultWorkers = 4
)

var dataURIRe = regexp.MustCompile(`(?s)^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

var errNoFetcher = errors.New("no fetcher configured")

type fetchResult struct {
	data []byte
	err  error
}

// Manager accumulates media and hyperlink relationships for single
// conversion. It is safe for concurrent use.
type Manager struct {
	fetcher Fetcher
	cfg     *config.ImagesConfig
	log     *zap.Logger
	workers int
	timeout time.Duration

	mu       sync.Mutex
	relSeq   int
	imageSeq int
	assets   []*Asset
	links    []*Link
	exts     []string
	cache    map[string]*fetchResult
}

// Option configures Manager.
type Option func(*Manager)

// WithWorkers limits number of concurrent downloads during Prefetch.
func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithTimeout sets deadline for a single download.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewManager creates manager, fetcher may be nil in which case network
// references are never resolved.
func NewManager(fetcher Fetcher, cfg *config.ImagesConfig, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		fetcher:  fetcher,
		cfg:      cfg,
		log:      log.Named("media"),
		workers:  defaultWorkers,
		timeout:  defaultFetchTimeout,
		relSeq:   firstRelID,
		imageSeq: firstImageID,
		cache:    make(map[string]*fetchResult),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsRemote reports whether reference has to be downloaded.
func IsRemote(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// IsDataURI reports whether reference carries inline image data.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ref)), "data:")
}

// Resolve turns image reference into package asset owned by part. Every call
// creates new asset even for identical references. On any failure warning is
// logged and nil is returned so the image is simply omitted.
func (m *Manager) Resolve(ctx context.Context, ref, alt string, part Part) *Asset {
	ref = strings.TrimSpace(ref)

	var (
		data []byte
		ext  string
		err  error
	)
	switch {
	case IsDataURI(ref):
		data, ext, err = decodeDataURI(ref)
		if err != nil {
			m.log.Warn("Unable to decode image data URI", zap.String("ref", abbreviate(ref)), zap.Error(err))
			return nil
		}
	case IsRemote(ref):
		data, err = m.fetch(ctx, ref)
		if err != nil {
			m.log.Warn("Unable to fetch image", zap.String("url", ref), zap.Error(err))
			return nil
		}
		ext = urlExt(ref)
		if !knownExt(ext) {
			if ext = sniffExt(data); len(ext) == 0 {
				ext = "png"
			}
		}
	default:
		m.log.Warn("Unsupported image reference, skipping", zap.String("ref", abbreviate(ref)))
		return nil
	}
	if len(data) == 0 {
		m.log.Warn("Empty image, skipping", zap.String("ref", abbreviate(ref)))
		return nil
	}

	img := normalize(data, ext, m.cfg, m.log)

	m.mu.Lock()
	defer m.mu.Unlock()

	a := &Asset{
		RelID:       m.nextRelID(),
		ImageID:     m.imageSeq,
		Ext:         img.ext,
		ContentType: ContentType(img.ext),
		Data:        img.data,
		Alt:         alt,
		Part:        part,
		Width:       img.width,
		Height:      img.height,
	}
	a.Filename = fmt.Sprintf("image_%d.%s", a.ImageID, a.Ext)
	m.imageSeq++
	m.assets = append(m.assets, a)
	m.addExt(a.Ext)

	m.log.Debug("Image added", zap.String("id", a.RelID), zap.String("file", a.Filename), zap.Stringer("part", part))
	return a
}

// AddLink registers external hyperlink for part and returns its
// relationship id.
func (m *Manager) AddLink(target string, part Part) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := &Link{RelID: m.nextRelID(), Target: target, Part: part}
	m.links = append(m.links, l)
	return l.RelID
}

// Assets returns images owned by part in creation order.
func (m *Manager) Assets(part Part) []*Asset {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []*Asset
	for _, a := range m.assets {
		if a.Part == part {
			res = append(res, a)
		}
	}
	return res
}

// Links returns hyperlinks owned by part in creation order.
func (m *Manager) Links(part Part) []*Link {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []*Link
	for _, l := range m.links {
		if l.Part == part {
			res = append(res, l)
		}
	}
	return res
}

// All returns every image in creation order.
func (m *Manager) All() []*Asset {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*Asset(nil), m.assets...)
}

// Extensions returns distinct image extensions in order of first use.
func (m *Manager) Extensions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.exts...)
}

// Prefetch downloads remote references concurrently so later Resolve calls
// are served from memory. Failures are remembered and reported by Resolve.
// Only context cancellation is returned as error.
func (m *Manager) Prefetch(ctx context.Context, refs []string) error {
	if m.fetcher == nil {
		return nil
	}

	var todo []string
	m.mu.Lock()
	seen := make(map[string]bool)
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if !IsRemote(ref) || seen[ref] {
			continue
		}
		seen[ref] = true
		if _, ok := m.cache[ref]; !ok {
			todo = append(todo, ref)
		}
	}
	m.mu.Unlock()

	if len(todo) == 0 {
		return nil
	}
	m.log.Debug("Prefetching images", zap.Int("count", len(todo)), zap.Int("workers", m.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for _, ref := range todo {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := m.download(gctx, ref)
			m.mu.Lock()
			m.cache[ref] = &fetchResult{data: data, err: err}
			m.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("unable to prefetch images: %w", err)
	}
	return ctx.Err()
}

func (m *Manager) fetch(ctx context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	res, ok := m.cache[ref]
	m.mu.Unlock()
	if ok {
		return res.data, res.err
	}

	data, err := m.download(ctx, ref)
	m.mu.Lock()
	m.cache[ref] = &fetchResult{data: data, err: err}
	m.mu.Unlock()
	return data, err
}

func (m *Manager) download(ctx context.Context, ref string) ([]byte, error) {
	if m.fetcher == nil {
		return nil, errNoFetcher
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.fetcher.Fetch(ctx, ref)
}

// nextRelID must be called with mutex held.
func (m *Manager) nextRelID() string {
	id := fmt.Sprintf("rId%d", m.relSeq)
	m.relSeq++
	return id
}

// addExt must be called with mutex held.
func (m *Manager) addExt(ext string) {
	for _, e := range m.exts {
		if e == ext {
			return
		}
	}
	m.exts = append(m.exts, ext)
}

func decodeDataURI(ref string) ([]byte, string, error) {
	matches := dataURIRe.FindStringSubmatch(ref)
	if matches == nil {
		return nil, "", errors.New("not a base64 image data URI")
	}
	payload := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, matches[2])

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		var rawErr error
		if data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr != nil {
			return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
		}
	}
	return data, subtypeToExt(matches[1]), nil
}

// urlExt returns lowercase extension of URL path without dot.
func urlExt(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
}

func abbreviate(ref string) string {
	const limit = 64
	if len(ref) <= limit {
		return ref
	}
	return ref[:limit] + "..."
}
