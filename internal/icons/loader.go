// ABOUTME: Registers catalog images with the map engine and tracks readiness
// ABOUTME: Ready flips once every entry has settled, whether it loaded or failed

package icons

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/forage/internal/mapengine"
)

// ErrAlreadyLoading is returned when Load is called twice on one Loader.
var ErrAlreadyLoading = errors.New("icon loader already started")

// Decoder turns a catalog entry into a bitmap. done may be called
// synchronously or later from another goroutine, exactly once.
type Decoder interface {
	Decode(e Entry, done func(mapengine.Image, error))
}

// SVGDecoder checks that an entry is well-formed SVG and reads its size.
type SVGDecoder struct{}

// Decode implements Decoder.
func (SVGDecoder) Decode(e Entry, done func(mapengine.Image, error)) {
	img, err := decodeSVG(e.SVG)
	done(img, err)
}

func decodeSVG(data []byte) (mapengine.Image, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var img mapengine.Image
	seenRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return mapengine.Image{}, fmt.Errorf("parse svg: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || seenRoot {
			continue
		}
		if start.Name.Local != "svg" {
			return mapengine.Image{}, fmt.Errorf("parse svg: root element is %q", start.Name.Local)
		}
		seenRoot = true
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "width":
				img.Width, err = strconv.Atoi(a.Value)
			case "height":
				img.Height, err = strconv.Atoi(a.Value)
			}
			if err != nil {
				return mapengine.Image{}, fmt.Errorf("parse svg %s: %w", a.Name.Local, err)
			}
		}
	}
	if !seenRoot {
		return mapengine.Image{}, errors.New("parse svg: no svg element")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return mapengine.Image{}, errors.New("parse svg: missing width or height")
	}
	img.Data = data
	return img, nil
}

// Outcome is how one catalog entry settled.
type Outcome string

// Settle outcomes.
const (
	OutcomeRegistered   Outcome = "registered"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeDecodeFailed Outcome = "decode_failed"
	OutcomeAddFailed    Outcome = "add_failed"
)

// Observer is told about each settled entry and the ready transition.
type Observer interface {
	IconSettled(key string, outcome Outcome)
	IconsReady(total, failed int)
}

// Loader registers a catalog with an image registry. Until every entry has
// settled the map should draw the fallback circle layer instead of symbols.
type Loader struct {
	registry mapengine.ImageRegistry
	decoder  Decoder
	logger   *log.Logger
	observer Observer

	mu      sync.Mutex
	started bool
	total   int
	settled int
	added   int
	skipped int
	failed  int
	ready   bool
	waiters []func()
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDecoder replaces the default SVG decoder.
func WithDecoder(d Decoder) LoaderOption {
	return func(l *Loader) { l.decoder = d }
}

// WithLogger sets the logger used for decode failures.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithObserver attaches an observer.
func WithObserver(o Observer) LoaderOption {
	return func(l *Loader) { l.observer = o }
}

// NewLoader creates a loader for registry.
func NewLoader(registry mapengine.ImageRegistry, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry: registry,
		decoder:  SVGDecoder{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.Default()
	}
	return l
}

// Load starts registering every entry of c. Entries already present in the
// registry count as settled without being decoded. An empty catalog is
// ready immediately.
func (l *Loader) Load(c *Catalog) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrAlreadyLoading
	}
	l.started = true
	l.total = c.Len()
	l.mu.Unlock()

	if c.Len() == 0 {
		l.finish()
		return nil
	}

	for _, e := range c.Entries() {
		if l.registry.HasImage(e.Key) {
			l.settle(e.Key, OutcomeSkipped)
			continue
		}
		entry := e
		l.decoder.Decode(entry, func(img mapengine.Image, err error) {
			if err != nil {
				l.logger.Warn("failed to load marker icon", "key", entry.Key, "err", err)
				l.settle(entry.Key, OutcomeDecodeFailed)
				return
			}
			if l.registry.HasImage(entry.Key) {
				l.settle(entry.Key, OutcomeSkipped)
				return
			}
			if err := l.registry.AddImage(entry.Key, img, float64(entry.PixelRatio)); err != nil {
				l.logger.Warn("failed to register marker icon", "key", entry.Key, "err", err)
				l.settle(entry.Key, OutcomeAddFailed)
				return
			}
			l.settle(entry.Key, OutcomeRegistered)
		})
	}
	return nil
}

func (l *Loader) settle(key string, outcome Outcome) {
	l.mu.Lock()
	l.settled++
	switch outcome {
	case OutcomeRegistered:
		l.added++
	case OutcomeSkipped:
		l.skipped++
	case OutcomeDecodeFailed, OutcomeAddFailed:
		l.failed++
	}
	done := l.settled == l.total
	l.mu.Unlock()

	if l.observer != nil {
		l.observer.IconSettled(key, outcome)
	}
	if done {
		l.finish()
	}
}

func (l *Loader) finish() {
	l.mu.Lock()
	if l.ready {
		l.mu.Unlock()
		return
	}
	l.ready = true
	waiters := l.waiters
	l.waiters = nil
	total, failed := l.total, l.failed
	l.mu.Unlock()

	l.logger.Debug("marker icons ready", "total", total, "failed", failed)
	if l.observer != nil {
		l.observer.IconsReady(total, failed)
	}
	for _, fn := range waiters {
		fn()
	}
}

// Ready reports whether every entry has settled.
func (l *Loader) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// Progress returns settled and total entry counts.
func (l *Loader) Progress() (settled, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settled, l.total
}

// Registered returns how many entries this loader added to the registry.
func (l *Loader) Registered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.added
}

// Skipped returns how many entries were already in the registry.
func (l *Loader) Skipped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.skipped
}

// Failed returns how many entries failed to decode or register.
func (l *Loader) Failed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failed
}

// OnReady runs fn once the loader is ready; immediately if it already is.
func (l *Loader) OnReady(fn func()) {
	l.mu.Lock()
	if !l.ready {
		l.waiters = append(l.waiters, fn)
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	fn()
}
