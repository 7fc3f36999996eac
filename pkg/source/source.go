// Package source loads diagrams from files, standard input and HTTP(S)
// URLs.
//
// Remote documents are fetched with retries on transient failures and kept
// in the cache, so a dashboard that re-renders the same URL does not hit
// the origin every time.
//
//	loader := source.NewLoader(c, nil, logger)
//	d, err := loader.Load(ctx, "https://example.com/incident.yaml", "")
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fishbone/pkg/buildinfo"
	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/errors"
)

// Stdin is the source name that reads standard input.
const Stdin = "-"

// DefaultMaxBytes caps the size of a remote document.
const DefaultMaxBytes = 4 << 20

// Kind classifies a source name.
type Kind int

const (
	KindFile Kind = iota
	KindStdin
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindStdin:
		return "stdin"
	case KindURL:
		return "url"
	default:
		return "file"
	}
}

// Classify tells files, stdin and URLs apart.
func Classify(src string) Kind {
	switch {
	case src == Stdin:
		return KindStdin
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return KindURL
	default:
		return KindFile
	}
}

// Loader reads diagrams. The zero value is not usable; use [NewLoader].
type Loader struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Client   *http.Client
	Logger   *log.Logger
	Stdin    io.Reader
	MaxBytes int64
	// Attempts and Backoff control retries of transient fetch failures.
	Attempts int
	Backoff  time.Duration
	// Refresh bypasses cached remote documents.
	Refresh bool
}

// NewLoader creates a loader. Nil arguments get working defaults.
func NewLoader(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Loader {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loader{
		Cache:    c,
		Keyer:    keyer,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Logger:   logger,
		Stdin:    os.Stdin,
		MaxBytes: DefaultMaxBytes,
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// Load reads and validates the diagram at src. An empty format is inferred
// from the file or URL extension; stdin defaults to JSON.
func (l *Loader) Load(ctx context.Context, src string, format diagram.Format) (*diagram.Diagram, error) {
	kind := Classify(src)
	if format == "" {
		var err error
		if format, err = inferFormat(src, kind); err != nil {
			return nil, err
		}
	}

	switch kind {
	case KindStdin:
		return diagram.Read(l.Stdin, format)
	case KindURL:
		data, err := l.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		d, err := diagram.Parse(data, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
		return d, nil
	default:
		return readFile(src, format)
	}
}

func readFile(name string, format diagram.Format) (*diagram.Diagram, error) {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram file %s", name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	d, err := diagram.Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func inferFormat(src string, kind Kind) (diagram.Format, error) {
	switch kind {
	case KindStdin:
		return diagram.FormatJSON, nil
	case KindURL:
		u, err := url.Parse(src)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %q", src)
		}
		if f, err := diagram.FormatFromPath(u.Path); err == nil {
			return f, nil
		}
		return diagram.FormatJSON, nil
	default:
		return diagram.FormatFromPath(src)
	}
}

// Fetch downloads a remote document through the cache.
func (l *Loader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errors.ValidateURL(rawURL, "http", "https"); err != nil {
		return nil, err
	}
	key := l.Keyer.HTTPKey("source", rawURL)
	if !l.Refresh {
		if data, hit, err := l.Cache.Get(ctx, key); err == nil && hit {
			l.Logger.Debug("source cache hit", "url", rawURL)
			return data, nil
		}
	}

	var data []byte
	err := cache.Retry(ctx, l.Attempts, l.Backoff, func() error {
		var err error
		data, err = l.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := l.Cache.Set(ctx, key, data, cache.TTLHTTP); err != nil {
		l.Logger.Warn("cache source", "url", rawURL, "err", err)
	}
	return data, nil
}

func (l *Loader) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	req.Header.Set("Accept", "application/json, application/yaml, application/toml, text/plain")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := l.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %w", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrap(errors.ErrCodeNotFound, cache.ErrNotFound, "%s", rawURL)
	case resp.StatusCode >= 500:
		return nil, cache.Retryable(fmt.Errorf("%w: %s returned %s", cache.ErrNetwork, rawURL, resp.Status))
	case resp.StatusCode >= 300:
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s returned %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.MaxBytes+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: read body: %w", cache.ErrNetwork, err))
	}
	if int64(len(data)) > l.MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", rawURL, l.MaxBytes)
	}
	return data, nil
}
