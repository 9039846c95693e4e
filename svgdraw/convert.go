package svgdraw

import (
	"bytes"
	"image/color"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/benoitkugler/svgconvert/svgtree"
)

var (
	// ErrMissingDimensions is returned when the size of the
	// document can't be resolved from its width, height and viewBox.
	ErrMissingDimensions = errors.New("missing document dimensions")

	// ErrTooDeep is returned when the document nesting
	// (including use references) exceeds Options.MaxDepth.
	ErrTooDeep = errors.New("document nested too deeply")

	// ErrSource is returned for an invalid Source.
	ErrSource = errors.New("invalid source")

	// ErrUnresolvedReference is returned in StrictErrorMode for references
	// to missing gradients, patterns, markers or elements.
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// ErrorMode is the reaction to missing references
// and unsupported content.
type ErrorMode uint8

const (
	// WarnErrorMode logs the problem and continues.
	WarnErrorMode ErrorMode = iota
	// IgnoreErrorMode silently continues.
	IgnoreErrorMode
	// StrictErrorMode aborts the conversion.
	StrictErrorMode
)

const (
	defaultDPI      = 96
	defaultMaxDepth = 512
)

type inMemory struct{}

func (inMemory) Write(p []byte) (int, error) { return len(p), nil }

// InMemory may be used as Options.Output to render
// the document without keeping the result.
var InMemory io.Writer = inMemory{}

// Options configures a conversion. The zero value is valid.
type Options struct {
	DPI       float64 // defaults to 96
	MaxDepth  int     // maximum element nesting, defaults to 512
	ErrorMode ErrorMode
	Logger    hclog.Logger // defaults to a null logger

	// Output receives the result. If nil, the result
	// is returned by Convert. See also InMemory.
	Output io.Writer

	// Background is painted before drawing (PNG only);
	// nil means transparent.
	Background color.Color
}

func (opts Options) withDefaults() Options {
	if opts.DPI <= 0 {
		opts.DPI = defaultDPI
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return opts
}

// Source is the input of a conversion:
// exactly one field must be set.
type Source struct {
	Bytes  []byte
	Reader io.Reader
	// URL is a local path, or a file, http or https URL.
	URL string
}

func (src Source) parse(logger hclog.Logger) (*svgtree.Node, error) {
	set := 0
	for _, ok := range [...]bool{src.Bytes != nil, src.Reader != nil, src.URL != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errors.Wrapf(ErrSource, "%d inputs given, expected exactly one", set)
	}

	switch {
	case src.Bytes != nil:
		return svgtree.ParseBytes(src.Bytes)
	case src.Reader != nil:
		return svgtree.Parse(src.Reader)
	}

	u, err := url.Parse(src.URL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 { // windows drive letters
		logger.Debug("reading file", "path", src.URL)
		return svgtree.ParseFile(src.URL)
	}
	switch u.Scheme {
	case "file":
		logger.Debug("reading file", "path", u.Path)
		return svgtree.ParseFile(u.Path)
	case "http", "https":
		logger.Debug("fetching document", "url", src.URL)
		resp, err := http.Get(src.URL)
		if err != nil {
			return nil, errors.Wrapf(err, "fetching %s", src.URL)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("fetching %s: unexpected status %s", src.URL, resp.Status)
		}
		return svgtree.Parse(resp.Body)
	}
	return nil, errors.Wrapf(ErrSource, "unsupported url scheme %q", u.Scheme)
}

// Convert renders the SVG document `src` to the given format.
// See Options.Output for the handling of the result.
func Convert(format Format, src Source, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	root, err := src.parse(opts.Logger)
	if err != nil {
		return nil, err
	}

	var (
		buf    bytes.Buffer
		output io.Writer
	)
	switch opts.Output {
	case nil:
		output = &buf
	case InMemory:
		// nothing to write
	default:
		output = opts.Output
	}

	surface, err := NewSurface(format, root, opts, output)
	if err != nil {
		return nil, err
	}
	if err := surface.Finish(); err != nil {
		return nil, err
	}
	if opts.Output == nil {
		return buf.Bytes(), nil
	}
	return nil, nil
}

// ConvertPNG is a shortcut for Convert(PNG, src, opts).
func ConvertPNG(src Source, opts Options) ([]byte, error) { return Convert(PNG, src, opts) }

// ConvertPDF is a shortcut for Convert(PDF, src, opts).
func ConvertPDF(src Source, opts Options) ([]byte, error) { return Convert(PDF, src, opts) }

// ConvertSVG is a shortcut for Convert(SVG, src, opts).
func ConvertSVG(src Source, opts Options) ([]byte, error) { return Convert(SVG, src, opts) }

// trimmed for log messages
func shorten(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
