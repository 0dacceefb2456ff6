package classifier

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/denysvitali/asset-finder/internal/models"
	"github.com/denysvitali/asset-finder/pkg/config"
)

// ErrNotDirectory is returned when the scan root is not a directory
var ErrNotDirectory = errors.New("not a directory")

// Options configures a Scanner
type Options struct {
	// MountPrefix is the public URL prefix the root is served under, e.g. "/public"
	MountPrefix string
	Rules       Rules
}

// Scanner finds files by name below a root directory.
// It holds no mutable state and may be shared between goroutines.
type Scanner struct {
	fs          afero.Fs
	root        string
	mountPrefix string
	rules       Rules
	logger      *logrus.Logger
	tracer      trace.Tracer
}

// New creates a scanner rooted at root on the given filesystem
func New(fs afero.Fs, root string, opts Options, logger *logrus.Logger) *Scanner {
	if opts.Rules.images == nil && opts.Rules.excluded == nil {
		opts.Rules = DefaultRules()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scanner{
		fs:          fs,
		root:        filepath.Clean(root),
		mountPrefix: NormalizeMountPrefix(opts.MountPrefix),
		rules:       opts.Rules,
		logger:      logger,
		tracer:      otel.Tracer("asset-finder"),
	}
}

// NewFromConfig creates a scanner for the configured assets directory.
// Empty extension lists fall back to the defaults.
func NewFromConfig(fs afero.Fs, cfg *config.Config, logger *logrus.Logger) *Scanner {
	rules := DefaultRules()
	if len(cfg.Search.ImageExtensions) > 0 || len(cfg.Search.ExcludedExtensions) > 0 {
		rules = NewRules(cfg.Search.ImageExtensions, cfg.Search.ExcludedExtensions)
	}
	return New(fs, cfg.Server.AssetsDir, Options{
		MountPrefix: cfg.Server.MountPrefix,
		Rules:       rules,
	}, logger)
}

// Root returns the directory being scanned
func (s *Scanner) Root() string {
	return s.root
}

// MountPrefix returns the URL prefix used to build match URLs
func (s *Scanner) MountPrefix() string {
	return s.mountPrefix
}

// Search scans for keyword and classifies the matches
func (s *Scanner) Search(ctx context.Context, keyword string) (models.Classification, error) {
	matches, err := s.Scan(ctx, keyword)
	if err != nil {
		return models.Classification{}, err
	}
	return s.rules.Classify(matches), nil
}

// Scan walks the root depth-first and returns every regular file whose
// lowercased name contains the lowercased keyword. An empty keyword matches
// every file. Any unreadable directory aborts the scan.
func (s *Scanner) Scan(ctx context.Context, keyword string) ([]models.FileMatch, error) {
	ctx, span := s.tracer.Start(ctx, "classifier.scan")
	defer span.End()

	span.SetAttributes(
		attribute.String("root", s.root),
		attribute.String("keyword", keyword),
	)

	info, err := s.fs.Stat(s.root)
	if err != nil {
		span.RecordError(err)
		return nil, &FilesystemError{Op: "stat", Path: s.root, Err: err}
	}
	if !info.IsDir() {
		err := &FilesystemError{Op: "scan", Path: s.root, Err: ErrNotDirectory}
		span.RecordError(err)
		return nil, err
	}

	w := walk{
		Scanner: s,
		needle:  strings.ToLower(keyword),
		visited: make(map[any]struct{}),
	}
	matches, err := w.dir(ctx, s.root, "", info)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("matches", len(matches)))
	s.logger.WithFields(logrus.Fields{
		"keyword": keyword,
		"root":    s.root,
		"matches": len(matches),
	}).Debug("Scan completed")

	return matches, nil
}

// walk carries the per-scan state. A new one is built for every Scan call.
type walk struct {
	*Scanner
	needle  string
	visited map[any]struct{}
}

func (w walk) dir(ctx context.Context, dir, rel string, info os.FileInfo) ([]models.FileMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := dirIdentity(dir, info)
	if _, ok := w.visited[id]; ok {
		w.logger.Debugf("Skipping already visited directory %s", dir)
		return nil, nil
	}
	w.visited[id] = struct{}{}

	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return nil, &FilesystemError{Op: "readdir", Path: dir, Err: err}
	}

	var matches []models.FileMatch
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		relPath := path.Join(rel, entry.Name())

		// Stat follows symlinks; entry itself may describe the link.
		st, err := w.fs.Stat(full)
		if err != nil {
			return nil, &FilesystemError{Op: "stat", Path: full, Err: err}
		}

		switch {
		case st.IsDir():
			sub, err := w.dir(ctx, full, relPath, st)
			if err != nil {
				return nil, err
			}
			matches = append(matches, sub...)
		case st.Mode().IsRegular():
			if strings.Contains(strings.ToLower(entry.Name()), w.needle) {
				matches = append(matches, w.match(entry.Name(), relPath, st.Size()))
			}
		default:
			w.logger.Debugf("Skipping non-regular file %s (%s)", full, st.Mode().Type())
		}
	}

	return matches, nil
}

func (w walk) match(name, relPath string, size int64) models.FileMatch {
	return models.FileMatch{
		URL:   w.mountPrefix + "/" + escapePath(relPath),
		Name:  name,
		Size:  FormatBytes(size),
		Bytes: size,
		Ext:   strings.ToLower(filepath.Ext(name)),
	}
}

// escapePath percent-escapes each slash-separated segment of p
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// NormalizeMountPrefix returns prefix with exactly one leading slash and no
// trailing slash. An empty prefix mounts at the root.
func NormalizeMountPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
