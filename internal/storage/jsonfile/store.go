// Package jsonfile persists the product document as a single JSON file.
package jsonfile

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"github.com/moby/sys/atomicwriter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
	"github.com/xenking/stock-keeper/internal/domain/product"
)

var _ product.Repository = (*Store)(nil)

const (
	tracerName = "github.com/xenking/stock-keeper/internal/storage/jsonfile"
	filePerm   = 0o644
	gzipExt    = ".gz"
)

// Option configures a Store.
type Option func(*Store)

// WithTracerProvider sets the provider used to trace reads and saves.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithNow overrides the clock used to stamp saved documents.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithDefaultCategory sets the category given to records stored without one.
func WithDefaultCategory(category string) Option {
	return func(s *Store) {
		if category = strings.TrimSpace(category); category != "" {
			s.defaultCategory = category
		}
	}
}

// Store implements product.Repository on top of a JSON file. Paths ending in
// ".gz" are gzip-compressed.
type Store struct {
	path            string
	defaultCategory string
	tracer          trace.Tracer
	now             func() time.Time
}

// New returns a Store for the file at path. The file is not touched until
// the first read or save.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:            path,
		defaultCategory: catalog.DefaultCategory,
		tracer:          noop.NewTracerProvider().Tracer(tracerName),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Read loads the document strictly. A missing file yields a
// *PersistenceError wrapping fs.ErrNotExist.
func (s *Store) Read(ctx context.Context) (product.Document, error) {
	_, span := s.tracer.Start(ctx, "store.read",
		trace.WithAttributes(attribute.String("file.path", s.path)),
	)
	defer span.End()

	data, err := s.readFile()
	if err != nil {
		return product.Document{}, s.fail(span, &PersistenceError{Op: OpRead, Path: s.path, Err: err})
	}

	doc, err := decodeDocument(data, s.defaultCategory)
	if err != nil {
		return product.Document{}, s.fail(span, &PersistenceError{Op: OpDecode, Path: s.path, Err: err})
	}

	span.SetAttributes(attribute.Int("products.count", len(doc.Products)))
	return doc, nil
}

// Load reads the document, falling back to a fresh empty one when the file
// is missing or unreadable. Failures are logged, never returned.
func (s *Store) Load(ctx context.Context) product.Document {
	lg := zctx.From(ctx)

	doc, err := s.Read(ctx)
	switch {
	case err == nil:
		lg.Info("Stock loaded",
			zap.String("path", s.path),
			zap.Int("products", len(doc.Products)),
		)
		return doc
	case errors.Is(err, fs.ErrNotExist):
		lg.Info("Stock file not found, starting empty", zap.String("path", s.path))
	default:
		lg.Error("Failed to load stock, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
	}
	return product.NewDocument(s.now())
}

// Save stamps doc.LastUpdated and replaces the file with the encoded
// document. On failure doc.LastUpdated is left unchanged and the previous
// file stays in place.
func (s *Store) Save(ctx context.Context, doc *product.Document) error {
	_, span := s.tracer.Start(ctx, "store.save",
		trace.WithAttributes(
			attribute.String("file.path", s.path),
			attribute.Int("products.count", len(doc.Products)),
		),
	)
	defer span.End()

	stamped := *doc
	stamped.LastUpdated = s.now()

	data := encodeDocument(&stamped)
	if s.compressed() {
		var err error
		if data, err = compress(data); err != nil {
			return s.fail(span, &PersistenceError{Op: OpEncode, Path: s.path, Err: err})
		}
	}

	if err := atomicwriter.WriteFile(s.path, data, filePerm); err != nil {
		return s.fail(span, &PersistenceError{Op: OpWrite, Path: s.path, Err: err})
	}

	doc.LastUpdated = stamped.LastUpdated
	zctx.From(ctx).Debug("Stock saved",
		zap.String("path", s.path),
		zap.Int("products", len(doc.Products)),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func (s *Store) compressed() bool {
	return strings.HasSuffix(s.path, gzipExt)
}

func (s *Store) readFile() ([]byte, error) {
	if !s.compressed() {
		return os.ReadFile(s.path)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	zr, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	defer func() { _ = zr.Close() }()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	return data, nil
}

func (s *Store) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := pgzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	return buf.Bytes(), nil
}
