// Package shell implements the interactive stock menu.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
	"github.com/xenking/stock-keeper/internal/domain/product"
)

const tracerName = "github.com/xenking/stock-keeper/internal/shell"

// ErrInterrupted is returned by Run when its context is cancelled while
// waiting for input. The catalog is left as it was before the interrupted
// command.
var ErrInterrupted = errors.New("interrupted")

// errExit ends the loop after the exit command.
var errExit = errors.New("exit")

// errLineTooLong reports an input line longer than maxLineSize. The line is
// discarded and reading continues with the next one.
var errLineTooLong = errors.New("input line too long")

const maxLineSize = 1 << 20

// Option configures a Shell.
type Option func(*Shell)

// WithMeterProvider sets the provider for command metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Shell) {
		if mp != nil {
			s.meterProvider = mp
		}
	}
}

// WithTracerProvider sets the provider for command spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Shell) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// Shell drives a Catalog from line-oriented input.
type Shell struct {
	cat  *catalog.Catalog
	repo product.Repository
	in   io.Reader
	out  io.Writer

	lines <-chan inputLine

	meterProvider metric.MeterProvider
	tracer        trace.Tracer
	metrics       *metrics
}

// New creates a Shell reading commands from in and writing to out. Saves and
// reloads go through repo.
func New(cat *catalog.Catalog, repo product.Repository, in io.Reader, out io.Writer, opts ...Option) (*Shell, error) {
	s := &Shell{
		cat:           cat,
		repo:          repo,
		in:            in,
		out:           out,
		meterProvider: metricnoop.NewMeterProvider(),
		tracer:        tracenoop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	m, err := newMetrics(s.meterProvider)
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}
	s.metrics = m
	return s, nil
}

// Run shows the menu and executes commands until exit, end of input or
// context cancellation. Exit and end of input save the catalog first.
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.lines = readLines(s.in, done)

	for {
		s.printMenu()

		choice, err := s.prompt(ctx, "Choose an option: ")
		if errors.Is(err, errLineTooLong) {
			s.failure("Enter a valid number!")
			continue
		}
		if err != nil {
			return s.stop(ctx, err)
		}

		n, err := strconv.Atoi(choice)
		if err != nil {
			s.failure("Enter a valid number!")
			continue
		}
		cmd, ok := commandFor(n)
		if !ok {
			s.failure("Invalid option! Choose between 0 and 10.")
			continue
		}

		if err := s.execute(ctx, cmd); err != nil {
			return s.stop(ctx, err)
		}
	}
}

// stop turns the error that ended the loop into the Run result.
func (s *Shell) stop(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, errExit):
		return nil
	case errors.Is(err, io.EOF):
		s.println()
		s.exit(ctx)
		return nil
	case errors.Is(err, ErrInterrupted):
		s.println()
		s.println("Operation cancelled by user. Goodbye!")
		return ErrInterrupted
	default:
		return err
	}
}

// execute runs one command inside its own span, recovering from panics.
// Only loop-ending errors are returned; command failures are reported to the
// user.
func (s *Shell) execute(ctx context.Context, cmd command) (err error) {
	ctx, span := s.tracer.Start(ctx, "shell.command",
		trace.WithAttributes(attribute.String("command.name", cmd.name)),
	)
	start := time.Now()
	outcome := outcomeOK

	defer func() {
		if rec := recover(); rec != nil {
			zctx.From(ctx).Error("panic recovered",
				zap.String("command", cmd.name),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			s.failure(fmt.Sprintf("Unexpected error: %v", rec))
			span.SetStatus(codes.Error, "panic")
			outcome = outcomePanic
			err = nil
		}
		s.metrics.record(ctx, cmd.name, outcome, time.Since(start), s.cat.Len())
		span.SetAttributes(attribute.String("command.outcome", outcome))
		span.End()
	}()

	cmdErr := cmd.run(s, ctx)
	if cmdErr == nil {
		return nil
	}
	if errors.Is(cmdErr, errExit) || errors.Is(cmdErr, io.EOF) || errors.Is(cmdErr, ErrInterrupted) {
		outcome = outcomeCancelled
		if errors.Is(cmdErr, errExit) {
			outcome = outcomeOK
		}
		return cmdErr
	}

	outcome = classify(cmdErr)
	if outcome == outcomeFailed {
		span.RecordError(cmdErr)
		span.SetStatus(codes.Error, cmdErr.Error())
		zctx.From(ctx).Warn("Command failed", zap.String("command", cmd.name), zap.Error(cmdErr))
	}
	s.showError(cmdErr)
	return nil
}

func classify(err error) string {
	var (
		validation *catalog.ValidationError
		duplicate  *catalog.DuplicateError
		notFound   *catalog.NotFoundError
		cancelled  *catalog.CancelledError
	)
	switch {
	case errors.As(err, &validation), errors.Is(err, errLineTooLong):
		return outcomeInvalid
	case errors.As(err, &duplicate):
		return outcomeDuplicate
	case errors.As(err, &notFound):
		return outcomeNotFound
	case errors.As(err, &cancelled):
		return outcomeCancelled
	default:
		return outcomeFailed
	}
}

// showError prints a command error as a single line.
func (s *Shell) showError(err error) {
	var cancelled *catalog.CancelledError
	switch {
	case errors.As(err, &cancelled) && cancelled.Step == catalog.StepClearWord:
		s.failure("Incorrect confirmation. Operation cancelled.")
	case errors.As(err, &cancelled):
		s.failure("Operation cancelled.")
	default:
		s.failure("Error: " + err.Error())
	}
}

// prompt writes label and waits for the next input line.
func (s *Shell) prompt(ctx context.Context, label string) (string, error) {
	s.print(label)
	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case in, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		if in.err != nil {
			zctx.From(ctx).Warn("Input line rejected", zap.Error(in.err))
			return "", in.err
		}
		return strings.TrimSpace(in.text), nil
	}
}

type inputLine struct {
	text string
	err  error
}

// readLines feeds lines from r to the returned channel until r is exhausted
// or done is closed. Over-long lines are sent as errLineTooLong; any other
// read error is sent once and ends the stream.
func readLines(r io.Reader, done <-chan struct{}) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		br := bufio.NewReaderSize(r, maxLineSize)
		for {
			text, err := readLine(br)
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case lines <- inputLine{text: text, err: err}:
			case <-done:
				return
			}
			if err != nil && !errors.Is(err, errLineTooLong) {
				return
			}
		}
	}()
	return lines
}

// readLine returns the next line without its line ending. A final line
// without a newline is returned as is; io.EOF means no more lines.
func readLine(br *bufio.Reader) (string, error) {
	buf, err := br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = br.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", errLineTooLong
	}
	if errors.Is(err, io.EOF) && len(buf) > 0 {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(buf), "\r\n"), nil
}
