package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/gocarina/gocsv"
	"github.com/moby/sys/atomicwriter"

	"github.com/xenking/stock-keeper/internal/domain/product"
	"github.com/xenking/stock-keeper/internal/storage/jsonfile"
)

// csvProduct is one exported row.
type csvProduct struct {
	ID           int    `csv:"id"`
	Name         string `csv:"name"`
	Price        string `csv:"price"`
	Quantity     int    `csv:"quantity"`
	Value        string `csv:"value"`
	Category     string `csv:"category"`
	RegisteredAt string `csv:"registered_at"`
}

func main() {
	var (
		stockFile  string
		outputFile string
	)

	flag.StringVar(&stockFile, "file", "", "stock document to export (or STOCK_FILE env, default estoque.json)")
	flag.StringVar(&outputFile, "out", "", "CSV output path (default stdout)")
	flag.Parse()

	if stockFile == "" {
		stockFile = os.Getenv("STOCK_FILE")
	}
	if stockFile == "" {
		stockFile = "estoque.json"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, stockFile, outputFile); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, stockFile, outputFile string) error {
	// Render first so a failed read leaves an existing output file alone.
	var buf bytes.Buffer
	n, err := export(ctx, jsonfile.New(stockFile), &buf)
	if err != nil {
		return err
	}

	if outputFile == "" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return errors.Wrap(err, "write output")
		}
	} else if err := atomicwriter.WriteFile(outputFile, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write output")
	}

	slog.Info("export completed", slog.String("file", stockFile), slog.Int("products", n))
	return nil
}

// export writes every product of the stored document to w as CSV and
// returns the number of rows written.
func export(ctx context.Context, store *jsonfile.Store, w io.Writer) (int, error) {
	doc, err := store.Read(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "read stock")
	}

	rows := make([]csvProduct, 0, len(doc.Products))
	for _, p := range doc.Products {
		rows = append(rows, toRow(p))
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return 0, errors.Wrap(err, "write csv")
	}
	return len(rows), nil
}

func toRow(p product.Product) csvProduct {
	row := csvProduct{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.StringFixed(2),
		Quantity: p.Quantity,
		Value:    p.Value().StringFixed(2),
		Category: p.Category,
	}
	if !p.RegisteredAt.IsZero() {
		row.RegisteredAt = p.RegisteredAt.Format(time.RFC3339)
	}
	return row
}
