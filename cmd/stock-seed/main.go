package main

import (
	"context"
	"flag"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/gocarina/gocsv"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
	"github.com/xenking/stock-keeper/internal/domain/product"
	"github.com/xenking/stock-keeper/internal/storage/jsonfile"
)

// seedRow is one input row. Numeric columns are kept as text so that bad
// rows can be reported and skipped instead of failing the whole file.
type seedRow struct {
	Name     string `csv:"name"`
	Price    string `csv:"price"`
	Quantity string `csv:"quantity"`
	Category string `csv:"category"`
}

func main() {
	var (
		stockFile    string
		csvFile      string
		monotonicIDs bool
	)

	flag.StringVar(&stockFile, "file", "", "stock document to seed (or STOCK_FILE env, default estoque.json)")
	flag.StringVar(&csvFile, "csv", "", "CSV with name,price,quantity,category columns")
	flag.BoolVar(&monotonicIDs, "monotonic-ids", false, "never reuse product ids after removals")
	flag.Parse()

	if stockFile == "" {
		stockFile = os.Getenv("STOCK_FILE")
	}
	if stockFile == "" {
		stockFile = "estoque.json"
	}
	if csvFile == "" {
		slog.Error("CSV file is required: set --csv")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, stockFile, csvFile, monotonicIDs); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, stockFile, csvFile string, monotonicIDs bool) error {
	f, err := os.Open(csvFile)
	if err != nil {
		return errors.Wrap(err, "open csv")
	}
	defer func() { _ = f.Close() }()

	added, skipped, err := seed(ctx, jsonfile.New(stockFile), f, catalog.WithMonotonicIDs(monotonicIDs))
	if err != nil {
		return err
	}

	slog.Info("seed completed",
		slog.String("file", stockFile),
		slog.Int("added", added),
		slog.Int("skipped", skipped),
	)
	return nil
}

// seed adds every valid row of r to the stored catalog and saves it. A
// missing document starts empty; an unreadable one aborts without writing.
func seed(ctx context.Context, store *jsonfile.Store, r io.Reader, opts ...catalog.Option) (added, skipped int, err error) {
	doc, err := store.Read(ctx)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		doc = product.NewDocument(time.Now())
	default:
		return 0, 0, errors.Wrap(err, "read stock")
	}

	var rows []seedRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, 0, errors.Wrap(err, "parse csv")
	}

	cat := catalog.New(doc, opts...)
	for i, row := range rows {
		p, err := addRow(cat, row)
		if err != nil {
			skipped++
			slog.Warn("skipping row", slog.Int("row", i+2), slog.String("name", row.Name), slog.String("error", err.Error()))
			continue
		}
		added++
		slog.Info("added product", slog.Int("id", p.ID), slog.String("name", p.Name))
	}

	if added == 0 {
		return 0, skipped, nil
	}
	if err := cat.Save(ctx, store); err != nil {
		return 0, skipped, errors.Wrap(err, "save stock")
	}
	return added, skipped, nil
}

func addRow(cat *catalog.Catalog, row seedRow) (product.Product, error) {
	qty, err := catalog.ParseQuantity(row.Quantity)
	if err != nil {
		return product.Product{}, err
	}
	return cat.Add(catalog.AddRequest{
		Name:     row.Name,
		Price:    row.Price,
		Quantity: qty,
		Category: row.Category,
	})
}
