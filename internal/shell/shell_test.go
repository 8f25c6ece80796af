package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
	"github.com/xenking/stock-keeper/internal/domain/product"
)

func init() {
	color.NoColor = true
}

// --- Mock implementations ---

type mockRepo struct {
	doc        product.Document
	saved      []product.Document
	saveErr    error
	panicOnce  bool
	panicked   bool
	loadCalled int
}

func (m *mockRepo) Load(_ context.Context) product.Document {
	m.loadCalled++
	return m.doc.Clone()
}

func (m *mockRepo) Save(_ context.Context, doc *product.Document) error {
	if m.panicOnce && !m.panicked {
		m.panicked = true
		panic("disk on fire")
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	doc.LastUpdated = time.Now()
	m.saved = append(m.saved, doc.Clone())
	return nil
}

func (m *mockRepo) last(t *testing.T) product.Document {
	t.Helper()
	require.NotEmpty(t, m.saved, "nothing was saved")
	return m.saved[len(m.saved)-1]
}

// --- Helpers ---

func seeded(products ...product.Product) *catalog.Catalog {
	return catalog.New(product.Document{Products: products, LastUpdated: time.Now()})
}

func widget() product.Product {
	return product.Product{ID: 1, Name: "Widget", Price: decimal.RequireFromString("10"), Quantity: 5, Category: "Tools", RegisteredAt: time.Now()}
}

func run(t *testing.T, cat *catalog.Catalog, repo product.Repository, input string, opts ...Option) (string, error) {
	t.Helper()
	var out bytes.Buffer
	sh, err := New(cat, repo, strings.NewReader(input), &out, opts...)
	require.NoError(t, err)

	err = sh.Run(context.Background())
	return out.String(), err
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

// --- Tests ---

func TestShell_AddThenExit(t *testing.T) {
	cat := seeded()
	repo := &mockRepo{}

	out, err := run(t, cat, repo, lines("1", "Widget", "7,99", "5", "", "0"))
	require.NoError(t, err)

	assert.Contains(t, out, "Product 'Widget' added!")
	assert.Contains(t, out, "Price: R$ 7.99")
	assert.Contains(t, out, "Category: "+catalog.DefaultCategory)
	assert.Contains(t, out, "Thanks for using Stock Keeper!")

	require.Len(t, repo.saved, 1, "exit saves once")
	saved := repo.last(t)
	require.Len(t, saved.Products, 1)
	assert.Equal(t, "Widget", saved.Products[0].Name)
	assert.True(t, decimal.RequireFromString("7.99").Equal(saved.Products[0].Price))
	assert.False(t, cat.Dirty())
}

func TestShell_EndOfInputSaves(t *testing.T) {
	cat := seeded()
	repo := &mockRepo{}

	_, err := run(t, cat, repo, lines("1", "Gadget", "1.5", "2", "Parts"))
	require.NoError(t, err)

	saved := repo.last(t)
	require.Len(t, saved.Products, 1)
	assert.Equal(t, "Parts", saved.Products[0].Category)
}

func TestShell_EndOfInputMidCommand(t *testing.T) {
	cat := seeded(widget())
	repo := &mockRepo{}

	_, err := run(t, cat, repo, lines("4", "Widget", "99"))
	require.NoError(t, err)

	p, err := cat.Find("Widget")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10").Equal(p.Price), "half-entered update is not applied")
	assert.Len(t, repo.saved, 1)
}

func TestShell_InvalidMenuInput(t *testing.T) {
	out, err := run(t, seeded(), &mockRepo{}, lines("abc", "42", "-1", "", "0"))
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "Enter a valid number!"), "abc and the empty line")
	assert.Equal(t, 2, strings.Count(out, "Invalid option! Choose between 0 and 10."))
	assert.Equal(t, 5, strings.Count(out, "STOCK KEEPER - MAIN MENU"))
}

func TestShell_OversizedLineIsRejected(t *testing.T) {
	long := strings.Repeat("a", maxLineSize+10)

	t.Run("command prompt", func(t *testing.T) {
		cat := seeded(widget())
		repo := &mockRepo{}

		out, err := run(t, cat, repo, lines("1", long, "3", "widget", "0"))
		require.NoError(t, err)

		assert.Contains(t, out, "Error: input line too long")
		assert.Contains(t, out, "Product found:", "commands after the long line still run")
		assert.Contains(t, out, "Thanks for using Stock Keeper!")
		assert.Equal(t, 1, cat.Len())
		assert.Len(t, repo.saved, 1)
	})

	t.Run("menu prompt", func(t *testing.T) {
		out, err := run(t, seeded(), &mockRepo{}, lines(long, "2", "0"))
		require.NoError(t, err)

		assert.Equal(t, 1, strings.Count(out, "Enter a valid number!"))
		assert.Contains(t, out, "No products registered.")
		assert.Contains(t, out, "Thanks for using Stock Keeper!")
	})
}

func TestReadLines(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	input := "one\r\n" + strings.Repeat("x", maxLineSize) + "\n  two  \nlast"
	var got []inputLine
	for in := range readLines(strings.NewReader(input), done) {
		got = append(got, in)
	}

	require.Len(t, got, 4)
	assert.Equal(t, inputLine{text: "one"}, got[0])
	assert.ErrorIs(t, got[1].err, errLineTooLong)
	assert.Equal(t, inputLine{text: "  two  "}, got[2])
	assert.Equal(t, inputLine{text: "last"}, got[3], "final line without newline")
}

func TestShell_CommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "duplicate name", input: lines("1", "widget", "0"), want: `product "widget" already exists`},
		{name: "empty name", input: lines("1", "", "0"), want: "invalid name: must not be empty"},
		{name: "bad price", input: lines("1", "New", "abc", "0"), want: "invalid price"},
		{name: "negative quantity", input: lines("1", "New", "1", "-2", "0"), want: "invalid quantity: must not be negative"},
		{name: "find miss", input: lines("3", "Ghost", "0"), want: `product "Ghost" not found`},
		{name: "update miss", input: lines("4", "Ghost", "0"), want: `product "Ghost" not found`},
		{name: "remove miss", input: lines("5", "Ghost", "0"), want: `product "Ghost" not found`},
		{name: "sort not a number", input: lines("7", "x", "0"), want: "invalid sort criterion"},
		{name: "sort out of range", input: lines("7", "5", "0"), want: "invalid sort criterion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := seeded(widget())

			out, err := run(t, cat, &mockRepo{}, tt.input)
			require.NoError(t, err)

			assert.Contains(t, out, "Error: "+tt.want)
			assert.Equal(t, 1, cat.Len())
		})
	}
}

func TestShell_Find(t *testing.T) {
	out, err := run(t, seeded(widget()), &mockRepo{}, lines("3", "WIDGET", "0"))
	require.NoError(t, err)

	assert.Contains(t, out, "Product found:")
	assert.Contains(t, out, "Name: Widget")
	assert.Contains(t, out, "Price: R$ 10.00")
	assert.Contains(t, out, "Quantity: 5")
}

func TestShell_Update(t *testing.T) {
	t.Run("applies non-blank fields", func(t *testing.T) {
		cat := seeded(widget())

		out, err := run(t, cat, &mockRepo{}, lines("4", "widget", "3,25", "", "Hardware", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "Product 'Widget' updated!")

		p, err := cat.Find("Widget")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("3.25").Equal(p.Price))
		assert.Equal(t, 5, p.Quantity)
		assert.Equal(t, "Hardware", p.Category)
	})

	t.Run("invalid field changes nothing", func(t *testing.T) {
		cat := seeded(widget())

		out, err := run(t, cat, &mockRepo{}, lines("4", "Widget", "1", "-3", "Other", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "Error: invalid quantity")

		p, err := cat.Find("Widget")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("10").Equal(p.Price))
		assert.Equal(t, "Tools", p.Category)
	})
}

func TestShell_Remove(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		cat := seeded(widget())

		out, err := run(t, cat, &mockRepo{}, lines("5", "widget", "s", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "Product 'Widget' removed!")
		assert.Zero(t, cat.Len())
	})

	t.Run("declined", func(t *testing.T) {
		cat := seeded(widget())

		out, err := run(t, cat, &mockRepo{}, lines("5", "widget", "n", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "Operation cancelled.")
		assert.Equal(t, 1, cat.Len())
	})
}

func TestShell_List(t *testing.T) {
	products := []product.Product{
		widget(),
		{ID: 2, Name: "Café Torrado", Price: decimal.RequireFromString("12.5"), Quantity: 3, Category: "Drinks"},
	}

	t.Run("empty catalog", func(t *testing.T) {
		out, err := run(t, seeded(), &mockRepo{}, lines("2", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "No products registered.")
	})

	t.Run("all", func(t *testing.T) {
		out, err := run(t, seeded(products...), &mockRepo{}, lines("2", "1", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "Widget")
		assert.Contains(t, out, "Café Torrado")
		assert.Contains(t, out, "Products shown: 2")
		assert.NotContains(t, out, "Products in stock")
	})

	t.Run("by category", func(t *testing.T) {
		out, err := run(t, seeded(products...), &mockRepo{}, lines("2", "2", "1", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "1. Drinks")
		assert.Contains(t, out, "2. Tools")
		assert.Contains(t, out, "Filtering by category: Drinks")
		assert.Contains(t, out, "Products shown: 1")
		assert.Contains(t, out, "Products in stock: 2")
	})

	t.Run("invalid choice lists all", func(t *testing.T) {
		out, err := run(t, seeded(products...), &mockRepo{}, lines("2", "9", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "Invalid option! Listing all products.")
		assert.Contains(t, out, "Products shown: 2")
	})

	t.Run("invalid category lists all", func(t *testing.T) {
		out, err := run(t, seeded(products...), &mockRepo{}, lines("2", "2", "7", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "Invalid option! Listing all products.")
		assert.Contains(t, out, "Products shown: 2")
	})
}

func TestShell_SortThenList(t *testing.T) {
	cat := seeded(
		widget(),
		product.Product{ID: 2, Name: "Apple", Price: decimal.RequireFromString("1"), Quantity: 50, Category: "Food"},
	)

	out, err := run(t, cat, &mockRepo{}, lines("7", "1", "1", "0"))
	require.NoError(t, err)

	assert.Contains(t, out, "Products sorted by name (A-Z)")
	assert.Less(t, strings.Index(out, "Apple"), strings.LastIndex(out, "Widget"))
	assert.Equal(t, "Apple", cat.List()[0].Name)
}

func TestShell_Report(t *testing.T) {
	cat := seeded(
		widget(),
		product.Product{ID: 2, Name: "Bolt", Price: decimal.RequireFromString("0.10"), Quantity: 1200, Category: "Tools"},
	)

	out, err := run(t, cat, &mockRepo{}, lines("6", "0"))
	require.NoError(t, err)

	assert.Contains(t, out, "Products: 2")
	assert.Contains(t, out, "Items in stock: 1,205")
	assert.Contains(t, out, "Total stock value: R$ 170.00")
	assert.Contains(t, out, "Highest price: Widget - R$ 10.00")
	assert.Contains(t, out, "Lowest price: Bolt - R$ 0.10")
	assert.Contains(t, out, "Largest quantity: Bolt - 1,200 units")
	assert.Contains(t, out, "Low stock (< 10 units):")
	assert.Contains(t, out, "- Widget: 5 units")
}

func TestShell_Save(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &mockRepo{}
		out, err := run(t, seeded(widget()), repo, lines("8", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "Stock saved (1 products).")
		assert.Len(t, repo.saved, 2, "explicit save plus exit")
	})

	t.Run("failure keeps catalog dirty", func(t *testing.T) {
		cat := seeded()
		repo := &mockRepo{saveErr: errors.New("read-only file system")}

		out, err := run(t, cat, repo, lines("1", "A", "1", "1", "", "8", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "read-only file system")
		assert.True(t, cat.Dirty())
		assert.Equal(t, 1, cat.Len())
	})
}

func TestShell_Reload(t *testing.T) {
	onDisk := product.Document{Products: []product.Product{
		{ID: 1, Name: "Stored", Price: decimal.RequireFromString("2"), Quantity: 2, Category: "X"},
	}}

	t.Run("discard changes", func(t *testing.T) {
		cat := seeded(widget())
		repo := &mockRepo{doc: onDisk}

		out, err := run(t, cat, repo, lines("9", "n", "0"))
		require.NoError(t, err)

		assert.Contains(t, out, "Changes will be discarded!")
		assert.Equal(t, 1, repo.loadCalled)
		assert.Equal(t, "Stored", cat.List()[0].Name)
		assert.Len(t, repo.saved, 1, "only the exit save")
	})

	t.Run("save first", func(t *testing.T) {
		cat := seeded(widget())
		repo := &mockRepo{doc: onDisk}

		out, err := run(t, cat, repo, lines("9", "sim", "0"))
		require.NoError(t, err)

		assert.Contains(t, out, "Changes saved!")
		assert.Equal(t, "Widget", repo.saved[0].Products[0].Name)
		assert.Equal(t, 1, repo.loadCalled)
	})

	t.Run("save fails but reload continues", func(t *testing.T) {
		cat := seeded(widget())
		repo := &mockRepo{doc: onDisk, saveErr: errors.New("boom")}

		out, err := run(t, cat, repo, lines("9", "y", "0"))
		require.NoError(t, err)

		assert.Contains(t, out, "Reloading anyway...")
		assert.Equal(t, 1, repo.loadCalled)
		assert.Equal(t, "Stored", cat.List()[0].Name)
	})

	t.Run("unrecognized answer cancels", func(t *testing.T) {
		cat := seeded(widget())
		repo := &mockRepo{doc: onDisk}

		out, err := run(t, cat, repo, lines("9", "maybe", "0"))
		require.NoError(t, err)

		assert.Contains(t, out, "Operation cancelled.")
		assert.Zero(t, repo.loadCalled)
		assert.Equal(t, "Widget", cat.List()[0].Name)
	})
}

func TestShell_Clear(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantLen int
	}{
		{name: "confirmed", input: lines("10", "y", "clear", "0"), want: "Stock cleared! 1 products removed.", wantLen: 0},
		{name: "declined", input: lines("10", "n", "0"), want: "Operation cancelled.", wantLen: 1},
		{name: "wrong word", input: lines("10", "yes", "ZERAR", "0"), want: "Incorrect confirmation. Operation cancelled.", wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := seeded(widget())

			out, err := run(t, cat, &mockRepo{}, tt.input)
			require.NoError(t, err)

			assert.Contains(t, out, tt.want)
			assert.Equal(t, tt.wantLen, cat.Len())
		})
	}

	t.Run("already empty", func(t *testing.T) {
		out, err := run(t, seeded(), &mockRepo{}, lines("10", "0"))
		require.NoError(t, err)
		assert.Contains(t, out, "The stock is already empty!")
	})
}

func TestShell_Interrupt(t *testing.T) {
	cat := seeded(widget())
	repo := &mockRepo{}
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	var out bytes.Buffer
	sh, err := New(cat, repo, pr, &out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- sh.Run(ctx) }()

	_, err = pw.Write([]byte("4\nWidget\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	p, err := cat.Find("Widget")
	require.NoError(t, err)
	assert.Equal(t, widget().Quantity, p.Quantity)
	assert.Empty(t, repo.saved, "interrupt leaves saving to the caller")
}

func TestShell_RecoversFromPanic(t *testing.T) {
	cat := seeded(widget())
	repo := &mockRepo{panicOnce: true}

	out, err := run(t, cat, repo, lines("8", "3", "Widget", "0"))
	require.NoError(t, err)

	assert.Contains(t, out, "Unexpected error: disk on fire")
	assert.Contains(t, out, "Product found:", "loop continues after a panic")
	assert.Len(t, repo.saved, 1)
}

func TestShell_Telemetry(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	_, err := run(t, seeded(), &mockRepo{}, lines("1", "Widget", "1", "1", "", "3", "Ghost", "0"),
		WithMeterProvider(mp),
		WithTracerProvider(tp),
	)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var gauge int64 = -1
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if m.Name != "stock.commands" {
					continue
				}
				for _, dp := range data.DataPoints {
					cmd, _ := dp.Attributes.Value("command")
					outcome, _ := dp.Attributes.Value("outcome")
					counts[cmd.AsString()+"/"+outcome.AsString()] += dp.Value
				}
			case metricdata.Gauge[int64]:
				if m.Name == "stock.products" && len(data.DataPoints) > 0 {
					gauge = data.DataPoints[0].Value
				}
			}
		}
	}
	assert.Equal(t, map[string]int64{
		"add/ok":         1,
		"find/not_found": 1,
		"exit/ok":        1,
	}, counts)
	assert.Equal(t, int64(1), gauge)

	ended := spans.Ended()
	require.Len(t, ended, 3)
	for _, s := range ended {
		assert.Equal(t, "shell.command", s.Name())
	}
}
