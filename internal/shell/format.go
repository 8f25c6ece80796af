package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
	"github.com/xenking/stock-keeper/internal/domain/product"
)

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	titleColor   = color.New(color.Bold)

	numbers = message.NewPrinter(language.English)
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

func (s *Shell) print(a ...any) {
	_, _ = fmt.Fprint(s.out, a...)
}

func (s *Shell) println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Shell) success(msg string) {
	_, _ = successColor.Fprintln(s.out, msg)
}

func (s *Shell) failure(msg string) {
	_, _ = failureColor.Fprintln(s.out, msg)
}

func (s *Shell) warn(msg string) {
	_, _ = warnColor.Fprintln(s.out, msg)
}

func (s *Shell) heading(title string) {
	s.println()
	_, _ = titleColor.Fprintln(s.out, title)
	s.println(strings.Repeat("-", max(20, runewidth.StringWidth(title))))
}

func (s *Shell) printMenu() {
	s.println()
	s.println(strings.Repeat("=", 50))
	_, _ = titleColor.Fprintln(s.out, "STOCK KEEPER - MAIN MENU")
	s.println(strings.Repeat("=", 50))
	for _, c := range commands {
		s.printf("%d. %s\n", c.number, c.label)
	}
	s.println(strings.Repeat("-", 50))
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

func date(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}

// cell pads s with spaces to w terminal columns.
func cell(s string, w int) string {
	return runewidth.FillRight(s, w)
}

func (s *Shell) writeTable(products []product.Product) {
	s.printf("%s %s %s %s %s %s\n",
		cell("ID", 4), cell("Name", 20), cell("Price", 13), cell("Qty", 6), cell("Category", 15), "Registered")
	s.println(strings.Repeat("-", 80))
	for _, p := range products {
		s.printf("%s %s %s %s %s %s\n",
			cell(fmt.Sprint(p.ID), 4),
			cell(p.Name, 20),
			cell(money(p.Price), 13),
			cell(fmt.Sprint(p.Quantity), 6),
			cell(p.Category, 15),
			date(p.RegisteredAt, dateLayout),
		)
	}
}

func (s *Shell) writeDetails(p product.Product) {
	s.printf("   ID: %d\n", p.ID)
	s.printf("   Name: %s\n", p.Name)
	s.printf("   Price: %s\n", money(p.Price))
	s.printf("   Quantity: %d\n", p.Quantity)
	s.printf("   Category: %s\n", p.Category)
	s.printf("   Registered: %s\n", date(p.RegisteredAt, dateLayout))
}

func (s *Shell) writeReport(r catalog.Summary) {
	if r.Empty() {
		s.println("No products registered.")
		return
	}

	s.println("General statistics:")
	s.println("   Products: " + numbers.Sprintf("%d", r.Count))
	s.println("   Items in stock: " + numbers.Sprintf("%d", r.TotalQuantity))
	s.println("   Total stock value: " + money(r.TotalValue))

	s.println()
	s.println("Highlights:")
	s.printf("   Highest price: %s - %s\n", r.MostExpensive.Name, money(r.MostExpensive.Price))
	s.printf("   Lowest price: %s - %s\n", r.Cheapest.Name, money(r.Cheapest.Price))
	s.printf("   Largest quantity: %s - %s units\n", r.MostStocked.Name, numbers.Sprintf("%d", r.MostStocked.Quantity))

	s.println()
	if len(r.LowStock) == 0 {
		s.success(fmt.Sprintf("Every product has adequate stock (>= %d units)", r.Threshold))
	} else {
		s.warn(fmt.Sprintf("Low stock (< %d units):", r.Threshold))
		for _, p := range r.LowStock {
			s.printf("   - %s: %d units\n", p.Name, p.Quantity)
		}
	}

	s.println()
	s.printf("Last updated: %s\n", date(r.LastUpdated, dateTimeLayout))
}
