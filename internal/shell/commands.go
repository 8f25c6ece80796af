package shell

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
)

type command struct {
	number int
	name   string
	label  string
	run    func(s *Shell, ctx context.Context) error
}

var commands = []command{
	{number: 1, name: "add", label: "Add product", run: (*Shell).add},
	{number: 2, name: "list", label: "List products", run: (*Shell).list},
	{number: 3, name: "find", label: "Find product", run: (*Shell).find},
	{number: 4, name: "update", label: "Update product", run: (*Shell).update},
	{number: 5, name: "remove", label: "Remove product", run: (*Shell).remove},
	{number: 6, name: "report", label: "Stock report", run: (*Shell).report},
	{number: 7, name: "sort", label: "Sort products", run: (*Shell).sort},
	{number: 8, name: "save", label: "Save stock", run: (*Shell).save},
	{number: 9, name: "reload", label: "Reload stock", run: (*Shell).reload},
	{number: 10, name: "clear", label: "Clear stock", run: (*Shell).clear},
	{number: 0, name: "exit", label: "Exit", run: (*Shell).exitCommand},
}

func commandFor(n int) (command, bool) {
	for _, c := range commands {
		if c.number == n {
			return c, true
		}
	}
	return command{}, false
}

func (s *Shell) add(ctx context.Context) error {
	s.heading("ADD PRODUCT")

	name, err := s.prompt(ctx, "Product name: ")
	if err != nil {
		return err
	}
	if name == "" {
		return &catalog.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if _, err := s.cat.Find(name); err == nil {
		return &catalog.DuplicateError{Name: name}
	}

	price, err := s.prompt(ctx, "Unit price (e.g. 7,99): ")
	if err != nil {
		return err
	}
	if _, err := catalog.ParsePrice(price); err != nil {
		return err
	}

	qtyText, err := s.prompt(ctx, "Quantity in stock: ")
	if err != nil {
		return err
	}
	qty, err := catalog.ParseQuantity(qtyText)
	if err != nil {
		return err
	}

	category, err := s.prompt(ctx, "Category (optional): ")
	if err != nil {
		return err
	}

	p, err := s.cat.Add(catalog.AddRequest{Name: name, Price: price, Quantity: qty, Category: category})
	if err != nil {
		return err
	}

	zctx.From(ctx).Debug("Product added", zap.Int("id", p.ID), zap.String("name", p.Name))
	s.success(fmt.Sprintf("Product '%s' added!", p.Name))
	s.printf("   Price: %s\n", money(p.Price))
	s.printf("   Quantity: %d\n", p.Quantity)
	s.printf("   Category: %s\n", p.Category)
	return nil
}

func (s *Shell) list(ctx context.Context) error {
	s.heading("PRODUCT LIST")

	if s.cat.Len() == 0 {
		s.println("No products registered.")
		return nil
	}

	s.println("1. List all products")
	s.println("2. Filter by category")
	choice, err := s.prompt(ctx, "Choose an option (1-2): ")
	if err != nil {
		return err
	}

	products := s.cat.List()
	switch choice {
	case "1":
	case "2":
		categories := s.cat.Categories()
		s.println()
		s.println("Available categories:")
		for i, c := range categories {
			s.printf("%d. %s\n", i+1, c)
		}

		pick, err := s.prompt(ctx, "Choose a category (number): ")
		if err != nil {
			return err
		}
		n, convErr := strconv.Atoi(pick)
		if convErr != nil || n < 1 || n > len(categories) {
			s.failure("Invalid option! Listing all products.")
			break
		}
		products = s.cat.ListByCategory(categories[n-1])
		s.println()
		s.printf("Filtering by category: %s\n", categories[n-1])
	default:
		s.failure("Invalid option! Listing all products.")
	}

	if len(products) == 0 {
		s.println("No products match the selected criteria.")
		return nil
	}

	s.println()
	s.writeTable(products)
	s.println()
	s.printf("Products shown: %d\n", len(products))
	if len(products) != s.cat.Len() {
		s.printf("Products in stock: %d\n", s.cat.Len())
	}
	return nil
}

func (s *Shell) find(ctx context.Context) error {
	s.heading("FIND PRODUCT")

	name, err := s.prompt(ctx, "Product name: ")
	if err != nil {
		return err
	}
	p, err := s.cat.Find(name)
	if err != nil {
		return err
	}

	s.println()
	s.success("Product found:")
	s.writeDetails(p)
	return nil
}

func (s *Shell) update(ctx context.Context) error {
	s.heading("UPDATE PRODUCT")

	name, err := s.prompt(ctx, "Name of the product to update: ")
	if err != nil {
		return err
	}
	p, err := s.cat.Find(name)
	if err != nil {
		return err
	}

	s.println()
	s.printf("Product found: %s\n", p.Name)
	s.println("Leave blank to keep the current value.")

	req := catalog.UpdateRequest{Name: p.Name}
	if req.Price, err = s.prompt(ctx, fmt.Sprintf("New price (current: %s): ", money(p.Price))); err != nil {
		return err
	}
	if req.Quantity, err = s.prompt(ctx, fmt.Sprintf("New quantity (current: %d): ", p.Quantity)); err != nil {
		return err
	}
	if req.Category, err = s.prompt(ctx, fmt.Sprintf("New category (current: %s): ", p.Category)); err != nil {
		return err
	}

	updated, err := s.cat.Update(req)
	if err != nil {
		return err
	}
	s.success(fmt.Sprintf("Product '%s' updated!", updated.Name))
	return nil
}

func (s *Shell) remove(ctx context.Context) error {
	s.heading("REMOVE PRODUCT")

	name, err := s.prompt(ctx, "Name of the product to remove: ")
	if err != nil {
		return err
	}
	p, err := s.cat.Find(name)
	if err != nil {
		return err
	}

	answer, err := s.prompt(ctx, fmt.Sprintf("Are you sure you want to remove '%s'? (y/n): ", p.Name))
	if err != nil {
		return err
	}
	removed, err := s.cat.Remove(p.Name, answer)
	if err != nil {
		return err
	}
	s.success(fmt.Sprintf("Product '%s' removed!", removed.Name))
	return nil
}

func (s *Shell) report(context.Context) error {
	s.heading("STOCK REPORT")
	s.writeReport(s.cat.Report())
	return nil
}

func (s *Shell) sort(ctx context.Context) error {
	s.heading("SORT PRODUCTS")
	for n := catalog.SortByName; n <= catalog.SortByCategory; n++ {
		s.printf("%d. By %s\n", n, n)
	}

	choice, err := s.prompt(ctx, "Choose the sort criterion (1-4): ")
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(choice)
	if convErr != nil {
		return &catalog.ValidationError{Field: "sort criterion", Reason: "must be a number"}
	}
	criterion, err := catalog.ParseSortCriterion(n)
	if err != nil {
		return err
	}
	if err := s.cat.Sort(criterion); err != nil {
		return err
	}

	s.success(fmt.Sprintf("Products sorted by %s", criterion))
	return s.list(ctx)
}

func (s *Shell) save(ctx context.Context) error {
	if err := s.cat.Save(ctx, s.repo); err != nil {
		return err
	}
	s.success(fmt.Sprintf("Stock saved (%d products).", s.cat.Len()))
	return nil
}

func (s *Shell) reload(ctx context.Context) error {
	s.println()
	s.warn("WARNING: reloading discards every unsaved change!")

	answer, err := s.prompt(ctx, "Save changes before reloading? (y/n): ")
	if err != nil {
		return err
	}
	switch {
	case catalog.IsAffirmative(answer):
		if err := s.cat.Save(ctx, s.repo); err != nil {
			zctx.From(ctx).Warn("Save before reload failed", zap.Error(err))
			s.failure("Error saving: " + err.Error() + ". Reloading anyway...")
		} else {
			s.success("Changes saved!")
		}
	case catalog.IsNegative(answer):
		s.warn("Changes will be discarded!")
	default:
		return &catalog.CancelledError{Step: catalog.StepConfirm}
	}

	s.cat.Reload(ctx, s.repo)
	s.success(fmt.Sprintf("Stock reloaded (%d products).", s.cat.Len()))
	return nil
}

func (s *Shell) clear(ctx context.Context) error {
	s.heading("CLEAR STOCK")

	total := s.cat.Len()
	if total == 0 {
		s.println("The stock is already empty!")
		return nil
	}

	s.warn(fmt.Sprintf("WARNING: this removes ALL %d products from the stock!", total))
	s.println("This cannot be undone!")

	answer, err := s.prompt(ctx, "Are you sure you want to clear the stock? (y/n): ")
	if err != nil {
		return err
	}
	var word string
	if catalog.IsAffirmative(answer) {
		s.println()
		s.warn(fmt.Sprintf("LAST CONFIRMATION: type '%s' to remove %d products:", s.cat.ClearWord(), total))
		if word, err = s.prompt(ctx, fmt.Sprintf("Type '%s' to confirm: ", s.cat.ClearWord())); err != nil {
			return err
		}
	}

	removed, err := s.cat.Clear(answer, word)
	if err != nil {
		return err
	}
	s.success(fmt.Sprintf("Stock cleared! %d products removed.", removed))
	return nil
}

func (s *Shell) exitCommand(ctx context.Context) error {
	s.exit(ctx)
	return errExit
}

// exit saves the catalog and says goodbye. A failed save is reported and
// the catalog stays dirty for the caller to retry.
func (s *Shell) exit(ctx context.Context) {
	s.println()
	s.println("Saving stock before exit...")
	if err := s.cat.Save(ctx, s.repo); err != nil {
		zctx.From(ctx).Error("Save on exit failed", zap.Error(err))
		s.failure("Error: " + err.Error())
	} else {
		s.success(fmt.Sprintf("Stock saved (%d products).", s.cat.Len()))
	}
	s.println("Thanks for using Stock Keeper!")
}
