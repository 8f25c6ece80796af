package jsonfile

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
	"github.com/xenking/stock-keeper/internal/domain/product"
)

// Document and record keys of the on-disk format.
const (
	keyProducts    = "produtos"
	keyLastUpdated = "ultima_atualizacao"

	keyID           = "id"
	keyName         = "nome"
	keyPrice        = "preco"
	keyQuantity     = "quantidade"
	keyCategory     = "categoria"
	keyRegisteredAt = "data_cadastro"
)

// TimeLayout is the layout timestamps are written in. It carries no zone and
// is interpreted as local time on read.
const TimeLayout = "2006-01-02T15:04:05.000000"

func encodeDocument(doc *product.Document) []byte {
	e := &jx.Encoder{}
	e.SetIdent(2)

	e.ObjStart()
	e.FieldStart(keyProducts)
	e.ArrStart()
	for _, p := range doc.Products {
		encodeProduct(e, p)
	}
	e.ArrEnd()
	e.FieldStart(keyLastUpdated)
	e.Str(formatTime(doc.LastUpdated))
	e.ObjEnd()

	return e.Bytes()
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart(keyID)
	e.Int(p.ID)
	e.FieldStart(keyName)
	e.Str(p.Name)
	e.FieldStart(keyPrice)
	e.Num(jx.Num(p.Price.String()))
	e.FieldStart(keyQuantity)
	e.Int(p.Quantity)
	e.FieldStart(keyCategory)
	e.Str(p.Category)
	e.FieldStart(keyRegisteredAt)
	e.Str(formatTime(p.RegisteredAt))
	e.ObjEnd()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse time %q", s)
	}
	return t, nil
}

// decodeDocument parses a stock document. Unknown keys are skipped. Every
// record is validated; the first invalid one fails the whole document, as do
// two records whose names differ only in case.
func decodeDocument(data []byte, defaultCategory string) (product.Document, error) {
	doc := product.Document{Products: []product.Product{}}
	seenProducts := false
	names := make(map[string]int)

	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case keyProducts:
			if seenProducts {
				return errors.Errorf("duplicate %q", keyProducts)
			}
			seenProducts = true
			return d.Arr(func(d *jx.Decoder) error {
				i := len(doc.Products)
				p, err := decodeProduct(d, defaultCategory)
				if err != nil {
					return errors.Wrapf(err, "record %d", i)
				}
				k := catalog.NameKey(p.Name)
				if prev, ok := names[k]; ok {
					return errors.Errorf("record %d: name %q already used by record %d", i, p.Name, prev)
				}
				names[k] = i
				doc.Products = append(doc.Products, p)
				return nil
			})
		case keyLastUpdated:
			s, err := decodeOptionalStr(d)
			if err != nil {
				return errors.Wrap(err, keyLastUpdated)
			}
			t, err := parseTime(s)
			if err != nil {
				return errors.Wrap(err, keyLastUpdated)
			}
			doc.LastUpdated = t
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return product.Document{}, err
	}
	if d.Next() != jx.Invalid {
		return product.Document{}, errors.New("unexpected data after document")
	}

	if !seenProducts {
		return product.Document{}, errors.Errorf("missing %q", keyProducts)
	}
	return doc, nil
}

func decodeProduct(d *jx.Decoder, defaultCategory string) (product.Product, error) {
	var (
		p    product.Product
		seen = make(map[string]bool, 4)
	)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		k := string(key)
		var err error
		switch k {
		case keyID:
			p.ID, err = d.Int()
		case keyName:
			p.Name, err = d.Str()
		case keyPrice:
			p.Price, err = decodePrice(d)
		case keyQuantity:
			p.Quantity, err = d.Int()
		case keyCategory:
			p.Category, err = decodeOptionalStr(d)
		case keyRegisteredAt:
			var s string
			if s, err = decodeOptionalStr(d); err == nil {
				p.RegisteredAt, err = parseTime(s)
			}
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, k)
		}
		seen[k] = true
		return nil
	}); err != nil {
		return product.Product{}, err
	}

	for _, k := range []string{keyID, keyName, keyPrice, keyQuantity} {
		if !seen[k] {
			return product.Product{}, errors.Errorf("missing %q", k)
		}
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = defaultCategory
	}
	if err := validateProduct(p); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func validateProduct(p product.Product) error {
	switch {
	case p.ID <= 0:
		return errors.Errorf("invalid id %d", p.ID)
	case strings.TrimSpace(p.Name) == "":
		return errors.New("empty name")
	case p.Price.IsNegative():
		return errors.Errorf("negative price %s", p.Price)
	case p.Quantity < 0:
		return errors.Errorf("negative quantity %d", p.Quantity)
	default:
		return nil
	}
}

// decodePrice accepts a JSON number or a numeric string.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(string(n))
}

// decodeOptionalStr reads a string, treating null as empty.
func decodeOptionalStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}
