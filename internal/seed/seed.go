// Package seed loads demo users, products and customers from a YAML file.
//
// Files are checked twice: the raw document against an embedded CUE schema
// (shape, enums, ranges), then each record by the record package validators
// as the store writes it.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/store"
)

//go:embed schema.cue
var schemaCUE string

// DemoData is the built-in demo file used when no path is given.
//
//go:embed demo.yaml
var DemoData []byte

// ErrSchema is returned when a file does not match the seed schema.
var ErrSchema = errors.New("seed file does not match schema")

// File is a decoded seed document.
type File struct {
	Users     []User     `yaml:"users"`
	Products  []Product  `yaml:"products"`
	Customers []Customer `yaml:"customers"`
}

type User struct {
	ID       string      `yaml:"id"`
	Username string      `yaml:"username"`
	Password string      `yaml:"password"`
	Role     record.Role `yaml:"role"`
}

type Product struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	SKU            string          `yaml:"sku"`
	Category       string          `yaml:"category"`
	Price          decimal.Decimal `yaml:"price"`
	WholesalePrice decimal.Decimal `yaml:"wholesale_price"`
	Profit         decimal.Decimal `yaml:"profit"` // derived when omitted
	Quantity       int64           `yaml:"quantity"`
	Description    string          `yaml:"description"`
	Image          string          `yaml:"image"`
}

type Customer struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse validates data against the schema and decodes it.
func Parse(data []byte) (*File, error) {
	if err := checkSchema(data); err != nil {
		return nil, err
	}

	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// checkSchema unifies the raw document with #Seed and requires a concrete,
// conflict-free result. #Seed is closed, so unknown keys fail here too.
func checkSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("seed.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile seed schema: %w", err)
	}

	v := ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode seed file: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Seed")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrSchema, cueerrors.Details(err, nil))
	}
	return nil
}

// Target is the write side of the store that seeding needs.
type Target interface {
	AddUser(ctx context.Context, u record.User) error
	AddProduct(ctx context.Context, p record.Product) error
	AddCustomer(ctx context.Context, c record.Customer) error
}

// Result counts what Apply did per collection.
type Result struct {
	Users     Count `json:"users"`
	Products  Count `json:"products"`
	Customers Count `json:"customers"`
}

type Count struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Apply writes every record in f through t. Records whose id or unique key
// already exists are skipped, so applying the same file twice is harmless.
// Any other error stops the run; records written before it stay written.
func Apply(ctx context.Context, t Target, f *File) (Result, error) {
	var res Result

	for _, u := range f.Users {
		id := u.ID
		if id == "" {
			id = store.NewID(store.PrefixUser)
		}
		err := t.AddUser(ctx, record.User{ID: id, Username: u.Username, Password: u.Password, Role: u.Role})
		if err := tally(&res.Users, "user", u.Username, err); err != nil {
			return res, err
		}
	}

	for _, p := range f.Products {
		id := p.ID
		if id == "" {
			id = store.NewID(store.PrefixProduct)
		}
		err := t.AddProduct(ctx, record.Product{
			ID:             id,
			Name:           p.Name,
			SKU:            p.SKU,
			Category:       p.Category,
			Price:          p.Price,
			WholesalePrice: p.WholesalePrice,
			Profit:         p.Profit,
			Quantity:       p.Quantity,
			Description:    p.Description,
			Image:          p.Image,
		})
		if err := tally(&res.Products, "product", p.SKU, err); err != nil {
			return res, err
		}
	}

	for _, c := range f.Customers {
		id := c.ID
		if id == "" {
			id = store.NewID(store.PrefixCustomer)
		}
		err := t.AddCustomer(ctx, record.Customer{
			ID:      id,
			Name:    c.Name,
			Phone:   c.Phone,
			Email:   c.Email,
			Address: c.Address,
		})
		if err := tally(&res.Customers, "customer", c.Phone, err); err != nil {
			return res, err
		}
	}

	slog.Info("seed applied",
		"users_added", res.Users.Added,
		"products_added", res.Products.Added,
		"customers_added", res.Customers.Added,
		"skipped", res.Users.Skipped+res.Products.Skipped+res.Customers.Skipped,
	)
	return res, nil
}

func tally(c *Count, kind, key string, err error) error {
	switch {
	case err == nil:
		c.Added++
		return nil
	case store.IsUniqueViolation(err):
		c.Skipped++
		slog.Debug("seed record exists, skipping", "kind", kind, "key", key)
		return nil
	default:
		return fmt.Errorf("seed %s %q: %w", kind, key, err)
	}
}
