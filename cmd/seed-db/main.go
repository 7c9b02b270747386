// Command seed-db loads a JSON seed file of products, variants, and coupons
// into the database and provisions the initial admin account. Existing rows
// are left untouched, so reruns are safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/dhakawear/storefront-api/internal/domain/user"
	"github.com/dhakawear/storefront-api/internal/repository"
)

type seedVariant struct {
	SKU   string          `json:"sku"`
	Size  string          `json:"size"`
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type seedProduct struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Variants    []seedVariant   `json:"variants"`
}

type seedCoupon struct {
	Code       string          `json:"code"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	MinAmount  decimal.Decimal `json:"minAmount"`
	ExpiryDate time.Time       `json:"expiryDate"`
	IsActive   bool            `json:"isActive"`
}

type seedFile struct {
	Products []seedProduct `json:"products"`
	Coupons  []seedCoupon  `json:"coupons"`
}

func main() {
	var (
		seedPath    string
		databaseURL string
		adminEmail  string
		adminName   string
	)
	flag.StringVar(&seedPath, "seed", "db/seed.json", "path to the JSON seed file")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminEmail, "admin-email", "", "email for the initial admin account")
	flag.StringVar(&adminName, "admin-name", "Admin", "display name for the initial admin account")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, seedPath, databaseURL, adminEmail, adminName); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed")
}

func run(ctx context.Context, seedPath, databaseURL, adminEmail, adminName string) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if seedPath != "" {
		if err := seedCatalog(ctx, pool, seedPath); err != nil {
			return err
		}
	}
	if adminEmail != "" {
		if err := seedAdmin(ctx, pool, adminEmail, adminName); err != nil {
			return err
		}
	}
	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read seed file %s", path)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return errors.Wrap(err, "parse seed file")
	}

	for _, p := range seed.Products {
		id := uuid.New().String()
		images, err := json.Marshal(p.Images)
		if err != nil {
			return errors.Wrap(err, "marshal images")
		}
		_, err = pool.Exec(ctx,
			`INSERT INTO products (id, name, slug, description, price, category, images)
				VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (slug) DO NOTHING`,
			id, p.Name, p.Slug, p.Description, p.Price, p.Category, images,
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %s", p.Slug)
		}
		for _, v := range p.Variants {
			_, err = pool.Exec(ctx,
				`INSERT INTO product_variants (sku, product_id, size, color, price, stock)
					SELECT $1, id, $3, $4, $5, $6 FROM products WHERE slug = $2
					ON CONFLICT (sku) DO NOTHING`,
				v.SKU, p.Slug, v.Size, v.Color, v.Price, v.Stock,
			)
			if err != nil {
				return errors.Wrapf(err, "insert variant %s", v.SKU)
			}
		}
	}
	slog.Info("products seeded", slog.Int("count", len(seed.Products)))

	for _, c := range seed.Coupons {
		_, err := pool.Exec(ctx,
			`INSERT INTO coupons (id, code, type, value, min_amount, expiry_date, is_active)
				VALUES ($1, UPPER($2), $3, $4, $5, $6, $7) ON CONFLICT (code) DO NOTHING`,
			uuid.New().String(), c.Code, c.Type, c.Value, c.MinAmount, c.ExpiryDate, c.IsActive,
		)
		if err != nil {
			return errors.Wrapf(err, "insert coupon %s", c.Code)
		}
	}
	slog.Info("coupons seeded", slog.Int("count", len(seed.Coupons)))
	return nil
}

// seedAdmin creates the initial admin account. The password comes from the
// SEED_ADMIN_PASSWORD environment variable so it never lands in shell history.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, name string) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if len(password) < 8 {
		return errors.New("SEED_ADMIN_PASSWORD must be set and at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	tag, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, email, phone, password, role)
			VALUES ($1, $2, LOWER($3), '', $4, $5) ON CONFLICT (email) DO NOTHING`,
		uuid.New().String(), name, email, string(hash), string(user.RoleSuperAdmin),
	)
	if err != nil {
		return errors.Wrap(err, "insert admin account")
	}
	if tag.RowsAffected() == 0 {
		slog.Info("admin account already exists", slog.String("email", email))
		return nil
	}
	slog.Info("admin account created", slog.String("email", email))
	return nil
}
