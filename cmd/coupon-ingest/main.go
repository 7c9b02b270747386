// Command coupon-ingest bulk-loads campaign code exports into the coupons
// table. Each input is a gzipped text file with one code per line, typically
// tens of millions of lines from a marketing tool, so the importer streams
// with parallel gzip decompression and deduplicates with a bloom filter
// instead of holding the code set in memory.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dhakawear/storefront-api/internal/domain/coupon"
	"github.com/dhakawear/storefront-api/internal/repository"
)

const (
	bloomCapacity = 100_000_000
	bloomFPR      = 0.001
	minCodeLen    = 4
	maxCodeLen    = 16
	batchSize     = 1000
	progressEvery = 1_000_000
)

func main() {
	var (
		databaseURL string
		couponType  string
		value       string
		minAmount   string
		expiresIn   time.Duration
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&couponType, "type", "percentage", "discount type for ingested codes (percentage or fixed)")
	flag.StringVar(&value, "value", "10", "discount value for ingested codes")
	flag.StringVar(&minAmount, "min-amount", "0", "minimum order subtotal for ingested codes")
	flag.DurationVar(&expiresIn, "expires-in", 90*24*time.Hour, "validity period for ingested codes")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no input files: pass one or more gzipped code files")
		os.Exit(1)
	}
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if !coupon.Type(couponType).Valid() {
		slog.Error("unsupported coupon type", slog.String("type", couponType))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files, ingestRule{
		couponType: coupon.Type(couponType),
		value:      decimal.RequireFromString(value),
		minAmount:  decimal.RequireFromString(minAmount),
		expiry:     time.Now().Add(expiresIn),
	}); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("coupon ingest completed")
}

type ingestRule struct {
	couponType coupon.Type
	value      decimal.Decimal
	minAmount  decimal.Decimal
	expiry     time.Time
}

func run(ctx context.Context, databaseURL string, files []string, rule ingestRule) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	codes := make(chan string, 4*batchSize)

	g, ctx := errgroup.WithContext(ctx)

	// Readers: one per file, each with its own parallel gzip reader.
	readers, ctx := errgroup.WithContext(ctx)
	for _, path := range files {
		readers.Go(streamFile(ctx, path, codes))
	}
	g.Go(func() error {
		defer close(codes)
		return readers.Wait()
	})

	// Single writer: dedupe with a bloom filter, insert in batches. A bloom
	// false positive only skips a code, and ON CONFLICT makes the insert
	// idempotent anyway.
	g.Go(func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		batch := make([]string, 0, batchSize)
		var total uint64

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := insertBatch(ctx, pool, batch, rule); err != nil {
				return err
			}
			batch = batch[:0]
			return nil
		}

		for code := range codes {
			if seen.TestOrAddString(code) {
				continue
			}
			batch = append(batch, code)
			total++
			if total%progressEvery == 0 {
				slog.Info("ingest progress", slog.Uint64("codes", total))
			}
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})

	return g.Wait()
}

func streamFile(ctx context.Context, path string, codes chan<- string) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "gzip reader for %s", path)
		}
		defer gz.Close()

		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 64*1024), 64*1024)
		for scanner.Scan() {
			code := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if len(code) < minCodeLen || len(code) > maxCodeLen {
				continue
			}
			select {
			case codes <- code:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return errors.Wrapf(scanner.Err(), "scan %s", path)
	}
}

func insertBatch(ctx context.Context, pool *pgxpool.Pool, codes []string, rule ingestRule) error {
	b := &pgx.Batch{}
	for _, code := range codes {
		b.Queue(
			`INSERT INTO coupons (id, code, type, value, min_amount, expiry_date, is_active)
				VALUES ($1, $2, $3, $4, $5, $6, TRUE) ON CONFLICT (code) DO NOTHING`,
			uuid.New().String(), code, string(rule.couponType), rule.value, rule.minAmount, rule.expiry,
		)
	}
	return pool.SendBatch(ctx, b).Close()
}
