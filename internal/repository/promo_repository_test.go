package repository

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"savra-store/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// Just the tables these tests touch
	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS promo_codes (
			id UUID PRIMARY KEY,
			code VARCHAR(64) NOT NULL UNIQUE,
			discount INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			usage_count INTEGER NOT NULL DEFAULT 0,
			max_usage INTEGER,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS carts (
			user_id UUID PRIMARY KEY,
			promo_code VARCHAR(64),
			promo_discount BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS cart_items (
			user_id UUID NOT NULL,
			product_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			price BIGINT NOT NULL,
			image VARCHAR(512),
			quantity INTEGER NOT NULL,
			size VARCHAR(16) NOT NULL DEFAULT '',
			order_type VARCHAR(20) NOT NULL DEFAULT 'catalog',
			added_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, product_id, size)
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func seedPromoRow(t *testing.T, repo PromoRepository, code string, maxUsage *int) *domain.PromoCode {
	t.Helper()

	promo := &domain.PromoCode{
		ID:        uuid.New(),
		Code:      code,
		Discount:  10,
		IsActive:  true,
		MaxUsage:  maxUsage,
		CreatedAt: time.Now(),
	}
	if err := repo.Create(context.Background(), promo); err != nil {
		t.Fatalf("failed to seed promo code: %v", err)
	}
	return promo
}

func TestPromoCodeIsStoredCanonically(t *testing.T) {
	repo := NewPromoRepository(testDB)
	ctx := context.Background()
	defer testDB.Exec("DELETE FROM promo_codes")

	seedPromoRow(t, repo, "  savra10 ", nil)

	// Any casing of the code resolves to the same row
	for _, lookup := range []string{"SAVRA10", "savra10", " Savra10 "} {
		promo, err := repo.FindByCode(ctx, lookup)
		if err != nil {
			t.Fatalf("lookup %q failed: %v", lookup, err)
		}
		if promo.Code != "SAVRA10" {
			t.Errorf("expected canonical code SAVRA10, got %q", promo.Code)
		}
	}

	// A differently-cased duplicate is still a duplicate
	duplicate := &domain.PromoCode{ID: uuid.New(), Code: "Savra10", Discount: 20, IsActive: true, CreatedAt: time.Now()}
	if err := repo.Create(ctx, duplicate); err != ErrPromoCodeAlreadyExists {
		t.Errorf("expected ErrPromoCodeAlreadyExists, got %v", err)
	}
}

func TestIncrementUsageStopsAtCap(t *testing.T) {
	repo := NewPromoRepository(testDB)
	ctx := context.Background()
	defer testDB.Exec("DELETE FROM promo_codes")

	maxUsage := 3
	seedPromoRow(t, repo, "CAPPED3", &maxUsage)

	for i := 0; i < maxUsage; i++ {
		if err := repo.IncrementUsage(ctx, "CAPPED3"); err != nil {
			t.Fatalf("increment %d failed: %v", i+1, err)
		}
	}

	if err := repo.IncrementUsage(ctx, "CAPPED3"); err != ErrPromoCodeExhausted {
		t.Errorf("expected ErrPromoCodeExhausted, got %v", err)
	}

	promo, err := repo.FindByCode(ctx, "CAPPED3")
	if err != nil {
		t.Fatalf("failed to re-read promo: %v", err)
	}
	if promo.UsageCount != maxUsage {
		t.Errorf("expected usage_count %d, got %d", maxUsage, promo.UsageCount)
	}
}

func TestIncrementUsageUnknownCode(t *testing.T) {
	repo := NewPromoRepository(testDB)

	if err := repo.IncrementUsage(context.Background(), "NOSUCHCODE"); err != ErrPromoCodeNotFound {
		t.Errorf("expected ErrPromoCodeNotFound, got %v", err)
	}
}

// Feature: storefront, Property 16: the usage counter never moves past the cap
func TestProperty_UsageCounterNeverExceedsCap(t *testing.T) {
	repo := NewPromoRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("N+k increments of a cap-N code leave usage_count at N", prop.ForAll(
		func(capN int, extra int) bool {
			defer testDB.Exec("DELETE FROM promo_codes")

			maxUsage := capN
			seedPromoRow(t, repo, "PROPCAP", &maxUsage)

			for i := 0; i < capN+extra; i++ {
				_ = repo.IncrementUsage(ctx, "PROPCAP")
			}

			promo, err := repo.FindByCode(ctx, "PROPCAP")
			if err != nil {
				t.Logf("FAIL: could not re-read promo: %v", err)
				return false
			}
			if promo.UsageCount != capN {
				t.Logf("FAIL: expected usage_count %d, got %d", capN, promo.UsageCount)
				return false
			}
			return true
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
