package donation_test

import (
    "context"
    "database/sql"
    "os"
    "testing"

    "github.com/alovak/pix-donations/donation"
    "github.com/alovak/pix-donations/donation/models"
    "github.com/alovak/pix-donations/internal/brcode"
    "github.com/google/uuid"
    _ "github.com/lib/pq"
    "github.com/stretchr/testify/require"
)

// TestPGRepository_PageRoundTrip stores a page in postgres and issues a charge from it.
// Skips unless DB_DSN is provided and REPO_BACKEND=pg.
func TestPGRepository_PageRoundTrip(t *testing.T) {
    if os.Getenv("REPO_BACKEND") != "pg" {
        t.Skip("REPO_BACKEND != pg; skipping DB integration test")
    }
    dsn := os.Getenv("DB_DSN")
    if dsn == "" {
        t.Skip("DB_DSN not set; skipping DB integration test")
    }

    db, err := sql.Open("postgres", dsn)
    if err != nil { t.Fatalf("open db: %v", err) }
    defer db.Close()
    if err := db.Ping(); err != nil { t.Fatalf("ping db: %v", err) }

    ctx := context.Background()
    repo := donation.NewPGRepository(db)
    require.NoError(t, repo.EnsureSchema(ctx))
    svc := donation.NewService(repo, donation.DefaultConfig())

    slug := "it-" + uuid.NewString()[:8]
    page, err := svc.CreatePage(ctx, models.CreatePage{Slug: slug, PixKey: testKey, BeneficiaryName: "Delhey", BeneficiaryCity: "Sao Paulo"})
    require.NoError(t, err)
    require.False(t, page.CreatedAt.IsZero())
    t.Cleanup(func() { db.Exec(`delete from donation.pages where slug=$1`, slug) })

    _, err = svc.CreatePage(ctx, models.CreatePage{Slug: slug, PixKey: testKey, BeneficiaryName: "X", BeneficiaryCity: "Y"})
    require.ErrorIs(t, err, donation.ErrConflict)

    charge, err := svc.IssueCharge(ctx, slug)
    require.NoError(t, err)
    require.True(t, brcode.IsValid(charge.Payload))

    var stored int
    require.NoError(t, db.QueryRow(`select count(*) from donation.pages where slug=$1`, slug).Scan(&stored))
    require.Equal(t, 1, stored)
}
