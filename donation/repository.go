package donation

import (
    "context"
    "database/sql"
    _ "embed"
    "errors"
    "fmt"
    "sort"
    "sync"

    "github.com/alovak/pix-donations/donation/models"
    "github.com/jackc/pgconn"
    "github.com/lib/pq"
)

var (
    ErrNotFound = fmt.Errorf("not found")
    ErrConflict = fmt.Errorf("conflict")
)

//go:embed schema.sql
var schemaSQL string

// Repository stores donation pages. Generated payloads are never stored.
type Repository struct {
    mu    sync.RWMutex
    pages map[string]*models.Page
    db    *sql.DB
}

func NewRepository() *Repository {
    return &Repository{
        pages: make(map[string]*models.Page),
    }
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
    return &Repository{db: db}
}

// EnsureSchema creates the pages table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
    if r.db == nil {
        return nil
    }
    if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
        return fmt.Errorf("applying schema: %w", err)
    }
    return nil
}

func (r *Repository) CreatePage(ctx context.Context, page *models.Page) error {
    if r.db == nil {
        r.mu.Lock()
        defer r.mu.Unlock()
        if _, ok := r.pages[page.Slug]; ok {
            return fmt.Errorf("slug %s exists: %w", page.Slug, ErrConflict)
        }
        cp := *page
        r.pages[page.Slug] = &cp
        return nil
    }
    err := r.db.QueryRowContext(ctx, `
        INSERT INTO donation.pages(page_id, slug, pix_key, beneficiary_name, beneficiary_city)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at
    `, page.ID, page.Slug, page.PixKey, page.BeneficiaryName, page.BeneficiaryCity).Scan(&page.CreatedAt)
    if isUniqueViolation(err) {
        return fmt.Errorf("slug %s exists: %w", page.Slug, ErrConflict)
    }
    return err
}

func (r *Repository) GetPage(ctx context.Context, slug string) (*models.Page, error) {
    if r.db == nil {
        r.mu.RLock()
        defer r.mu.RUnlock()
        page, ok := r.pages[slug]
        if !ok {
            return nil, ErrNotFound
        }
        cp := *page
        return &cp, nil
    }
    row := r.db.QueryRowContext(ctx, `
        SELECT page_id, slug, pix_key, beneficiary_name, beneficiary_city, created_at
          FROM donation.pages WHERE slug=$1
    `, slug)
    var p models.Page
    if err := row.Scan(&p.ID, &p.Slug, &p.PixKey, &p.BeneficiaryName, &p.BeneficiaryCity, &p.CreatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &p, nil
}

// ListPages returns all pages ordered by slug.
func (r *Repository) ListPages(ctx context.Context) ([]*models.Page, error) {
    if r.db == nil {
        r.mu.RLock()
        defer r.mu.RUnlock()
        out := make([]*models.Page, 0, len(r.pages))
        for _, p := range r.pages {
            cp := *p
            out = append(out, &cp)
        }
        sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
        return out, nil
    }
    rows, err := r.db.QueryContext(ctx, `
        SELECT page_id, slug, pix_key, beneficiary_name, beneficiary_city, created_at
          FROM donation.pages ORDER BY slug
    `)
    if err != nil { return nil, err }
    defer rows.Close()
    out := make([]*models.Page, 0)
    for rows.Next() {
        var p models.Page
        if err := rows.Scan(&p.ID, &p.Slug, &p.PixKey, &p.BeneficiaryName, &p.BeneficiaryCity, &p.CreatedAt); err != nil { return nil, err }
        out = append(out, &p)
    }
    return out, rows.Err()
}

// Ping returns DB readiness
func (r *Repository) Ping(ctx context.Context) error {
    if r.db == nil { return nil }
    return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
    if r.db == nil { return nil }
    return r.db.Close()
}

func isUniqueViolation(err error) bool {
    var pe *pq.Error
    if errors.As(err, &pe) && pe.Code == "23505" { return true }
    var pgerr *pgconn.PgError
    if errors.As(err, &pgerr) && pgerr.Code == "23505" { return true }
    return false
}
