package donation

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/codes"

    "github.com/alovak/pix-donations/donation/models"
    "github.com/alovak/pix-donations/internal/beneficiary"
    "github.com/alovak/pix-donations/internal/brcode"
    "github.com/alovak/pix-donations/internal/expiry"
    "github.com/alovak/pix-donations/internal/qrimage"
    "github.com/alovak/pix-donations/internal/telemetry"
)

type Service struct {
    repo *Repository
    cfg  *Config
    now  func() time.Time
}

func NewService(repo *Repository, cfg *Config) *Service {
    if cfg == nil {
        cfg = DefaultConfig()
    }
    return &Service{
        repo: repo,
        cfg:  cfg,
        now:  time.Now,
    }
}

func (s *Service) CreatePage(ctx context.Context, req models.CreatePage) (*models.Page, error) {
    slug := strings.ToLower(strings.TrimSpace(req.Slug))
    if !validSlug(slug) {
        return nil, fmt.Errorf("slug must be 1..64 of [a-z0-9-]: %w", models.ErrInvalidPage)
    }
    key := strings.TrimSpace(req.PixKey)
    if key == "" {
        return nil, fmt.Errorf("pix_key is required: %w", models.ErrInvalidPage)
    }
    profile := beneficiary.Profile(req.BeneficiaryName, req.BeneficiaryCity)
    if profile.Name == "" || profile.City == "" {
        return nil, fmt.Errorf("beneficiary name and city are required: %w", models.ErrInvalidPage)
    }
    // Reject keys the payload cannot carry before the page goes live.
    if _, err := brcode.Encode(key, profile); err != nil {
        return nil, fmt.Errorf("%w: %w", models.ErrInvalidPage, err)
    }

    page := &models.Page{
        ID:              uuid.New().String(),
        Slug:            slug,
        PixKey:          key,
        BeneficiaryName: profile.Name,
        BeneficiaryCity: profile.City,
        CreatedAt:       s.now().In(expiry.Location()),
    }
    if err := s.repo.CreatePage(ctx, page); err != nil {
        return nil, fmt.Errorf("creating page: %w", err)
    }
    return page, nil
}

func (s *Service) GetPage(ctx context.Context, slug string) (*models.Page, error) {
    page, err := s.repo.GetPage(ctx, strings.ToLower(slug))
    if err != nil {
        return nil, fmt.Errorf("finding page: %w", err)
    }
    return page, nil
}

func (s *Service) ListPages(ctx context.Context) ([]*models.Page, error) {
    pages, err := s.repo.ListPages(ctx)
    if err != nil {
        return nil, fmt.Errorf("listing pages: %w", err)
    }
    return pages, nil
}

// IssueCharge encodes a fresh payload for the page and stamps its display window.
func (s *Service) IssueCharge(ctx context.Context, slug string) (*models.Charge, error) {
    ctx, span := telemetry.Global().T().Start(ctx, "donation.IssueCharge")
    defer span.End()
    span.SetAttributes(attribute.String("page.slug", slug))

    page, err := s.GetPage(ctx, slug)
    if err != nil {
        span.SetStatus(codes.Error, err.Error())
        return nil, err
    }
    payload, err := encodePage(page)
    if err != nil {
        span.SetStatus(codes.Error, err.Error())
        return nil, err
    }

    ttl := expiry.NormalizeTTL(s.cfg.CodeTTL)
    issued := s.now().In(expiry.Location())
    return &models.Charge{
        ID:         uuid.New().String(),
        PageSlug:   page.Slug,
        Payload:    payload,
        CopyText:   page.PixKey,
        IssuedAt:   issued,
        ExpiresAt:  expiry.ExpiresAt(issued, ttl),
        TTLSeconds: int(ttl / time.Second),
        Countdown:  expiry.Countdown(ttl),
    }, nil
}

// RenderQR returns the page's payload drawn as a PNG QR code.
func (s *Service) RenderQR(ctx context.Context, slug string, size int) ([]byte, error) {
    ctx, span := telemetry.Global().T().Start(ctx, "donation.RenderQR")
    defer span.End()

    page, err := s.GetPage(ctx, slug)
    if err != nil {
        return nil, err
    }
    payload, err := encodePage(page)
    if err != nil {
        return nil, err
    }
    if size <= 0 {
        size = s.cfg.QRSize
    }
    png, err := qrimage.PNG(payload, size)
    if err != nil {
        return nil, fmt.Errorf("rendering qr: %w", err)
    }
    return png, nil
}

// ValidatePayload checks the checksum of any payload and decodes its fields.
// A payload is reported valid only when the checksum matches and every field
// follows the tag-length-value grammar.
func (s *Service) ValidatePayload(payload string) models.Validation {
    _, claimed := brcode.Split(payload)
    v := models.Validation{Claimed: claimed}

    err := brcode.Validate(payload)
    var ce *brcode.InvalidChecksumError
    switch {
    case err == nil:
        v.Valid = true
        v.Expected = claimed
    case errors.As(err, &ce):
        v.Expected = ce.Expected
        v.Error = err.Error()
    default:
        v.Error = err.Error()
        return v
    }

    fields, err := brcode.Parse(payload)
    if err != nil {
        v.Valid = false
        if v.Error == "" {
            v.Error = err.Error()
        }
        return v
    }
    v.Fields = fieldViews(fields)
    return v
}

func encodePage(page *models.Page) (string, error) {
    payload, err := brcode.Encode(page.PixKey, brcode.Profile{Name: page.BeneficiaryName, City: page.BeneficiaryCity})
    if err != nil {
        return "", fmt.Errorf("encoding payload for %s: %w", page.Slug, err)
    }
    return payload, nil
}

func fieldViews(fields []brcode.Field) []models.FieldView {
    out := make([]models.FieldView, 0, len(fields))
    for _, f := range fields {
        out = append(out, models.FieldView{
            Tag:      f.Tag,
            Length:   len(f.Value),
            Value:    f.Value,
            Children: fieldViews(f.Children),
        })
    }
    return out
}

func validSlug(s string) bool {
    if s == "" || len(s) > 64 {
        return false
    }
    for i := 0; i < len(s); i++ {
        c := s[i]
        if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
            return false
        }
    }
    return true
}
