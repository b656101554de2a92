package donation

import (
    "context"
    "fmt"
    "time"

    "github.com/sethvargo/go-envconfig"

    "github.com/alovak/pix-donations/internal/expiry"
    "github.com/alovak/pix-donations/internal/qrimage"
)

// Config is a configuration for the donation application
type Config struct {
    HTTPAddr string `env:"HTTP_ADDR, default=localhost:9090"`
    // RepoBackend selects page storage: "mem" or "pg".
    RepoBackend string `env:"REPO_BACKEND, default=mem"`
    DBDSN       string `env:"DB_DSN"`
    // CodeTTL is how long a generated code is displayed before it counts as expired.
    CodeTTL time.Duration `env:"CODE_TTL, default=10m"`
    // ExpiryTZ is an IANA timezone name for issue/expiry timestamps (e.g., "America/Sao_Paulo").
    ExpiryTZ string `env:"EXPIRY_TZ"`
    QRSize   int    `env:"QR_SIZE, default=256"`

    // DefaultPage is created on start when Slug and PixKey are set.
    DefaultPage PageSeed `env:", prefix=DEFAULT_PAGE_"`

    Telemetry TelemetryConfig `env:", prefix=OTEL_"`
}

type PageSeed struct {
    Slug   string `env:"SLUG"`
    PixKey string `env:"PIX_KEY"`
    Name   string `env:"NAME"`
    City   string `env:"CITY"`
}

type TelemetryConfig struct {
    CollectorAddr string `env:"COLLECTOR_ADDR"`
    Service       string `env:"SERVICE, default=donation"`
    Environment   string `env:"ENVIRONMENT, default=dev"`
}

func DefaultConfig() *Config {
    return &Config{
        HTTPAddr:    "localhost:9090",
        RepoBackend: "mem",
        CodeTTL:     expiry.DefaultTTL,
        QRSize:      qrimage.DefaultSize,
        Telemetry: TelemetryConfig{
            Service:     "donation",
            Environment: "dev",
        },
    }
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig(ctx context.Context) (*Config, error) {
    return LoadConfigFrom(ctx, envconfig.OsLookuper())
}

// LoadConfigFrom reads the configuration from l.
func LoadConfigFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
    var c Config
    if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &c, Lookuper: l}); err != nil {
        return nil, fmt.Errorf("processing env: %w", err)
    }
    switch c.RepoBackend {
    case "mem", "pg":
    default:
        return nil, fmt.Errorf("unsupported REPO_BACKEND=%s", c.RepoBackend)
    }
    if c.RepoBackend == "pg" && c.DBDSN == "" {
        return nil, fmt.Errorf("DB_DSN is required for pg backend")
    }
    return &c, nil
}
