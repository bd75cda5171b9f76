package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds service configuration loaded from environment variables. All
// four services share the struct; each binary reads the fields it needs.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Version     string `envconfig:"VERSION" default:"dev"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`

	// Token signing. The key id travels in the token header so the key can
	// be swapped without breaking verification of newly issued tokens.
	TokenSigningKey string        `envconfig:"TOKEN_SIGNING_KEY" required:"true"`
	TokenKeyID      string        `envconfig:"TOKEN_KEY_ID" default:"v1"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	TokenPrefix     string        `envconfig:"TOKEN_PREFIX" default:"Bearer "`

	// Base URLs of the peer services, e.g. "http://identity:8080".
	IdentityServiceURL string `envconfig:"IDENTITY_SERVICE_URL" default:"http://localhost:8081"`
	ProjectServiceURL  string `envconfig:"PROJECT_SERVICE_URL" default:"http://localhost:8082"`
	TaskServiceURL     string `envconfig:"TASK_SERVICE_URL" default:"http://localhost:8083"`

	// Per-hop timeout for cross-service calls. There is deliberately no
	// request-level deadline aggregation; each hop times out on its own.
	RPCTimeout time.Duration `envconfig:"RPC_TIMEOUT" default:"5s"`

	// AdminLeadsAnyProject controls whether a global ADMIN passes the
	// per-project leadership check without holding a project-scoped role
	// row. The upstream behavior was inconsistent between call sites, so
	// the policy is an explicit switch here.
	AdminLeadsAnyProject bool `envconfig:"ADMIN_LEADS_ANY_PROJECT" default:"true"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
