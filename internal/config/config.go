package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "time"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets are read once at start-up and treated as
// read-only afterwards, so the struct is safe to share between requests.
type Config struct {
    Env             string // application environment (e.g. "development", "production")
    Port            string // HTTP port to listen on
    DBUser          string // database username
    DBPass          string // database password (optional)
    DBHost          string // database host address
    DBPort          string // database port number
    DBName          string // database name
    JWTSecret       string // secret used to sign login tokens
    AccessTTLMin    int    // login token time‑to‑live in minutes
    BcryptCost      int    // bcrypt cost for password hashing
    TrustProxy      bool   // read the client address from X-Forwarded-For
    MigrationsAuto  bool   // apply pending migrations on start-up
    Stream          StreamConfig
}

// StreamConfig carries the settings for signing playback grants.
type StreamConfig struct {
    AccountID  string        // customer code used to build the edge host name
    KeyID      string        // id of the signing key registered with the edge
    PrivateKey string        // RSA private key, PEM or base64 encoded PEM
    GrantTTL   time.Duration // lifetime of a playback grant
}

// Load reads an optional .env file and then the environment.  Required
// variables are enforced by must() and missing values cause the program
// to exit with a fatal log message.
func Load() Config {
    if err := godotenv.Load(".env"); err != nil {
        log.Println("no .env file found, using environment variables")
    }
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 24*60),
        BcryptCost:     envInt("BCRYPT_COST", 10),
        TrustProxy:     envBool("TRUST_PROXY", false),
        MigrationsAuto: envBool("MIGRATIONS_AUTO", true),
        Stream: StreamConfig{
            AccountID:  must("CLOUDFLARE_ACCOUNT_ID"),
            KeyID:      must("CLOUDFLARE_STREAM_KEY_ID"),
            PrivateKey: must("CLOUDFLARE_STREAM_PRIVATE_KEY"),
            GrantTTL:   envDur("STREAM_GRANT_TTL", time.Hour),
        },
    }
}

// AccessTTL returns the login token lifetime as a duration.
func (c Config) AccessTTL() time.Duration {
    return time.Duration(c.AccessTTLMin) * time.Minute
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
