package contacts

import (
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/viper"
)

type ServerCfg struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type AuthCfg struct {
	SigningKey         string        `mapstructure:"signing_key"`
	SigningMethod      string        `mapstructure:"signing_method"`
	ContextKey         string        `mapstructure:"context_key"`
	AccessTokenTTL     time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `mapstructure:"refresh_token_ttl"`
	VerificationKey    string        `mapstructure:"verification_key"`
	VerificationMaxAge time.Duration `mapstructure:"verification_max_age"`
	TokenLookup        string        `mapstructure:"token_lookup"`
	AuthScheme         string        `mapstructure:"auth_scheme"`
	Issuer             string        `mapstructure:"issuer"`
	Audience           []string      `mapstructure:"audience"`
}

type DatabaseCfg struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type RateLimitCfg struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

type MailerCfg struct {
	Driver     string `mapstructure:"driver"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Sender     string `mapstructure:"sender"`
	SenderName string `mapstructure:"sender_name"`
	ConfirmURL string `mapstructure:"confirm_url"`
}

type StorageCfg struct {
	Driver    string `mapstructure:"driver"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	KeyPrefix string `mapstructure:"key_prefix"`
	PublicURL string `mapstructure:"public_url"`
}

// AppConfig is the root configuration document. It satisfies the Config
// interface consumed by the identity core.
type AppConfig struct {
	Server    ServerCfg    `mapstructure:"server"`
	Auth      AuthCfg      `mapstructure:"auth"`
	Database  DatabaseCfg  `mapstructure:"database"`
	Redis     RedisCfg     `mapstructure:"redis"`
	RateLimit RateLimitCfg `mapstructure:"rate_limit"`
	Mailer    MailerCfg    `mapstructure:"mailer"`
	Storage   StorageCfg   `mapstructure:"storage"`
}

var _ Config = (*AppConfig)(nil)

// LoadConfig reads the configuration file at path, if any, layers environment
// variables on top (CONTACTS_AUTH_SIGNING_KEY and friends), and applies
// defaults for everything the file omits.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()

	setConfigDefaults(v)

	v.SetEnvPrefix("CONTACTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to read configuration file")
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("auth.signing_method", "HS256")
	v.SetDefault("auth.context_key", "user")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 720*time.Hour)
	v.SetDefault("auth.verification_max_age", time.Hour)
	v.SetDefault("auth.token_lookup", "header:Authorization")
	v.SetDefault("auth.auth_scheme", "Bearer")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:contacts.db?cache=shared&_pragma=foreign_keys(1)")

	v.SetDefault("redis.prefix", "contacts")

	v.SetDefault("rate_limit.max", 5)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("mailer.driver", "noop")
	v.SetDefault("storage.driver", "noop")
}

// Validate rejects configurations that cannot possibly serve requests.
func (c *AppConfig) Validate() error {
	if c.Auth.SigningKey == "" {
		return goerrors.New("auth.signing_key is required", goerrors.CategoryBadInput)
	}
	if c.Auth.VerificationKey == "" {
		return goerrors.New("auth.verification_key is required", goerrors.CategoryBadInput)
	}
	if c.Auth.SigningKey == c.Auth.VerificationKey {
		return goerrors.New("auth.verification_key must differ from auth.signing_key", goerrors.CategoryBadInput)
	}
	return nil
}

func (c *AppConfig) GetSigningKey() string                { return c.Auth.SigningKey }
func (c *AppConfig) GetSigningMethod() string             { return c.Auth.SigningMethod }
func (c *AppConfig) GetContextKey() string                { return c.Auth.ContextKey }
func (c *AppConfig) GetAccessTokenTTL() time.Duration     { return c.Auth.AccessTokenTTL }
func (c *AppConfig) GetRefreshTokenTTL() time.Duration    { return c.Auth.RefreshTokenTTL }
func (c *AppConfig) GetVerificationKey() string           { return c.Auth.VerificationKey }
func (c *AppConfig) GetVerificationMaxAge() time.Duration { return c.Auth.VerificationMaxAge }
func (c *AppConfig) GetTokenLookup() string               { return c.Auth.TokenLookup }
func (c *AppConfig) GetAuthScheme() string                { return c.Auth.AuthScheme }
func (c *AppConfig) GetIssuer() string                    { return c.Auth.Issuer }
func (c *AppConfig) GetAudience() []string                { return c.Auth.Audience }
