package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Runtime environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Success marker backends.
const (
	MarkerBackendSQLite = "sqlite"
	MarkerBackendRedis  = "redis"
	MarkerBackendMemory = "memory"
)

// Navigation policies at the edges of the displayed artwork list.
const (
	NavigationStop = "stop"
	NavigationWrap = "wrap"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Catalog  CatalogConfig     `yaml:"catalog"`
	Static   StaticConfig      `yaml:"static"`
	Gallery  GalleryConfig     `yaml:"gallery"`
	Contact  ContactConfig     `yaml:"contact"`
	Email    EmailConfig       `yaml:"email"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Markers  MarkersConfig     `yaml:"markers"`
	Sessions SessionsConfig    `yaml:"sessions"`
	Events   EventsConfig      `yaml:"events"`
	Effects  EffectsConfig     `yaml:"effects"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.App, &c.Catalog, &c.Gallery, &c.Contact, &c.Email,
		&c.SQLite, &c.Markers, &c.Sessions, &c.Events, &c.Effects, &c.Auth,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	Env            string     `yaml:"env"`
	LogLevel       slog.Level `yaml:"log_level"`
	HTTP           HTTPConfig `yaml:"http"`
	AllowedOrigins []string   `yaml:"allowed_origins"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Env == "" {
		c.Env = EnvProduction
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Env, validation.In(EnvDevelopment, EnvProduction)),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return c.HTTP.Validate()
}

// Development reports whether raw error details may be exposed to clients.
func (c *ApplicationConfig) Development() bool {
	return c.Env == EnvDevelopment
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CatalogConfig locates the artwork and workshop fixtures.
type CatalogConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// StaticConfig holds the directory served under /static. Empty disables it.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// GalleryConfig controls the gallery grid and the artwork viewer.
type GalleryConfig struct {
	PreviewCount    int    `yaml:"preview_count"`
	Navigation      string `yaml:"navigation"`
	PrefetchBaseURL string `yaml:"prefetch_base_url"`
}

// Validate validates the gallery configuration.
func (c *GalleryConfig) Validate() error {
	if c.Navigation == "" {
		c.Navigation = NavigationStop
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.PreviewCount, validation.Required, validation.Min(1)),
		validation.Field(&c.Navigation, validation.In(NavigationStop, NavigationWrap)),
		validation.Field(&c.PrefetchBaseURL, is.URL),
	); err != nil {
		return fmt.Errorf("gallery: %w", err)
	}
	return nil
}

// ContactConfig holds contact form rules and timings.
type ContactConfig struct {
	MinNameLength    int           `yaml:"min_name_length"`
	MinMessageLength int           `yaml:"min_message_length"`
	MaxMessageLength int           `yaml:"max_message_length"`
	SuccessTTL       time.Duration `yaml:"success_ttl"`
	ErrorResetDelay  time.Duration `yaml:"error_reset_delay"`
}

// Validate validates the contact configuration.
func (c *ContactConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MinNameLength, validation.Required, validation.Min(1)),
		validation.Field(&c.MinMessageLength, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxMessageLength, validation.Required, validation.Min(c.MinMessageLength)),
		validation.Field(&c.SuccessTTL, validation.Required),
		validation.Field(&c.ErrorResetDelay, validation.Required),
	); err != nil {
		return fmt.Errorf("contact: %w", err)
	}
	return nil
}

// EmailConfig holds the EmailJS credentials. Credentials are deliberately
// not required here: a missing value surfaces as a configuration error on
// the first submission and as a warning at startup.
type EmailConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	ServiceID  string        `yaml:"service_id"`
	TemplateID string        `yaml:"template_id"`
	PublicKey  string        `yaml:"public_key"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Validate validates the email configuration.
func (c *EmailConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Required),
	); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MarkersConfig selects where contact success markers are kept.
type MarkersConfig struct {
	Backend       string        `yaml:"backend"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Redis         RedisConfig   `yaml:"redis"`
}

// Validate validates the markers configuration.
func (c *MarkersConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = MarkerBackendSQLite
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(MarkerBackendSQLite, MarkerBackendRedis, MarkerBackendMemory)),
	); err != nil {
		return fmt.Errorf("markers: %w", err)
	}
	if c.Backend == MarkerBackendRedis && c.Redis.Address == "" {
		return fmt.Errorf("markers: backend is %q but redis.address is empty", MarkerBackendRedis)
	}
	return nil
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SessionsConfig controls the visitor session registry.
type SessionsConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

// Validate validates the sessions configuration.
func (c *SessionsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IdleTimeout, validation.Required),
		validation.Field(&c.SweepInterval, validation.Required),
	)
}

// EventsConfig controls the catalog notification stream.
type EventsConfig struct {
	GalleryThrottle time.Duration `yaml:"gallery_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.GalleryThrottle, validation.Required),
	)
}

// EffectsConfig controls the background effects stream.
type EffectsConfig struct {
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// Validate validates the effects configuration.
func (c *EffectsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.FrameInterval, validation.Required, validation.Min(10*time.Millisecond)),
	); err != nil {
		return fmt.Errorf("effects: %w", err)
	}
	return nil
}

// AuthConfig holds authentication configuration for the admin routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			Env:      EnvProduction,
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			AllowedOrigins: []string{"*"},
		},
		Catalog: CatalogConfig{
			Dir:   "./data",
			Watch: true,
		},
		Static: StaticConfig{
			Dir: "./public",
		},
		Gallery: GalleryConfig{
			PreviewCount: 6,
			Navigation:   NavigationStop,
		},
		Contact: ContactConfig{
			MinNameLength:    2,
			MinMessageLength: 10,
			MaxMessageLength: 1000,
			SuccessTTL:       5 * time.Minute,
			ErrorResetDelay:  3 * time.Second,
		},
		Email: EmailConfig{
			Endpoint: "https://api.emailjs.com/api/v1.0/email/send",
			Timeout:  15 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: "./designa.db",
		},
		Markers: MarkersConfig{
			Backend:       MarkerBackendSQLite,
			SweepInterval: 10 * time.Minute,
		},
		Sessions: SessionsConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Events: EventsConfig{
			GalleryThrottle: 2 * time.Second,
		},
		Effects: EffectsConfig{
			FrameInterval: 33 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
