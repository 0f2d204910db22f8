package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/orgblog/internal/parser"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Blog   BlogConfig        `yaml:"blog"`
	Markup MarkupConfig      `yaml:"markup"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Blog.Validate(); err != nil {
		return err
	}
	if err := c.Markup.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
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

// BlogConfig names the files of a blog. Every path except Root is relative
// to Root; Catalog may also be absolute.
type BlogConfig struct {
	Root             string   `yaml:"root"`
	Inputs           []string `yaml:"inputs"`
	PreviousMetadata string   `yaml:"previous_metadata"`
	NewMetadata      string   `yaml:"new_metadata"`
	// Rotate copies the new metadata over the previous one after a successful run.
	Rotate        bool          `yaml:"rotate"`
	UserLog       string        `yaml:"user_log"`
	Catalog       string        `yaml:"catalog"`
	Manifest      string        `yaml:"manifest"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// Validate validates the blog configuration.
func (c *BlogConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Inputs, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.PreviousMetadata, validation.Required),
		validation.Field(&c.NewMetadata, validation.Required),
		validation.Field(&c.UserLog, validation.Required),
		validation.Field(&c.Catalog, validation.Required),
		validation.Field(&c.Manifest, validation.Required),
		validation.Field(&c.WatchDebounce, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if filepath.Clean(c.PreviousMetadata) == filepath.Clean(c.NewMetadata) {
		return errors.New("blog: previous_metadata and new_metadata must differ")
	}
	return nil
}

// CatalogPath resolves the catalog database path against Root.
func (c *BlogConfig) CatalogPath() string {
	if filepath.IsAbs(c.Catalog) {
		return c.Catalog
	}
	return filepath.Join(c.Root, c.Catalog)
}

// MarkupConfig names the magic tags, keywords and properties of the outline
// grammar.
type MarkupConfig struct {
	BlogTag            string   `yaml:"blog_tag"`
	FinishedKeyword    string   `yaml:"finished_keyword"`
	Keywords           []string `yaml:"keywords"`
	TagsTag            string   `yaml:"tags_tag"`
	PersistentTag      string   `yaml:"persistent_tag"`
	TemplatesTag       string   `yaml:"templates_tag"`
	HiddenTag          string   `yaml:"hidden_tag"`
	ExcludeTag         string   `yaml:"exclude_tag"`
	IDProperty         string   `yaml:"id_property"`
	CreatedProperty    string   `yaml:"created_property"`
	ImageLinkPrefix    string   `yaml:"image_link_prefix"`
	StrictLinkChecking bool     `yaml:"strict_link_checking"`
}

// Validate validates the markup configuration.
func (c *MarkupConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BlogTag, validation.Required),
		validation.Field(&c.FinishedKeyword, validation.Required),
		validation.Field(&c.IDProperty, validation.Required),
		validation.Field(&c.CreatedProperty, validation.Required),
		validation.Field(&c.TagsTag, validation.NotIn(c.BlogTag).Error("must differ from blog_tag")),
		validation.Field(&c.PersistentTag, validation.NotIn(c.BlogTag).Error("must differ from blog_tag")),
		validation.Field(&c.TemplatesTag, validation.NotIn(c.BlogTag).Error("must differ from blog_tag")),
	)
}

// ParserConfig converts the section into the parser grammar.
func (c *MarkupConfig) ParserConfig() parser.Config {
	return parser.Config{
		BlogTag:            c.BlogTag,
		FinishedKeyword:    c.FinishedKeyword,
		Keywords:           c.Keywords,
		TagsTag:            c.TagsTag,
		PersistentTag:      c.PersistentTag,
		TemplatesTag:       c.TemplatesTag,
		HiddenTag:          c.HiddenTag,
		ExcludeTag:         c.ExcludeTag,
		IDProperty:         c.IDProperty,
		CreatedProperty:    c.CreatedProperty,
		ImageLinkPrefix:    c.ImageLinkPrefix,
		StrictLinkChecking: c.StrictLinkChecking,
	}
}

// AuthConfig holds authentication configuration for the HTTP API.
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
	p := parser.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Blog: BlogConfig{
			Root:             ".",
			Inputs:           []string{"blog.org"},
			PreviousMetadata: ".orgblog/metadata.previous.yaml",
			NewMetadata:      ".orgblog/metadata.yaml",
			Rotate:           true,
			UserLog:          "orgblog-messages.org",
			Catalog:          ".orgblog/catalog.db",
			Manifest:         "public",
			WatchDebounce:    300 * time.Millisecond,
		},
		Markup: MarkupConfig{
			BlogTag:            p.BlogTag,
			FinishedKeyword:    p.FinishedKeyword,
			Keywords:           p.Keywords,
			TagsTag:            p.TagsTag,
			PersistentTag:      p.PersistentTag,
			TemplatesTag:       p.TemplatesTag,
			HiddenTag:          p.HiddenTag,
			ExcludeTag:         p.ExcludeTag,
			IDProperty:         p.IDProperty,
			CreatedProperty:    p.CreatedProperty,
			ImageLinkPrefix:    p.ImageLinkPrefix,
			StrictLinkChecking: p.StrictLinkChecking,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
