package formfill

import (
	"log/slog"
	"net/http"

	"github.com/lvillar/formfill/backend"
)

// Option is a functional option for Generate and Render.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	client   *http.Client
	validate bool
	backend  []backend.Option
}

// WithLogger sets the logger for per-field decisions, logged at debug
// level. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
		c.backend = append(c.backend, backend.WithLogger(l))
	}
}

// WithHTTPClient sets the client used to fetch http and https base
// documents.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithFont embeds a TrueType font that field styles can name as
// fontFamily.
func WithFont(name string, ttf []byte) Option {
	return func(c *config) {
		c.backend = append(c.backend, backend.WithFont(name, ttf))
	}
}

// WithDefaultFont sets the font used for unknown font families. It must
// name a core font or one added with WithFont.
func WithDefaultFont(name string) Option {
	return func(c *config) {
		c.backend = append(c.backend, backend.WithDefaultFont(name))
	}
}

// WithCreator sets the Creator entry of generated documents.
func WithCreator(creator string) Option {
	return func(c *config) {
		c.backend = append(c.backend, backend.WithCreator(creator))
	}
}

// WithValidation checks the payload against the validation rules of the
// schema before rendering. A failing payload yields ErrValidation and no
// document.
func WithValidation() Option {
	return func(c *config) {
		c.validate = true
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}
