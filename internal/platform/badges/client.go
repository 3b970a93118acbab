package badges

//go:generate mockgen -source=client.go -destination=../../mocks/badges/client.go -package=mock_badges

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yungbote/neurobridge-milestones/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

// Client issues badge assertions against an Open Badges style provider.
type Client interface {
	IssueAssertion(ctx context.Context, req AssertionRequest) (*Assertion, error)
}

type Config struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIToken   string        `mapstructure:"api_token"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.BaseURL) != ""
}

type AssertionRequest struct {
	BadgeClassSlug string `json:"-"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name,omitempty"`
	CourseSlug     string `json:"course_slug,omitempty"`
	Evidence       string `json:"evidence,omitempty"`
}

type Assertion struct {
	ID       string    `json:"id"`
	URL      string    `json:"url,omitempty"`
	IssuedOn time.Time `json:"issued_on"`
}

type providerError struct {
	Detail string `json:"detail"`
}

type client struct {
	log  *logger.Logger
	http *resty.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("missing badge provider base url")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}

	rc := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	if tok := strings.TrimSpace(cfg.APIToken); tok != "" {
		rc.SetAuthToken(tok)
	}
	return &client{log: log.With("client", "BadgeClient"), http: rc}, nil
}

func (c *client) IssueAssertion(ctx context.Context, req AssertionRequest) (*Assertion, error) {
	slug := strings.TrimSpace(req.BadgeClassSlug)
	if slug == "" {
		return nil, fmt.Errorf("badges: badge class slug required")
	}
	if strings.TrimSpace(req.RecipientEmail) == "" {
		return nil, fmt.Errorf("badges: recipient email required")
	}

	var out Assertion
	var perr providerError
	res, err := c.http.R().
		SetContext(ctxutil.Default(ctx)).
		SetPathParam("slug", slug).
		SetBody(req).
		SetResult(&out).
		SetError(&perr).
		Post("/badge-classes/{slug}/assertions")
	if err != nil {
		return nil, fmt.Errorf("badges: issue assertion: %w", err)
	}
	if res.IsError() {
		msg := strings.TrimSpace(perr.Detail)
		if msg == "" {
			msg = strings.TrimSpace(res.String())
		}
		c.log.Warn("badge assertion rejected", "status", res.StatusCode(), "badge_class", slug)
		return nil, fmt.Errorf("badges: status code: %d, body: %s", res.StatusCode(), msg)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("badges: provider returned no assertion id")
	}
	return &out, nil
}
