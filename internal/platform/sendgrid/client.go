package sendgrid

//go:generate mockgen -source=client.go -destination=../../mocks/sendgrid/client.go -package=mock_sendgrid

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sg "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/yungbote/neurobridge-milestones/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

const mailSendEndpoint = "/v3/mail/send"

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	DefaultFromEmail string        `mapstructure:"from_email"`
	DefaultFromName  string        `mapstructure:"from_name"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether enough configuration exists to send mail.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.DefaultFromEmail) != ""
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing sendgrid api key")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &client{
		log: log.With("client", "SendGridClient"),
		cfg: cfg,
	}, nil
}

type client struct {
	log *logger.Logger
	cfg Config
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
	From       EmailAddress
	To         []EmailAddress
	Subject    string
	Text       string
	HTML       string
	Categories []string
	CustomArgs map[string]string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

type errorItem struct {
	Message string `json:"message"`
	Field   any    `json:"field,omitempty"`
}

type errorResponse struct {
	Errors []errorItem `json:"errors"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	Errors     []errorItem
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "sendgrid: <nil error>"
	}
	if len(e.Errors) > 0 && strings.TrimSpace(e.Errors[0].Message) != "" {
		return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Errors[0].Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	if c == nil {
		return nil, fmt.Errorf("sendgrid client unavailable")
	}
	m, err := c.build(req)
	if err != nil {
		return nil, err
	}

	request := sg.GetRequest(c.cfg.APIKey, mailSendEndpoint, c.cfg.BaseURL)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(m)

	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), c.cfg.Timeout)
	defer cancel()

	resp, err := sg.MakeRequestRetryWithContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		herr := &HTTPError{StatusCode: resp.StatusCode, Body: resp.Body}
		var parsed errorResponse
		if json.Unmarshal([]byte(resp.Body), &parsed) == nil {
			herr.Errors = parsed.Errors
		}
		c.log.Warn("sendgrid send rejected", "status", resp.StatusCode, "error", herr.Error())
		return nil, herr
	}

	out := &SendEmailResult{StatusCode: resp.StatusCode}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		out.MessageID = strings.TrimSpace(ids[0])
	}
	return out, nil
}

func (c *client) build(req SendEmailRequest) (*sgmail.SGMailV3, error) {
	from := req.From
	if strings.TrimSpace(from.Email) == "" {
		from.Email = c.cfg.DefaultFromEmail
		if strings.TrimSpace(from.Name) == "" {
			from.Name = c.cfg.DefaultFromName
		}
	}
	from.Email = strings.TrimSpace(from.Email)
	if from.Email == "" {
		return nil, fmt.Errorf("sendgrid: From.Email required")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("sendgrid: To required")
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, fmt.Errorf("sendgrid: Subject required")
	}
	text := strings.TrimSpace(req.Text)
	html := strings.TrimSpace(req.HTML)
	if text == "" && html == "" {
		return nil, fmt.Errorf("sendgrid: Text or HTML content required")
	}

	p := sgmail.NewPersonalization()
	p.Subject = subject
	for _, to := range req.To {
		if strings.TrimSpace(to.Email) == "" {
			continue
		}
		p.AddTos(sgmail.NewEmail(strings.TrimSpace(to.Name), strings.TrimSpace(to.Email)))
	}
	if len(p.To) == 0 {
		return nil, fmt.Errorf("sendgrid: To required")
	}
	for k, v := range req.CustomArgs {
		p.SetCustomArg(k, v)
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(strings.TrimSpace(from.Name), from.Email))
	m.Subject = subject
	m.AddPersonalizations(p)
	if text != "" {
		m.AddContent(sgmail.NewContent("text/plain", text))
	}
	if html != "" {
		m.AddContent(sgmail.NewContent("text/html", html))
	}
	if len(req.Categories) > 0 {
		m.AddCategories(req.Categories...)
	}
	return m, nil
}
