package temporalx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/avast/retry-go"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

const namespaceEnsureWait = 10 * time.Second

// unboundedAttempts leaves the wait deadline as the only limit.
const unboundedAttempts = 1 << 20

// Backoff retries a call with exponential delay for at most Wait.
type Backoff struct {
	Wait  time.Duration
	Base  time.Duration
	Limit time.Duration
}

// DialBackoff is the schedule used while Temporal is coming up.
func DialBackoff(wait time.Duration) Backoff {
	return Backoff{Wait: wait, Base: 250 * time.Millisecond, Limit: 5 * time.Second}
}

// Do runs fn once when Wait is zero. retryIf decides which errors are worth
// another attempt; the last error is returned as-is.
func (b Backoff) Do(ctx context.Context, retryIf func(error) bool, onRetry func(uint, error), fn func() error) error {
	if b.Wait <= 0 {
		return fn()
	}
	ctx, cancel := context.WithTimeout(ctx, b.Wait)
	defer cancel()
	if onRetry == nil {
		onRetry = func(uint, error) {}
	}
	var last error
	err := retry.Do(func() error {
		last = fn()
		return last
	},
		retry.Context(ctx),
		retry.Attempts(unboundedAttempts),
		retry.Delay(b.Base),
		retry.MaxDelay(b.Limit),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(retryIf),
		retry.OnRetry(onRetry),
		retry.LastErrorOnly(true),
	)
	if err != nil && last != nil && errors.Is(err, ctx.Err()) {
		// report the call failure rather than our own deadline
		return last
	}
	return err
}

// NewClient dials Temporal, retrying for up to DialMaxWait. It returns nil, nil
// when no address is configured.
func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (temporalsdkclient.Client, error) {
	if !cfg.Enabled() {
		if log != nil {
			log.Warn("Temporal address not set; Temporal disabled")
		}
		return nil, nil
	}
	cfg = cfg.WithDefaults()

	opts, err := clientOptions(cfg, log, true)
	if err != nil {
		return nil, err
	}

	var c temporalsdkclient.Client
	attempts := 1
	err = DialBackoff(cfg.DialMaxWait).Do(ctx,
		func(error) bool { return true },
		func(n uint, err error) {
			attempts = int(n) + 2
			if log != nil {
				log.Warn("Temporal not reachable; retrying", "address", cfg.Address, "attempt", n+1, "error", err)
			}
		},
		func() error {
			dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
			var derr error
			c, derr = temporalsdkclient.DialContext(dialCtx, opts)
			return derr
		},
	)
	if err != nil {
		return nil, fmt.Errorf("temporal dial failed (address=%s namespace=%s): %w", cfg.Address, cfg.Namespace, err)
	}
	if log != nil && attempts > 1 {
		log.Info("Connected to Temporal", "address", cfg.Address, "namespace", cfg.Namespace, "attempts", attempts)
	}

	if cfg.AutoRegisterNamespace {
		if err := EnsureNamespace(ctx, cfg, log); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// clientOptions builds dial options; namespace clients must not carry a
// namespace header.
func clientOptions(cfg Config, log *logger.Logger, withNamespace bool) (temporalsdkclient.Options, error) {
	opts := temporalsdkclient.Options{HostPort: cfg.Address}
	if log != nil {
		opts.Logger = log
	}
	if withNamespace {
		opts.Namespace = cfg.Namespace
	}
	if cfg.mTLS() {
		tlsCfg, err := loadTLSConfig(cfg)
		if err != nil {
			return opts, err
		}
		opts.ConnectionOptions.TLS = tlsCfg
	}
	return opts, nil
}

// EnsureNamespace registers the namespace when it is missing. Managed
// namespaces should be provisioned ahead of time instead.
func EnsureNamespace(ctx context.Context, cfg Config, log *logger.Logger) error {
	if !cfg.Enabled() {
		return nil
	}
	cfg = cfg.WithDefaults()

	opts, err := clientOptions(cfg, log, false)
	if err != nil {
		return err
	}
	nsClient, err := temporalsdkclient.NewNamespaceClient(opts)
	if err != nil {
		return fmt.Errorf("temporal namespace ensure: init namespace client: %w", err)
	}
	defer nsClient.Close()

	registered := false
	err = DialBackoff(namespaceEnsureWait).Do(ctx, isRetryableRPC,
		func(n uint, err error) {
			if log != nil {
				log.Warn("Temporal namespace ensure retrying", "namespace", cfg.Namespace, "attempt", n+1, "error", err)
			}
		},
		func() error {
			_, err := nsClient.Describe(ctx, cfg.Namespace)
			var missing *serviceerror.NamespaceNotFound
			if !errors.As(err, &missing) {
				return err
			}
			err = nsClient.Register(ctx, &workflowservice.RegisterNamespaceRequest{
				Namespace:                        cfg.Namespace,
				Description:                      "milestone engine namespace",
				WorkflowExecutionRetentionPeriod: durationpb.New(time.Duration(cfg.NamespaceRetentionDays) * 24 * time.Hour),
			})
			var exists *serviceerror.NamespaceAlreadyExists
			if errors.As(err, &exists) {
				return nil
			}
			registered = err == nil
			return err
		},
	)
	if err != nil {
		return fmt.Errorf("temporal namespace ensure (namespace=%s): %w", cfg.Namespace, err)
	}
	if registered && log != nil {
		log.Info("Registered Temporal namespace", "namespace", cfg.Namespace, "retention_days", cfg.NamespaceRetentionDays)
	}
	return nil
}

func loadTLSConfig(cfg Config) (*tls.Config, error) {
	if cfg.ClientCertPath == "" || cfg.ClientKeyPath == "" {
		return nil, errors.New("temporal tls: client cert and key paths are both required for mTLS")
	}
	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("temporal tls: load client cert/key: %w", err)
	}
	out := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	if cfg.ClientCAPath == "" {
		return out, nil
	}
	pem, err := os.ReadFile(cfg.ClientCAPath)
	if err != nil {
		return nil, fmt.Errorf("temporal tls: read CA: %w", err)
	}
	out.RootCAs = x509.NewCertPool()
	if !out.RootCAs.AppendCertsFromPEM(pem) {
		return nil, errors.New("temporal tls: invalid CA pem")
	}
	return out, nil
}

func isRetryableRPC(err error) bool {
	if err == nil {
		return false
	}
	s, ok := status.FromError(err)
	if !ok {
		return errors.Is(err, context.DeadlineExceeded)
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	}
	return false
}
