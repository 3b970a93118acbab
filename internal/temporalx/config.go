package temporalx

import (
	"strings"
	"time"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	DialTimeout time.Duration
	DialMaxWait time.Duration

	AutoRegisterNamespace  bool
	NamespaceRetentionDays int

	// WorkerConcurrency caps concurrent activity and workflow task executions.
	WorkerConcurrency int
}

func (c Config) Enabled() bool { return strings.TrimSpace(c.Address) != "" }

// WithDefaults fills the namespace, task queue and timeouts left unset.
func (c Config) WithDefaults() Config {
	c.Namespace = stringsOr(strings.TrimSpace(c.Namespace), "milestones")
	c.TaskQueue = stringsOr(strings.TrimSpace(c.TaskQueue), "milestones")
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.DialMaxWait < 0 {
		c.DialMaxWait = 0
	}
	if c.NamespaceRetentionDays < 1 {
		c.NamespaceRetentionDays = 7
	}
	if c.NamespaceRetentionDays > 365 {
		c.NamespaceRetentionDays = 365
	}
	if c.WorkerConcurrency < 1 {
		c.WorkerConcurrency = 4
	}
	return c
}

func (c Config) mTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func stringsOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
