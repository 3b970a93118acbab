package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Credentials and learner contact details never reach the log. Student and
// user ids are hashed so one learner's lines still correlate.
var (
	redactFragments = []string{"token", "password", "secret", "api_key", "apikey", "authorization", "email"}
	hashKeys        = []string{"student_id", "user_id"}
)

type redactionPolicy struct {
	enabled bool
	salt    string
}

var (
	policyOnce sync.Once
	current    redactionPolicy
)

// policy reads LOG_REDACTION_ENABLED and LOG_HASH_SALT once per process.
func policy() redactionPolicy {
	policyOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
		default:
			current.enabled = true
		}
		current.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return current
}

func (p redactionPolicy) apply(kv []interface{}) []interface{} {
	if !p.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := stringify(kv[i])
		out = append(out, key, p.value(normalizeKey(key), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (p redactionPolicy) value(key string, val interface{}) interface{} {
	switch {
	case key == "":
		return val
	case shouldRedact(key):
		return "[REDACTED]"
	case shouldHash(key):
		return p.hash(val)
	}
	if m, ok := val.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[k] = p.value(normalizeKey(k), v)
		}
		return out
	}
	return val
}

func (p redactionPolicy) hash(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func shouldRedact(key string) bool {
	for _, f := range redactFragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func shouldHash(key string) bool {
	for _, k := range hashKeys {
		if key == k || strings.HasSuffix(key, "_"+k) {
			return true
		}
	}
	return false
}

func normalizeKey(k string) string { return strings.ToLower(strings.TrimSpace(k)) }

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
