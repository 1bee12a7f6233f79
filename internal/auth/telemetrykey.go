package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TelemetryKeyHeader carries the pre-shared key sent by game clients.
const TelemetryKeyHeader = "X-Telemetry-Key"

// TelemetryKey authenticates ingestion requests.
//
// With no configured keys only the header's presence is checked; the value
// itself is not compared against any secret.
type TelemetryKey struct {
	keys [][]byte
}

// NewTelemetryKey builds a checker. Passing no keys selects presence-only mode.
func NewTelemetryKey(keys []string) *TelemetryKey {
	tk := &TelemetryKey{}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			tk.keys = append(tk.keys, []byte(k))
		}
	}
	return tk
}

// Enforced reports whether header values are matched against configured keys.
func (tk *TelemetryKey) Enforced() bool {
	return len(tk.keys) > 0
}

// Authenticate reports whether h carries an acceptable telemetry key.
// Header names are matched case-insensitively; an empty value counts as absent.
func (tk *TelemetryKey) Authenticate(h http.Header) bool {
	v := h.Get(TelemetryKeyHeader)
	if v == "" {
		return false
	}
	if !tk.Enforced() {
		return true
	}
	for _, k := range tk.keys {
		if subtle.ConstantTimeCompare([]byte(v), k) == 1 {
			return true
		}
	}
	return false
}
