package env

import (
	"os"
	"strings"
)

// Prefix namespaces every storefront variable.
const Prefix = "STOREFRONT_"

// Get returns the prefixed variable, then the bare one, then fallback. Logging is
// configured before envconfig runs, so it reads through here.
func Get(key, fallback string) string {
	key = strings.TrimPrefix(key, Prefix)
	if val := strings.TrimSpace(os.Getenv(Prefix + key)); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
