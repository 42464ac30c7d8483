package trustedhost

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Wildcard allows any host.
const Wildcard = "*"

// InvalidHostMessage is the body of a rejected request.
const InvalidHostMessage = "Invalid host header"

// New returns the trusted host middleware for the given patterns.
func New(allowed ...string) fiber.Handler {
	patterns := make([]string, 0, len(allowed))

	for _, p := range allowed {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == Wildcard {
			return func(c fiber.Ctx) error { return c.Next() }
		}

		if p != "" {
			patterns = append(patterns, p)
		}
	}

	return func(c fiber.Ctx) error {
		if !Allowed(c.Hostname(), patterns) {
			return c.Status(fiber.StatusBadRequest).SendString(InvalidHostMessage)
		}

		return c.Next()
	}
}

// Allowed reports whether host matches one of the lower case patterns.
func Allowed(host string, patterns []string) bool {
	host = strings.ToLower(stripPort(host))
	if host == "" {
		return false
	}

	for _, p := range patterns {
		switch {
		case p == Wildcard:
			return true
		case strings.HasPrefix(p, "*."):
			if strings.HasSuffix(host, p[1:]) {
				return true
			}
		case host == p:
			return true
		}
	}

	return false
}

func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end > 0 {
			return host[:end+1]
		}

		return host
	}

	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		return host[:i]
	}

	return host
}
