package backend

import "fmt"

// Config holds the options the backend needs to mint sessions
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetRefreshDuration() int
	GetIssuer() string
	GetAudience() []string
}

// SimpleConfig is a literal-friendly Config implementation. Durations are
// in hours; zero values fall back to defaults at construction time.
type SimpleConfig struct {
	SigningKey      string
	TokenExpiration int
	RefreshDuration int
	Issuer          string
	Audience        []string
}

func (c SimpleConfig) GetSigningKey() string   { return c.SigningKey }
func (c SimpleConfig) GetTokenExpiration() int { return c.TokenExpiration }
func (c SimpleConfig) GetRefreshDuration() int { return c.RefreshDuration }
func (c SimpleConfig) GetIssuer() string       { return c.Issuer }
func (c SimpleConfig) GetAudience() []string   { return c.Audience }

var _ Config = SimpleConfig{}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] BACKEND "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] BACKEND "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] BACKEND "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] BACKEND "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
