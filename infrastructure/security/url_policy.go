package security

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"browser_library/domain/entities"
	"browser_library/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// DefaultAllowedSchemes are the schemes a browser may open when none are configured
var DefaultAllowedSchemes = []string{"http", "https", "file", "about", "data"}

type URLPolicy struct {
	allowedSchemes []string
	blockedHosts   []string
	logger         *logrus.Logger
}

// NewURLPolicy - creates navigation guard. An empty allowedSchemes list allows any scheme.
func NewURLPolicy(allowedSchemes, blockedHosts []string, logger *logrus.Logger) *URLPolicy {
	return &URLPolicy{
		allowedSchemes: lowerAll(allowedSchemes),
		blockedHosts:   lowerAll(blockedHosts),
		logger:         logger,
	}
}

func (p *URLPolicy) CheckNavigation(ctx context.Context, rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: invalid url %q: %v", entities.ErrNavigationBlocked, rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return fmt.Errorf("%w: url %q has no scheme", entities.ErrNavigationBlocked, rawURL)
	}
	if !p.IsAllowedScheme(scheme) {
		p.logger.Warnf("Blocked navigation to %s: scheme %s is not allowed", rawURL, scheme)
		return fmt.Errorf("%w: scheme %q is not allowed", entities.ErrNavigationBlocked, scheme)
	}

	if host := u.Hostname(); host != "" && p.IsBlockedHost(host) {
		p.logger.Warnf("Blocked navigation to %s: host %s is blocked", rawURL, host)
		return fmt.Errorf("%w: host %q is blocked", entities.ErrNavigationBlocked, host)
	}

	return nil
}

func (p *URLPolicy) IsAllowedScheme(scheme string) bool {
	if len(p.allowedSchemes) == 0 {
		return true
	}
	scheme = strings.ToLower(scheme)
	for _, allowed := range p.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

func (p *URLPolicy) IsBlockedHost(host string) bool {
	lowerHost := strings.ToLower(host)
	for _, blocked := range p.blockedHosts {
		if blocked != "" && strings.Contains(lowerHost, blocked) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Ensure URLPolicy implements NavigationGuard interface
var _ interfaces.NavigationGuard = (*URLPolicy)(nil)
