package interfaces

import (
	"context"
)

// NavigationGuard defines the check applied before the browser leaves for a URL
type NavigationGuard interface {
	// CheckNavigation returns an error wrapping entities.ErrNavigationBlocked
	// when the URL must not be opened
	CheckNavigation(ctx context.Context, url string) error
}
