package security

import (
	"context"
	"testing"

	"browser_library/domain/entities"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestURLPolicy(t *testing.T) {
	logger, _ := test.NewNullLogger()
	policy := NewURLPolicy(DefaultAllowedSchemes, []string{"Ads.Example", "tracker."}, logger)
	ctx := context.Background()

	for _, allowed := range []string{
		"https://example.com/login",
		"HTTP://example.com",
		"about:blank",
		"file:///tmp/page.html",
	} {
		assert.NoError(t, policy.CheckNavigation(ctx, allowed), allowed)
	}

	for _, blocked := range []string{
		"javascript:alert(1)",
		"ftp://example.com/file",
		"https://ads.example.com/banner",
		"https://cdn.tracker.io/pixel",
		"example.com",
		"http://[::1",
	} {
		assert.ErrorIs(t, policy.CheckNavigation(ctx, blocked), entities.ErrNavigationBlocked, blocked)
	}
}

func TestURLPolicyWithoutSchemeList(t *testing.T) {
	logger, _ := test.NewNullLogger()
	policy := NewURLPolicy(nil, nil, logger)

	assert.True(t, policy.IsAllowedScheme("chrome"))
	assert.NoError(t, policy.CheckNavigation(context.Background(), "chrome://settings"))
	assert.False(t, policy.IsBlockedHost("example.com"))
}
