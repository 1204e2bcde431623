package library

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// FailureNotifier is told about assertion failures before they reach the caller
type FailureNotifier interface {
	OnAssertionFailure(ctx context.Context) entities.HookResult
}

// Dispatcher resolves keyword names to operations and invokes them.
// The registry is built once by NewDispatcher and never changes.
type Dispatcher struct {
	registry map[string]entities.Keyword
	names    []string
	hook     FailureNotifier
	logger   *logrus.Logger
}

// NewDispatcher - merges groups into one registry. Two keywords whose names
// normalize to the same key fail construction with ErrDuplicateKeyword.
func NewDispatcher(groups []interfaces.KeywordGroup, hook FailureNotifier, logger *logrus.Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		registry: make(map[string]entities.Keyword),
		hook:     hook,
		logger:   logger,
	}

	for _, group := range groups {
		for _, kw := range group.Keywords() {
			key := entities.NormalizeKeywordName(kw.Name)
			if key == "" || kw.Run == nil {
				return nil, fmt.Errorf("group %s declares an invalid keyword %q", group.Name(), kw.Name)
			}
			if existing, ok := d.registry[key]; ok {
				return nil, fmt.Errorf("%w: '%s' of group %s clashes with '%s' of group %s",
					entities.ErrDuplicateKeyword, kw.Name, group.Name(), existing.Name, existing.Group)
			}
			if kw.Group == "" {
				kw.Group = group.Name()
			}
			d.registry[key] = kw
			d.names = append(d.names, kw.Name)
		}
	}

	logger.Debugf("Registered %d keywords from %d groups", len(d.names), len(groups))
	return d, nil
}

// KeywordNames - returns keyword names in registration order
func (d *Dispatcher) KeywordNames() []string {
	return append([]string(nil), d.names...)
}

// Keyword - returns the descriptor of a keyword
func (d *Dispatcher) Keyword(name string) (entities.Keyword, bool) {
	kw, ok := d.registry[entities.NormalizeKeywordName(name)]
	return kw, ok
}

// Run - invokes the keyword and returns its result unchanged. An assertion
// failure notifies the failure hook once, then the original error is returned.
func (d *Dispatcher) Run(ctx context.Context, name string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	result, _, err := d.dispatch(ctx, name, args, kwargs)
	return result, err
}

// dispatch - like Run, also reporting the hook result when the hook ran
func (d *Dispatcher) dispatch(ctx context.Context, name string, args []interface{}, kwargs map[string]interface{}) (interface{}, *entities.HookResult, error) {
	kw, ok := d.Keyword(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: '%s'", entities.ErrUnknownKeyword, name)
	}

	bound, err := entities.Bind(kw.Args, args, kwargs)
	if err != nil {
		return nil, nil, fmt.Errorf("keyword '%s': %w", kw.Name, err)
	}

	d.logger.WithField("keyword", kw.Name).Debug("Running keyword")

	result, err := kw.Run(ctx, bound)
	if err == nil {
		return result, nil, nil
	}
	if !entities.IsAssertion(err) || d.hook == nil {
		return nil, nil, err
	}

	hookResult := d.hook.OnAssertionFailure(ctx)
	return nil, &hookResult, err
}
