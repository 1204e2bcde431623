package keywords

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validation reads page state and verifies it
type Validation struct {
	engine interfaces.Engine
	logger *logrus.Logger
}

// NewValidation - creates the Validation keyword group
func NewValidation(engine interfaces.Engine, logger *logrus.Logger) *Validation {
	return &Validation{
		engine: engine,
		logger: logger,
	}
}

func (v *Validation) Name() string {
	return GroupValidation
}

func (v *Validation) Keywords() []entities.Keyword {
	sel := entities.Required("selector")
	return []entities.Keyword{
		define(GroupValidation, "Get Title", "Returns the title of the current page.", v.getTitle),
		define(GroupValidation, "Title Should Be", "Fails unless the page title equals title.", v.titleShouldBe,
			entities.Required("title")),
		define(GroupValidation, "Get Url", "Returns the URL of the current page.", v.getURL),
		define(GroupValidation, "Url Should Be", "Fails unless the page URL equals url.", v.urlShouldBe,
			entities.Required("url")),
		define(GroupValidation, "Url Should Contain", "Fails unless the page URL contains text.", v.urlShouldContain,
			entities.Required("text")),
		define(GroupValidation, "Get Text", "Returns the text content of the element.", v.getText, sel),
		define(GroupValidation, "Text Should Be", "Fails unless the element text equals expected.", v.textShouldBe,
			sel, entities.Required("expected")),
		define(GroupValidation, "Text Should Contain", "Fails unless the element text contains expected.", v.textShouldContain,
			sel, entities.Required("expected")),
		define(GroupValidation, "Element Should Be Visible", "Fails unless the element is visible.", v.visibility(true), sel),
		define(GroupValidation, "Element Should Not Be Visible", "Fails if the element is visible.", v.visibility(false), sel),
		define(GroupValidation, "Checkbox Should Be Checked", "Fails unless the checkbox is checked.", v.checkbox(true), sel),
		define(GroupValidation, "Checkbox Should Not Be Checked", "Fails if the checkbox is checked.", v.checkbox(false), sel),
	}
}

func (v *Validation) getTitle(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return v.engine.Title(ctx)
}

func (v *Validation) titleShouldBe(ctx context.Context, args entities.Arguments) (interface{}, error) {
	expected := args.String("title")
	title, err := v.engine.Title(ctx)
	if err != nil {
		return nil, err
	}
	if title != expected {
		return nil, entities.Assertionf("Title '%s' should have been '%s'", title, expected)
	}
	return nil, nil
}

func (v *Validation) getURL(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return v.engine.URL(ctx)
}

func (v *Validation) urlShouldBe(ctx context.Context, args entities.Arguments) (interface{}, error) {
	expected := args.String("url")
	url, err := v.engine.URL(ctx)
	if err != nil {
		return nil, err
	}
	if url != expected {
		return nil, entities.Assertionf("Url '%s' should have been '%s'", url, expected)
	}
	return nil, nil
}

func (v *Validation) urlShouldContain(ctx context.Context, args entities.Arguments) (interface{}, error) {
	text := args.String("text")
	url, err := v.engine.URL(ctx)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(url, text) {
		return nil, entities.Assertionf("Url '%s' should have contained '%s'", url, text)
	}
	return nil, nil
}

func (v *Validation) getText(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return v.engine.TextContent(ctx, args.String("selector"))
}

func (v *Validation) textShouldBe(ctx context.Context, args entities.Arguments) (interface{}, error) {
	selector, expected := args.String("selector"), args.String("expected")
	text, err := v.engine.TextContent(ctx, selector)
	if err != nil {
		return nil, err
	}
	if text != expected {
		return nil, entities.Assertionf("Text of '%s' was '%s' but should have been '%s'", selector, text, expected)
	}
	return nil, nil
}

func (v *Validation) textShouldContain(ctx context.Context, args entities.Arguments) (interface{}, error) {
	selector, expected := args.String("selector"), args.String("expected")
	text, err := v.engine.TextContent(ctx, selector)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(text, expected) {
		return nil, entities.Assertionf("Text of '%s' was '%s' but should have contained '%s'", selector, text, expected)
	}
	return nil, nil
}

func (v *Validation) visibility(want bool) entities.KeywordFunc {
	return func(ctx context.Context, args entities.Arguments) (interface{}, error) {
		selector := args.String("selector")
		visible, err := v.engine.IsVisible(ctx, selector)
		if err != nil {
			return nil, err
		}
		if visible != want {
			if want {
				return nil, entities.Assertionf("Element '%s' should be visible", selector)
			}
			return nil, entities.Assertionf("Element '%s' should not be visible", selector)
		}
		return nil, nil
	}
}

func (v *Validation) checkbox(want bool) entities.KeywordFunc {
	return func(ctx context.Context, args entities.Arguments) (interface{}, error) {
		selector := args.String("selector")
		checked, err := v.engine.IsChecked(ctx, selector)
		if err != nil {
			return nil, err
		}
		if checked != want {
			if want {
				return nil, entities.Assertionf("Checkbox '%s' should have been checked", selector)
			}
			return nil, entities.Assertionf("Checkbox '%s' should not have been checked", selector)
		}
		v.logger.Debugf("Checkbox %s checked=%t", selector, checked)
		return nil, nil
	}
}
