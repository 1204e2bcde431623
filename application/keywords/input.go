package keywords

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Input performs user input on page elements
type Input struct {
	engine interfaces.Engine
	logger *logrus.Logger
}

// NewInput - creates the Input keyword group
func NewInput(engine interfaces.Engine, logger *logrus.Logger) *Input {
	return &Input{
		engine: engine,
		logger: logger,
	}
}

func (i *Input) Name() string {
	return GroupInput
}

func (i *Input) Keywords() []entities.Keyword {
	sel := entities.Required("selector")
	return []entities.Keyword{
		define(GroupInput, "Input Text", "Clears the input field and fills it with text.", i.inputText,
			sel, entities.Required("text")),
		define(GroupInput, "Input Password", "Like Input Text, but the value is never logged.", i.inputPassword,
			sel, entities.Required("password")),
		define(GroupInput, "Type Text", "Types text key by key, waiting delay between keystrokes.", i.typeText,
			sel, entities.Required("text"), entities.Optional("delay", 0)),
		define(GroupInput, "Clear Text", "Clears the input field.", i.clearText, sel),
		define(GroupInput, "Click", "Clicks the element with button (left, right, middle) clickCount times.", i.click,
			sel, entities.Optional("button", "left"), entities.Optional("clickCount", 1)),
		define(GroupInput, "Press Keys", "Presses keys on the element one after another.", i.pressKeys,
			sel, entities.Variadic("keys")),
		define(GroupInput, "Check Checkbox", "Checks the checkbox.", i.setChecked(true), sel),
		define(GroupInput, "Uncheck Checkbox", "Unchecks the checkbox.", i.setChecked(false), sel),
		define(GroupInput, "Select Options By", "Selects options of a select element by value or label. Returns the selected values.", i.selectOptions,
			sel, entities.Variadic("values")),
		define(GroupInput, "Focus", "Moves focus to the element.", i.focus, sel),
		define(GroupInput, "Hover", "Moves the mouse over the element.", i.hover, sel),
	}
}

func (i *Input) inputText(ctx context.Context, args entities.Arguments) (interface{}, error) {
	selector, text := args.String("selector"), args.String("text")
	i.logger.Infof("Typing text '%s' into %s", text, selector)
	return nil, i.engine.Fill(ctx, selector, text)
}

func (i *Input) inputPassword(ctx context.Context, args entities.Arguments) (interface{}, error) {
	selector := args.String("selector")
	i.logger.Infof("Typing password into %s", selector)
	return nil, i.engine.Fill(ctx, selector, args.String("password"))
}

func (i *Input) typeText(ctx context.Context, args entities.Arguments) (interface{}, error) {
	delay, err := args.Duration("delay")
	if err != nil {
		return nil, err
	}
	if delay < 0 {
		return nil, fmt.Errorf("%w: delay must not be negative", entities.ErrInvalidArguments)
	}
	selector := args.String("selector")
	i.logger.Debugf("Typing into %s with delay %s", selector, delay)
	return nil, i.engine.Type(ctx, selector, args.String("text"), delay)
}

func (i *Input) clearText(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return nil, i.engine.Fill(ctx, args.String("selector"), "")
}

func (i *Input) click(ctx context.Context, args entities.Arguments) (interface{}, error) {
	button, err := oneOf("button", args.String("button"), "left", "right", "middle")
	if err != nil {
		return nil, err
	}
	count, err := args.Int("clickCount")
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: clickCount must be at least 1", entities.ErrInvalidArguments)
	}
	return nil, i.engine.Click(ctx, args.String("selector"), entities.ClickOptions{
		Button:     button,
		ClickCount: count,
	})
}

func (i *Input) pressKeys(ctx context.Context, args entities.Arguments) (interface{}, error) {
	keys := args.Strings("keys")
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: at least one key is required", entities.ErrInvalidArguments)
	}
	return nil, i.engine.Press(ctx, args.String("selector"), keys)
}

func (i *Input) setChecked(checked bool) entities.KeywordFunc {
	return func(ctx context.Context, args entities.Arguments) (interface{}, error) {
		return nil, i.engine.SetChecked(ctx, args.String("selector"), checked)
	}
}

func (i *Input) selectOptions(ctx context.Context, args entities.Arguments) (interface{}, error) {
	values := args.Strings("values")
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: at least one value is required", entities.ErrInvalidArguments)
	}
	return i.engine.SelectOptions(ctx, args.String("selector"), values)
}

func (i *Input) focus(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return nil, i.engine.Focus(ctx, args.String("selector"))
}

func (i *Input) hover(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return nil, i.engine.Hover(ctx, args.String("selector"))
}
