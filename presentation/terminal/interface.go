package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"browser_library/domain/entities"

	"github.com/sirupsen/logrus"
)

const (
	testNameVariable = "TEST NAME"
	defaultTestName  = "Console"
)

// cellSeparator splits a console line into cells: two or more spaces, a tab, or " | "
var cellSeparator = regexp.MustCompile(`\s+\|\s+|\s{2,}|\t+`)

// KeywordLibrary is the library the console drives
type KeywordLibrary interface {
	KeywordNames() []string
	Keyword(name string) (entities.Keyword, bool)
	RunKeyword(ctx context.Context, name string, args []interface{}, kwargs map[string]interface{}) (interface{}, error)
}

// VariableSetter receives host variables set from the console
type VariableSetter interface {
	Set(name, value string)
}

type TerminalInterface struct {
	library   KeywordLibrary
	variables VariableSetter
	logger    *logrus.Logger
	reader    *bufio.Reader
	out       io.Writer
}

// NewTerminalInterface - creates console. ${TEST NAME} starts as "Console"
// so failure screenshots work before the first 'test' command.
func NewTerminalInterface(lib KeywordLibrary, vars VariableSetter, logger *logrus.Logger, in io.Reader, out io.Writer) *TerminalInterface {
	vars.Set(testNameVariable, defaultTestName)
	return &TerminalInterface{
		library:   lib,
		variables: vars,
		logger:    logger,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// SplitCells - splits a console line into keyword name and arguments
func SplitCells(line string) []string {
	var cells []string
	for _, cell := range cellSeparator.Split(strings.TrimSpace(line), -1) {
		if cell = strings.TrimSpace(cell); cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

// BuildCall - turns cells into a keyword call. A "name=value" cell becomes a
// named argument when name is a declared argument of the keyword.
func BuildCall(kw entities.Keyword, cells []string) ([]interface{}, map[string]interface{}) {
	declared := make(map[string]bool, len(kw.Args))
	for _, a := range kw.Args {
		if !a.Variadic {
			declared[a.Name] = true
		}
	}

	var args []interface{}
	kwargs := make(map[string]interface{})
	for _, cell := range cells {
		if name, value, ok := strings.Cut(cell, "="); ok && declared[name] {
			kwargs[name] = value
			continue
		}
		args = append(args, cell)
	}
	return args, kwargs
}

func (t *TerminalInterface) Run(ctx context.Context) error {
	fmt.Fprintln(t.out, "Browser Library")
	fmt.Fprintln(t.out, "===============")
	fmt.Fprintln(t.out, "Введите ключевое слово и аргументы через два пробела или ' | '")
	fmt.Fprintln(t.out, "Команды: 'keywords' - список, 'test <имя>' - имя теста, 'quit' - выход")
	fmt.Fprintln(t.out)

	done := make(chan struct{})
	defer close(done)

	lines := t.readLines(done)
	for {
		fmt.Fprint(t.out, "> ")

		var line readResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(t.out)
			fmt.Fprintln(t.out, "До свидания!")
			return nil
		case line = <-lines:
		}
		if line.err != nil && line.err != io.EOF {
			return line.err
		}
		last := line.err == io.EOF

		input := strings.TrimSpace(line.text)
		if input == "" || strings.HasPrefix(input, "#") {
			if last {
				return nil
			}
			continue
		}

		if input == "quit" || input == "exit" || input == "q" {
			fmt.Fprintln(t.out, "До свидания!")
			return nil
		}

		t.handle(ctx, input)
		if last {
			return nil
		}
	}
}

type readResult struct {
	text string
	err  error
}

// readLines - reads input in the background so Run can stop on ctx while a
// read is pending. Reading stops after the first error or once done is closed.
func (t *TerminalInterface) readLines(done <-chan struct{}) <-chan readResult {
	lines := make(chan readResult)
	go func() {
		for {
			text, err := t.reader.ReadString('\n')
			select {
			case lines <- readResult{text: text, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

func (t *TerminalInterface) handle(ctx context.Context, input string) {
	if input == "keywords" {
		t.printKeywords()
		return
	}
	if name, ok := strings.CutPrefix(input, "test "); ok {
		name = strings.TrimSpace(name)
		t.variables.Set(testNameVariable, name)
		fmt.Fprintf(t.out, "Текущий тест: %s\n\n", name)
		return
	}

	cells := SplitCells(input)
	kw, ok := t.library.Keyword(cells[0])
	if !ok {
		// let the library report the unknown keyword
		kw = entities.Keyword{Name: cells[0]}
	}
	args, kwargs := BuildCall(kw, cells[1:])

	t.logger.WithField("keyword", kw.Name).Debug("Console call")
	result, err := t.library.RunKeyword(ctx, cells[0], args, kwargs)
	if err != nil {
		fmt.Fprintf(t.out, "FAIL [%s]: %v\n\n", entities.ErrorKind(err), err)
		return
	}

	if result != nil {
		fmt.Fprintf(t.out, "PASS: %v\n\n", result)
	} else {
		fmt.Fprintln(t.out, "PASS")
		fmt.Fprintln(t.out)
	}
}

func (t *TerminalInterface) printKeywords() {
	for _, name := range t.library.KeywordNames() {
		kw, _ := t.library.Keyword(name)
		sig := strings.Join(kw.Signature(), "  ")
		if sig != "" {
			sig = "  " + sig
		}
		fmt.Fprintf(t.out, "%-10s %s%s\n", kw.Group, kw.Name, sig)
	}
	fmt.Fprintln(t.out)
}
