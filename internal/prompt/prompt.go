// Package prompt implements line-oriented terminal questions with the
// ask, validate, retry-or-abandon protocol used by every interactive step.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cv-analyser/internal/logger"
	"cv-analyser/internal/models"
)

const (
	retryQuestion = "Retry (Y/N)? "
	yesNoHint     = "Valid options are: 'Y', 'y', 'N' and 'n' only."
)

// Outcome is the result of Ask: either an accepted value or an abandoned
// question.
type Outcome[T any] struct {
	Value    T
	Accepted bool
}

func Accepted[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Accepted: true}
}

func Abandoned[T any]() Outcome[T] {
	return Outcome[T]{}
}

// Prompter reads answers from an input stream and writes questions and
// errors to an output stream. Input is read by a background goroutine so a
// blocked read never outlives a cancelled context.
type Prompter struct {
	out         io.Writer
	lines       chan string
	done        chan struct{}
	closeOnce   sync.Once
	readErr     error
	maxAttempts int
	log         logger.Logger
}

// New starts reading from in. maxAttempts caps consecutive invalid answers
// to a single question; 0 means unlimited.
func New(in io.Reader, out io.Writer, maxAttempts int, log logger.Logger) *Prompter {
	if log == nil {
		log = logger.NewNop()
	}
	if maxAttempts < 0 {
		maxAttempts = 0
	}

	p := &Prompter{
		out:         out,
		lines:       make(chan string),
		done:        make(chan struct{}),
		maxAttempts: maxAttempts,
		log:         log,
	}
	go p.scan(in)
	return p
}

func (p *Prompter) scan(in io.Reader) {
	defer close(p.lines)

	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if err == nil || line != "" {
			select {
			case p.lines <- strings.TrimRight(line, "\r\n"):
			case <-p.done:
				return
			}
		}
		if err != nil {
			p.readErr = err
			return
		}
	}
}

// Close stops the reader goroutine once its pending read returns.
func (p *Prompter) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// Printf writes to the output stream.
func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// Println writes a line to the output stream.
func (p *Prompter) Println(args ...interface{}) {
	fmt.Fprintln(p.out, args...)
}

// Error reports a recoverable failure to the user.
func (p *Prompter) Error(err error) {
	fmt.Fprintf(p.out, "ERROR: %v\n", err)
}

// Line prints question and returns the next input line, trimmed of
// surrounding whitespace.
func (p *Prompter) Line(ctx context.Context, question string) (string, error) {
	p.Printf("%s", question)

	select {
	case <-ctx.Done():
		p.Println()
		return "", fmt.Errorf("%w: %v", models.ErrInputClosed, ctx.Err())
	case line, ok := <-p.lines:
		if !ok {
			p.Println()
			if p.readErr != nil && !errors.Is(p.readErr, io.EOF) {
				p.log.Error("prompt", p.readErr, nil)
				return "", fmt.Errorf("%w: %v", models.ErrInputClosed, p.readErr)
			}
			return "", models.ErrInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

// exhausted reports whether count invalid answers hit the configured cap.
func (p *Prompter) exhausted(count int) bool {
	return p.maxAttempts > 0 && count >= p.maxAttempts
}

// Confirm asks a yes/no question until it gets y, Y, n or N. When the
// attempt cap is reached the answer is no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	for invalid := 0; ; {
		line, err := p.Line(ctx, question)
		if err != nil {
			return false, err
		}

		switch strings.ToUpper(line) {
		case "Y":
			return true, nil
		case "N":
			return false, nil
		}

		invalid++
		p.Error(fmt.Errorf("%w: %q", models.ErrInvalidConfirmationToken, line))
		p.Println(yesNoHint)
		if p.exhausted(invalid) {
			p.log.Warning("prompt", "confirmation attempts exhausted", map[string]interface{}{
				"question": strings.TrimSpace(question),
				"attempts": invalid,
			})
			return false, nil
		}
	}
}

// Ask reads a value with parse. After an invalid answer the user chooses to
// retry or abandon the question.
func Ask[T any](ctx context.Context, p *Prompter, question string, parse func(line string) (T, error)) (Outcome[T], error) {
	for invalid := 0; ; {
		line, err := p.Line(ctx, question)
		if err != nil {
			return Abandoned[T](), err
		}

		value, err := parse(line)
		if err == nil {
			return Accepted(value), nil
		}

		invalid++
		p.Error(err)
		if p.exhausted(invalid) {
			p.log.Warning("prompt", "answer attempts exhausted", map[string]interface{}{
				"question": strings.TrimSpace(question),
				"attempts": invalid,
			})
			return Abandoned[T](), nil
		}

		again, err := p.Confirm(ctx, retryQuestion)
		if err != nil {
			return Abandoned[T](), err
		}
		if !again {
			return Abandoned[T](), nil
		}
	}
}

// Require reads a value with parse, re-asking until it is valid. Only closed
// input ends it early.
func Require[T any](ctx context.Context, p *Prompter, question string, parse func(line string) (T, error)) (T, error) {
	for {
		line, err := p.Line(ctx, question)
		if err != nil {
			var zero T
			return zero, err
		}

		value, err := parse(line)
		if err == nil {
			return value, nil
		}
		p.Error(err)
	}
}
