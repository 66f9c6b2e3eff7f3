package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a free-text question.
type InputConfig struct {
	Message   string
	Help      string
	Validator func(string) error
}

// Choice lists labelled options for Select and MultiSelect.
type Choice struct {
	Message string
	Options []string
}

// PromptDriver abstracts the terminal so the wizard can be scripted in tests.
// MultiSelect starts with every option selected.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, message string) (bool, error)
	Select(ctx context.Context, choice Choice) (int, error)
	MultiSelect(ctx context.Context, choice Choice) ([]int, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns a PromptDriver backed by survey on the process
// terminal. Info messages go to out, or stdout when nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			s, _ := ans.(string)
			return cfg.Validator(s)
		}))
	}
	err := ask(ctx, &survey.Input{Message: cfg.Message, Help: cfg.Help}, &answer, opts...)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, message string) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{Message: message}, &answer)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, choice Choice) (int, error) {
	var answer string
	if err := ask(ctx, &survey.Select{Message: choice.Message, Options: choice.Options}, &answer); err != nil {
		return -1, err
	}
	return slices.Index(choice.Options, answer), nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, choice Choice) ([]int, error) {
	var answers []string
	prompt := &survey.MultiSelect{
		Message: choice.Message,
		Options: choice.Options,
		Default: choice.Options,
	}
	if err := ask(ctx, prompt, &answers); err != nil {
		return nil, err
	}
	return positions(choice.Options, answers), nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// ask runs one survey prompt. Ctrl-C maps to ErrAborted.
func ask(ctx context.Context, prompt survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// positions maps picked labels back to option indexes in option order.
func positions(options, picked []string) []int {
	var out []int
	for i, option := range options {
		if slices.Contains(picked, option) {
			out = append(out, i)
		}
	}
	return out
}
