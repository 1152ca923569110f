package main

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// errAborted signals the user aborted a prompt (Ctrl+C).
var errAborted = errors.New("aborted")

// prompter asks for values the command line did not provide.
type prompter interface {
	Input(message, help string, validate func(string) error) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, help string, validate func(string) error) (string, error) {
	var out string
	prompt := &survey.Input{
		Message: message,
		Help:    help,
	}
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			value, _ := ans.(string)
			return validate(value)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
