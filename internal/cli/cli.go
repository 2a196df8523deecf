package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

var (
	// Colors for different types of output
	titleColor     = color.New(color.FgMagenta, color.Bold) // Bold magenta for titles
	separatorColor = color.New(color.FgHiBlack)             // Dark grey for separators
	infoColor      = color.New(color.FgCyan)                // Cyan for informational output
	successColor   = color.New(color.FgGreen)               // Green for success confirmations
	warningColor   = color.New(color.FgHiYellow)            // Yellow for warnings
	errorColor     = color.New(color.FgRed)                 // Red for errors
	mutedColor     = color.New(color.FgHiBlack)             // Dim for secondary fields
	promptColor    = color.New(color.FgHiBlue)              // Bright blue for prompts

	width = goterm.Width()
)

// Separator printed to cli.
func Separator() {
	separator := strings.Repeat("-", width)
	separatorColor.Println(separator)
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := (width - len(title)) / 2
	separator1 := strings.Repeat("-", leftWidth)
	separator2 := strings.Repeat("-", width-len(title)-len(separator1))
	output := fmt.Sprintf("%s%s%s", separator1, title, separator2)
	titleColor.Println(output)
}

// Info printed to cli.
func Info(text string, args ...any) {
	infoColor.Printf(text, args...)
}

// Success printed to cli.
func Success(text string, args ...any) {
	successColor.Printf(text, args...)
}

// Warning printed to cli.
func Warning(text string, args ...any) {
	warningColor.Printf(text, args...)
}

// Error printed to cli.
func Error(text string, args ...any) {
	errorColor.Printf(text, args...)
}

// Muted printed to cli.
func Muted(text string, args ...any) {
	mutedColor.Printf(text, args...)
}

// PromptUser for input.
func PromptUser() (string, error) {
	exit := false
	config := &readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		HistoryFile:       "/tmp/strata.history",
		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == '\x0A' { // Ctrl + J
				exit = true
			}
			return r, true
		},
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		if err == readline.ErrInterrupt || exit {
			break
		}
		rl.SetPrompt("")
	}
	return strings.Join(lines, "\n"), nil
}

// PromptSecret asks for a single hidden line, e.g. a password or API token.
func PromptSecret(message string) (string, error) {
	question := &survey.Password{Message: message}
	var answer string
	if err := survey.AskOne(question, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

// QueryUser a yes/no question.
func QueryUser(question string) bool {
	surveyQuestion := &survey.Confirm{
		Message: question,
	}
	confirm := false
	survey.AskOne(surveyQuestion, &confirm)
	return confirm
}
