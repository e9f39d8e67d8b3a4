package ui

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// UI represents the main UI interface
type UI struct {
	Verbose bool
	Quiet   bool
	spinner *Spinner
}

// NewUI creates a new UI instance
func NewUI(verbose, quiet bool) *UI {
	return &UI{
		Verbose: verbose,
		Quiet:   quiet,
	}
}

// Printf prints formatted output if not in quiet mode
func (u *UI) Printf(format string, args ...interface{}) {
	if !u.Quiet {
		fmt.Printf(format, args...)
	}
}

// Println prints a line if not in quiet mode
func (u *UI) Println(args ...interface{}) {
	if !u.Quiet {
		fmt.Println(args...)
	}
}

// VerbosePrintf prints formatted output only in verbose mode
func (u *UI) VerbosePrintf(format string, args ...interface{}) {
	if u.Verbose && !u.Quiet {
		fmt.Printf(format, args...)
	}
}

// StartProgress starts a progress indicator with a message
func (u *UI) StartProgress(message string) {
	if !u.Quiet {
		u.spinner = NewSpinner(message)
		u.spinner.Start()
	}
}

// StopProgress stops the progress indicator
func (u *UI) StopProgress() {
	if u.spinner != nil && !u.Quiet {
		u.spinner.Stop(true, "Done")
		u.spinner = nil
	}
}

// Warning prints a warning message
func (u *UI) Warning(message string) {
	if !u.Quiet {
		ShowWarning(message)
	}
}

// Error prints an error message
func (u *UI) Error(message string) {
	if !u.Quiet {
		fmt.Printf("%s %s\n", ColorError("x"), message)
	}
}

// Info prints an information message
func (u *UI) Info(message string) {
	if !u.Quiet {
		ShowInfo(message)
	}
}

// Success prints a success message
func (u *UI) Success(message string) {
	if !u.Quiet {
		ShowSuccess(message)
	}
}

// Input displays a text input prompt
func Input(message, defaultValue, help string) (string, error) {
	var result string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// Password displays a password input prompt
func Password(message, help string) (string, error) {
	var result string
	prompt := &survey.Password{
		Message: message,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// Select displays a selection prompt
func Select(message string, options []string) (string, error) {
	var result string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// AskConfirm displays a yes/no prompt
func AskConfirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// ShowMigrationPlan displays the processing order before the pipeline runs
func ShowMigrationPlan(order []string, deploy bool) {
	ShowHeader("Migration Plan")

	fmt.Printf("\n%s %d warehouses\n", ColorBold("Warehouses:"), len(order))
	if deploy {
		fmt.Printf("%s extract, rewrite, package, publish\n\n", ColorBold("Stages:"))
	} else {
		fmt.Printf("%s extract, rewrite, package\n\n", ColorBold("Stages:"))
	}

	for i, warehouse := range order {
		fmt.Printf("  %2d. %s\n", i+1, warehouse)
	}

	fmt.Println()
}

// ShowCycles displays discovered dependency cycles
func ShowCycles(cycles []string) {
	fmt.Printf("\n%s %d circular reference chain(s) found:\n",
		ColorError("CYCLES:"), len(cycles))
	for _, cycle := range cycles {
		fmt.Printf("  %s\n", ColorError(cycle))
	}
	fmt.Println()
}

// ShowLogo displays the application logo
func ShowLogo() {
	logo := `
                          _          _     _
  __      ____ _ _ __ ___| |__  _ __(_) __| | __ _  ___
  \ \ /\ / / _` + "`" + ` | '__/ _ \ '_ \| '__| |/ _` + "`" + ` |/ _` + "`" + ` |/ _ \
   \ V  V / (_| | | |  __/ |_) | |  | | (_| | (_| |  __/
    \_/\_/ \__,_|_|  \___|_.__/|_|  |_|\__,_|\__, |\___|
                                             |___/
        Move warehouses across platforms in order
`
	fmt.Println(ColorInfo(logo))
}

// ClearScreen clears the terminal screen
func ClearScreen() {
	fmt.Print("\033[H\033[2J")
}

// Indent indents every line of a block of text
func Indent(text string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
