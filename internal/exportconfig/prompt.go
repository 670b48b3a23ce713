package exportconfig

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// PasscodePrompter asks the user for a one-time passcode.
type PasscodePrompter func() (string, error)

// SurveyPasscodePrompter reads the passcode from the terminal without echo.
func SurveyPasscodePrompter() (string, error) {
	var code string
	prompt := &survey.Password{
		Message: "Two-factor authentication code (leave empty to skip):",
	}
	if err := survey.AskOne(prompt, &code); err != nil {
		return "", fmt.Errorf("reading passcode: %w", err)
	}
	return strings.TrimSpace(code), nil
}
