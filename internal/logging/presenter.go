// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	sferrors "sfkit/cli/internal/errors"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatOperationError renders a typed operation error with a title, a short
// explanation and a suggested next step chosen by its kind.
func FormatOperationError(err error) string {
	if err == nil {
		return ""
	}
	var title, hint string
	var causes []string

	switch sferrors.KindOf(err) {
	case sferrors.ConnectFailed:
		title = "Connection Failed"
		causes = []string{
			"The account identifier or user name is wrong",
			"Browser SSO was cancelled or timed out",
			"The technical account key does not match the registered public key",
		}
		hint = "Check --account, --user and --authenticator, or run 'sfkit auth show'"
	case sferrors.NotConnected:
		title = "No Session"
		hint = "Connect first: pass --dsn, --user or --tech-login"
	case sferrors.StatementFailed:
		title = "Statement Failed"
		causes = []string{
			"The SQL has a syntax error or references a missing object",
			"The role lacks privileges on the database, schema or table",
		}
		hint = "Re-run with --verbose to log the statements sent to the warehouse"
	case sferrors.ShardIO:
		title = "File Error"
		hint = "Check that the raw and full output directories are writable"
	case sferrors.InvalidArgument:
		title = "Invalid Arguments"
		hint = "Run the command with --help to see the expected flags"
	case sferrors.ConfirmationRequired:
		title = "Confirmation Required"
		hint = "Re-run interactively, or pass --yes to clear the whole table"
	case sferrors.NotebookFailed:
		title = "Notebook Failed"
		hint = "The notebook file was left unchanged; fix the failing cell and run again"
	case sferrors.NotifyFailed:
		title = "Notification Not Sent"
		hint = "Check the webhook URL and your network connection"
	default:
		title = "Error"
	}

	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	b.WriteString("\n\n")
	b.WriteString(Mask(err.Error()))
	b.WriteString("\n")
	if len(causes) > 0 {
		b.WriteString("\nThis usually happens when:\n")
		for _, c := range causes {
			b.WriteString("  • " + c + "\n")
		}
	}
	if hint != "" {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + hint))
		b.WriteString("\n")
	}
	return b.String()
}

// PresentOperationError prints FormatOperationError to stdout.
func PresentOperationError(err error) {
	fmt.Println()
	fmt.Println(FormatOperationError(err))
}
