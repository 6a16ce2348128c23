package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func printOK(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), text.FgGreen.Sprint("OK ")+fmt.Sprintf(format, args...))
}

func printNote(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), text.FgYellow.Sprintf(format, args...))
}

func printLine(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func printBlock(cmd *cobra.Command, s string) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), s)
}
