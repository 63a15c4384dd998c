package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-report-bot/internal/transport/console"
)

// consoleCmd runs the dialogue on stdin/stdout for a single operator.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Fill a report in the terminal",
	Long: `The console command runs the same dialogue as the bot, reading answers
from standard input. Delivered workbooks are saved into --out.

Input can be piped:
  printf '/start_report\n12\n2\n' | reportbot console`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(mainConfig)
		if err != nil {
			return err
		}

		tr := console.New(os.Stdin, os.Stdout, mainConfig.Export.ConsoleDir, a.logger)
		return a.run(cmd.Context(), tr)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().String("out", "./reports", "Directory for delivered workbooks")
	bindFlag(consoleCmd, "export.console_dir", "out")
}
