// =============================================================================
// Sales Report Bot - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the bot on Telegram.
//
// COMMAND USAGE:
//   reportbot serve [flags]
//
// FLAGS:
//   --poll-timeout : Long-poll timeout in seconds
//   --spool-dir    : Write workbooks to disk before upload
//
// The bot token comes from telegram.token in config.yaml,
// REPORTBOT_TELEGRAM_TOKEN or TOKEN.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-report-bot/internal/transport/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the report bot on Telegram",
	Long: `The serve command connects to the Telegram Bot API and answers operators
until interrupted. Every operator has an independent report session kept in
memory; sessions do not survive a restart.

Commands understood by the bot:
  /start         greeting and instructions
  /help          instructions
  /start_report  begin a new report (discards an unfinished one)
  /cancel        abandon the current report`,

	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := mainConfig.RequireToken()
		if err != nil {
			return err
		}

		a, err := newApp(mainConfig)
		if err != nil {
			return err
		}

		tr, err := telegram.New(token, telegram.Options{
			PollTimeout: mainConfig.Telegram.PollTimeout,
			Debug:       mainConfig.Telegram.Debug,
			Logger:      a.logger,
		})
		if err != nil {
			return err
		}

		return a.run(cmd.Context(), tr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("poll-timeout", 60, "Long-poll timeout in seconds")
	serveCmd.Flags().String("spool-dir", "", "Write workbooks to this directory before upload")

	bindFlag(serveCmd, "telegram.poll_timeout", "poll-timeout")
	bindFlag(serveCmd, "export.spool_dir", "spool-dir")
}
