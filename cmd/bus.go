package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-report-bot/internal/transport/natsbus"
)

// busCmd serves the dialogue over NATS.
var busCmd = &cobra.Command{
	Use:   "bus",
	Short: "Serve the report dialogue over NATS",
	Long: `The bus command subscribes to --subject for JSON messages of the form
{"user_id":"42","text":"12"} and publishes replies to <reply-prefix>.<user_id>.
Workbooks are sent base64 encoded in the "data" field.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(mainConfig)
		if err != nil {
			return err
		}

		tr, err := natsbus.Connect(mainConfig.NATS.URL, natsbus.Options{
			Subject:     mainConfig.NATS.Subject,
			ReplyPrefix: mainConfig.NATS.ReplyPrefix,
			Logger:      a.logger,
		})
		if err != nil {
			return err
		}
		defer tr.Close()

		return a.run(cmd.Context(), tr)
	},
}

func init() {
	rootCmd.AddCommand(busCmd)

	busCmd.Flags().String("nats-url", "nats://127.0.0.1:4222", "NATS server URL")
	busCmd.Flags().String("subject", "reportbot.in", "Inbound subject")
	busCmd.Flags().String("reply-prefix", "reportbot.out", "Prefix of outbound subjects")

	bindFlag(busCmd, "nats.url", "nats-url")
	bindFlag(busCmd, "nats.subject", "subject")
	bindFlag(busCmd, "nats.reply_prefix", "reply-prefix")
}
