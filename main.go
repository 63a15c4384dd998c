// =============================================================================
// Sales Report Bot - Main Entry Point
// =============================================================================
//
// This is the main entry point for the reportbot CLI. It delegates to the
// Cobra commands in the cmd package.
//
// USAGE:
//   reportbot serve     - Run the Telegram bot
//   reportbot console   - Fill a report in the terminal
//   reportbot bus       - Serve the dialogue over NATS
//   reportbot catalog   - Validate and print the product catalog
//   reportbot version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra) and wiring
//   - internal/catalog     : product catalog and its loaders
//   - internal/session     : per-user session store
//   - internal/collector   : the report dialogue state machine
//   - internal/report      : aggregation of collected rows
//   - internal/export      : text and XLSX renditions
//   - internal/reporter    : report delivery pipeline
//   - internal/bot         : command handling and per-user dispatch
//   - internal/transport/  : Telegram, console and NATS transports
//   - pkg/utils            : spool and file helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-report-bot/cmd"
)

func main() {
	cmd.Execute()
}
