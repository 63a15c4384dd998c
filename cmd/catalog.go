// =============================================================================
// Sales Report Bot - Catalog Command
// =============================================================================
//
// This file defines the 'catalog' command, which loads the configured
// catalog, validates it and prints it. Use it to check a catalog file before
// pointing the bot at it, or to dump the built-in catalog as a starting point.
//
// COMMAND USAGE:
//   reportbot catalog                          # built-in catalog, as a table
//   reportbot catalog --catalog ./c.xlsx       # validate a workbook
//   reportbot catalog --format yaml > c.yaml   # dump as YAML
//   reportbot catalog "Кефир 1л"               # check single products
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-report-bot/internal/catalog"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// narrow measures Cyrillic as one column regardless of the host locale.
var narrow = &runewidth.Condition{EastAsianWidth: false}

// catalogFormat selects the output of the catalog command.
var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog [product...]",
	Short: "Validate and print the product catalog",
	Long: `The catalog command loads and validates the configured catalog and prints it.
With product names as arguments only those products are printed, and an
unknown name is an error.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(mainConfig.Catalog.File)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch catalogFormat {
		case "yaml":
			return cat.WriteYAML(out)
		case "text":
			return printCatalog(out, cat, mainConfig.Export.Currency, args...)
		default:
			return fmt.Errorf("unknown format %q (expected text or yaml)", catalogFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVar(&catalogFormat, "format", "text", "Output format (text, yaml)")
}

// printCatalog writes one line per product with an exchange marker. When
// names are given only those products are written.
func printCatalog(w io.Writer, cat *catalog.Catalog, currency string, names ...string) error {
	const nameWidth = 40

	products := cat.Products()
	if len(names) > 0 {
		products = make([]types.Product, 0, len(names))
		for _, name := range names {
			p, ok := cat.Lookup(name)
			if !ok {
				return fmt.Errorf("product %q is not in the catalog", name)
			}
			products = append(products, p)
		}
	}

	for i, p := range products {
		marker := ""
		if p.ExchangeRequired {
			marker = "  [обмен]"
		}
		if _, err := fmt.Fprintf(w, "%3d. %s %8.0f %s%s\n",
			i+1,
			narrow.FillRight(narrow.Truncate(p.Name, nameWidth, ""), nameWidth),
			p.Price,
			currency,
			marker,
		); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nProducts: %d, exchange required: %d\n", cat.Len(), cat.ExchangeCount())
	return err
}
