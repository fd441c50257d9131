package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storefront/internal/domain/checkout"
	productdom "storefront/internal/domain/product"
)

// storefront quote cpu-r5-7600:2 gpu-rtx-4060: price a buy-now order.
var quoteCmd = &cobra.Command{
	Use:   "quote PRODUCT_ID[:QTY]...",
	Short: "Price catalog products offline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalogFromFlags(cmd)
		if err != nil {
			return err
		}
		lines, err := quoteLines(cat, args)
		if err != nil {
			return err
		}
		return printSummary(cmd.OutOrStdout(), checkout.Summarize(lines))
	},
}

func init() {
	quoteCmd.Flags().String("catalog", "", "catalog JSON file (default: CATALOG_PATH or the embedded catalog)")
}

// quoteLines resolves "id[:qty]" arguments against the catalog, enforcing
// the 1..stock quantity bound.
func quoteLines(cat *productdom.Catalog, args []string) ([]checkout.Line, error) {
	lines := make([]checkout.Line, 0, len(args))
	for _, arg := range args {
		id, qtyStr, hasQty := strings.Cut(arg, ":")
		qty := 1
		if hasQty {
			n, err := strconv.Atoi(qtyStr)
			if err != nil {
				return nil, fmt.Errorf("quote: %q: bad quantity: %w", arg, err)
			}
			qty = n
		}
		p, err := cat.ByID(id)
		if err != nil {
			return nil, fmt.Errorf("quote: %q: %w", id, err)
		}
		q, err := checkout.SelectQuantity(qty, p.Stock)
		if err != nil {
			return nil, fmt.Errorf("quote: %q: %w", id, err)
		}
		lines = append(lines, checkout.Line{Price: p.Price, Quantity: q})
	}
	return lines, nil
}

func printSummary(out io.Writer, s checkout.Summary) error {
	_, err := fmt.Fprintf(out, "Items:    %d\nSubtotal: %s\nShipping: %s\nTax:      %s\nTotal:    %s\n",
		s.ItemCount,
		s.Subtotal.StringFixed(2),
		s.Shipping.StringFixed(2),
		s.Tax.StringFixed(2),
		s.Total.StringFixed(2),
	)
	return err
}
