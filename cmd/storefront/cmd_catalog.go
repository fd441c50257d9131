package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	productdom "storefront/internal/domain/product"
	"storefront/internal/infra/config"
	"storefront/internal/platform/di"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the product catalog",
}

// storefront catalog list: print the catalog as a table.
var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog products",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalogFromFlags(cmd)
		if err != nil {
			return err
		}
		category, _ := cmd.Flags().GetString("category")
		ps := cat.All()
		if category != "" {
			ps = cat.ByCategory(category)
		}
		return printProducts(cmd.OutOrStdout(), ps)
	},
}

func init() {
	catalogCmd.PersistentFlags().String("catalog", "", "catalog JSON file (default: CATALOG_PATH or the embedded catalog)")
	catalogListCmd.Flags().String("category", "", "only list this category")
	catalogCmd.AddCommand(catalogListCmd)
}

func catalogFromFlags(cmd *cobra.Command) (*productdom.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		path = config.Load(envFile).CatalogPath
	}
	return di.LoadCatalog(path)
}

func printProducts(out io.Writer, ps []productdom.Product) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tPRICE\tSTOCK\tNAME")
	for _, p := range ps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Category.Name, p.Price.StringFixed(2), p.Stock, p.Name)
	}
	return w.Flush()
}
