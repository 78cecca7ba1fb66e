package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/salescube"
	"github.com/hupe1980/salescube/keys"
	"github.com/hupe1980/salescube/model"
	"github.com/hupe1980/salescube/query"
)

var (
	filterFlags   query.Filter
	allowClients  []string
	columns       []string
	countOnly     bool
	positiveOnly  bool
	defaultFields = []string{
		model.FieldClient, model.FieldSellerCode, model.FieldOrderDate,
		model.FieldProduct, model.FieldSupplierCode, model.FieldPasta,
		model.FieldValue, model.FieldSaleType, model.FieldBranch,
	}
)

var queryCmd = &cobra.Command{
	Use:   "query <table>",
	Short: "Filter an indexed table",
	Example: `  salescube query detailed --supplier 707 --sale-type 1 --sale-type 9
  salescube query history -s s3://bucket/payload --seller 0102 --count
  salescube query detailed --branch 5 --positive`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&filterFlags.Branch, "branch", "", `Branch code ("ambas" for all)`)
	f.StringVar(&filterFlags.Client, "client", "", "Client code")
	f.StringVar(&filterFlags.City, "city", "", "City")
	f.StringVar(&filterFlags.Pasta, "pasta", "", "Pasta")
	f.StringSliceVar(&filterFlags.SaleTypes, "sale-type", nil, "Sale type (repeatable)")
	f.StringSliceVar(&filterFlags.Suppliers, "supplier", nil, "Supplier code (repeatable)")
	f.StringSliceVar(&filterFlags.Products, "product", nil, "Product code (repeatable)")
	f.StringSliceVar(&filterFlags.Sellers, "seller", nil, "Seller code (repeatable)")
	f.StringSliceVar(&filterFlags.Supervisors, "supervisor", nil, "Supervisor name (repeatable)")
	f.StringSliceVar(&allowClients, "allow-client", nil, "Restrict results to these clients (repeatable)")
	f.StringSliceVar(&columns, "column", nil, "Columns to print (repeatable)")
	f.BoolVar(&countOnly, "count", false, "Print only the number of matching rows")
	f.BoolVar(&positiveOnly, "positive", false, "Print the clients with a positive transaction")
}

func runQuery(cmd *cobra.Command, args []string) error {
	name := model.TableName(args[0])

	opts, err := engineOptions(cmd)
	if err != nil {
		return err
	}
	eng := salescube.New(opts...)
	// Clients feed the city fallback, products the pasta backfill.
	if err := eng.Load(cmd.Context(), name, model.TableClients, model.TableProducts); err != nil {
		return err
	}
	if _, ok := eng.Table(name); !ok {
		return fmt.Errorf("%w: %s", salescube.ErrNotFound, name)
	}

	f := filterFlags
	if len(allowClients) > 0 {
		f.ClientAllowList = make(map[string]struct{}, len(allowClients))
		for _, c := range allowClients {
			f.ClientAllowList[keys.NormalizeKey(c)] = struct{}{}
		}
	}

	switch {
	case countOnly:
		n, err := eng.Count(name, f)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(stdout, map[string]int{"count": n})
		}
		_, err = fmt.Fprintln(stdout, n)
		return err

	case positiveOnly:
		clients, err := eng.PositiveClients(name, f)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(stdout, clients)
		}
		rows := make([][]any, len(clients))
		for i, c := range clients {
			rows[i] = []any{c}
		}
		renderRows(stdout, []string{"CLIENT"}, rows, limit)
		return nil
	}

	result, err := eng.Query(name, f)
	if err != nil {
		return err
	}
	fields := columns
	if len(fields) == 0 {
		fields = defaultFields
	}

	if jsonOutput {
		out := make([]map[string]any, len(result))
		for i, r := range result {
			rec := make(map[string]any, len(fields))
			for _, field := range fields {
				if v, ok := r.Get(field); ok {
					rec[field] = v
				}
			}
			out[i] = rec
		}
		return writeJSON(stdout, out)
	}

	rows := make([][]any, len(result))
	for i, r := range result {
		row := make([]any, len(fields)+1)
		row[0] = r.Index()
		for j, field := range fields {
			row[j+1] = r.String(field)
		}
		rows[i] = row
	}
	header := append([]string{"ROW"}, fields...)
	renderRows(stdout, header, rows, limit)
	_, err = fmt.Fprintf(stdout, "%d rows (%s)\n", len(result), strings.ToLower(string(name)))
	return err
}
