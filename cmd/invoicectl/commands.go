// AngelaMos | 2026
// commands.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/carterperez-dev/invoice-manager/internal/client"
)

type command func(ctx context.Context, c *client.Client, args []string, out io.Writer) error

var commands = map[string]command{
	"me":        cmdMe,
	"users":     cmdUsers,
	"customers": cmdCustomers,
	"invoices":  cmdInvoices,
	"summary":   cmdSummary,
	"export":    cmdExport,
	"pdf":       cmdPDF,
}

func listFlags(name string) (*client.ListOptions, *flag.FlagSet) {
	opts := &client.ListOptions{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.IntVar(&opts.Page, "page", 1, "page number")
	fs.IntVar(&opts.PageSize, "page-size", 20, "rows per page")
	fs.StringVar(&opts.Search, "search", "", "search text")

	switch name {
	case "users":
		fs.StringVar(&opts.Role, "role", "", "Admin, Accountant or Viewer")
	case "invoices", "export":
		fs.StringVar(&opts.Status, "status", "", "Draft, Sent, Paid or Overdue")
		fs.StringVar(&opts.Type, "type", "", "Prepaid, Postpaid or Test")
		fs.StringVar(&opts.CustomerID, "customer", "", "customer id")
	}

	return opts, fs
}

func parseList(name string, args []string) (client.ListOptions, error) {
	opts, fs := listFlags(name)
	if err := fs.Parse(args); err != nil {
		return client.ListOptions{}, err
	}
	return *opts, nil
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func footer(out io.Writer, page, totalPages, total int) {
	fmt.Fprintf(out, "page %d of %d (%d total)\n", page, totalPages, total)
}

func cmdMe(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
	u, err := c.Me(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s <%s>\nrole: %s\nid:   %s\n", u.Name, u.Email, u.Role, u.ID)
	return nil
}

func cmdUsers(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	opts, err := parseList("users", args)
	if err != nil {
		return err
	}

	page, err := c.ListUsers(ctx, opts)
	if err != nil {
		return err
	}

	tw := table(out)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.IsActive)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	footer(out, page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
	return nil
}

func cmdCustomers(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	opts, err := parseList("customers", args)
	if err != nil {
		return err
	}

	page, err := c.ListCustomers(ctx, opts)
	if err != nil {
		return err
	}

	tw := table(out)
	fmt.Fprintln(tw, "ID\tNAME\tCOMPANY\tEMAIL")
	for _, cust := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", cust.ID, cust.Name, cust.Company, cust.Email)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	footer(out, page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
	return nil
}

func cmdInvoices(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	opts, err := parseList("invoices", args)
	if err != nil {
		return err
	}

	page, err := c.ListInvoices(ctx, opts)
	if err != nil {
		return err
	}

	tw := table(out)
	fmt.Fprintln(tw, "ID\tCUSTOMER\tTYPE\tPERIOD\tSTATUS\tAMOUNT")
	for _, inv := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s..%s\t%s\t%s\n",
			inv.ID, inv.CustomerName, inv.Type,
			inv.StartDate, inv.EndDate,
			inv.Status, inv.Amount.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	footer(out, page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
	return nil
}

func cmdSummary(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
	s, err := c.Summary(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "invoices: %d\namount:   %s\npaid:     %d\noverdue:  %d\n\n",
		s.TotalInvoices, s.TotalAmount.StringFixed(2), s.PaidInvoices, s.OverdueInvoices)

	tw := table(out)
	fmt.Fprintln(tw, "STATUS\tCOUNT\tAMOUNT")
	for _, st := range s.ByStatus {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", st.Status, st.Count, st.Amount.StringFixed(2))
	}
	return tw.Flush()
}

func cmdExport(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	opts, fs := listFlags("export")
	format := fs.String("format", "csv", "csv or xlsx")
	path := fs.String("o", "", "output file (default invoices-YYYYMMDD.<format>)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	body, err := c.Export(ctx, *format, *opts)
	if err != nil {
		return err
	}

	if *path == "" {
		*path = fmt.Sprintf("invoices-%s.%s", time.Now().Format("20060102"), *format)
	}
	return writeOutput(out, *path, body)
}

func cmdPDF(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	path := fs.String("o", "", "output file (default <id>.pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("pdf needs exactly one invoice id")
	}

	id := fs.Arg(0)
	body, err := c.InvoicePDF(ctx, id)
	if err != nil {
		return err
	}

	if *path == "" {
		*path = id + ".pdf"
	}
	return writeOutput(out, *path, body)
}

// writeOutput writes body to path, or to out when path is "-".
func writeOutput(out io.Writer, path string, body []byte) error {
	if path == "-" {
		_, err := out.Write(body)
		return err
	}

	if err := os.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(body))
	return nil
}
