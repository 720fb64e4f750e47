package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/celerix-dev/auditoria/internal/exporter"
	"github.com/celerix-dev/auditoria/internal/search"
	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/spf13/cobra"
)

func runLocations(cmd *cobra.Command, args []string) {
	for _, l := range schema.Locations {
		fmt.Println(l)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	q := search.Query{Text: listQuery, MatchID: listByID, MatchCategory: listByCat, MatchAll: listAll}
	if q.Text != "" && !q.MatchID && !q.MatchCategory && !q.MatchAll {
		q.MatchAll = true
	}
	if err := search.Validate(listFilters); err != nil {
		return err
	}
	v, err := a.View(cmd.Context(), a.Location(), q, search.NewFilterSet(listFilters))
	if err != nil {
		return err
	}
	if listJSON {
		printJSON(v)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REF\t"+strings.Join(exporter.Header, "\t"))
	for _, r := range v.Rows {
		fmt.Fprintln(tw, r.Ref+"\t"+strings.Join(r.Values(), "\t"))
	}
	tw.Flush()
	fmt.Printf("\n%s (%s): %d of %d rows\n", v.Location, v.Mode, len(v.Rows), v.Total)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	var row schema.AuditRow
	for k, v := range addFields {
		if !row.Set(k, v) {
			return fmt.Errorf("unknown field %q (known: %s)", k, strings.Join(schema.Fields, ", "))
		}
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.Save(cmd.Context(), a.Location(), row)
	if err != nil {
		return err
	}
	printJSON(saved)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := confirm("Excluir este registro?")
	if err != nil || !ok {
		return err
	}
	if err := a.Delete(cmd.Context(), a.Location(), args[0]); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := confirm(fmt.Sprintf("Limpar todos os dados locais de %s?", a.Location()))
	if err != nil || !ok {
		return err
	}
	if err := a.Clear(cmd.Context(), a.Location()); err != nil {
		return err
	}
	fmt.Println("Dados locais limpos.")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Import(cmd.Context(), a.Location(), f.Name(), f)
	if err != nil {
		return err
	}
	fmt.Printf("Importado %d linhas para %s\n", n, a.Location())
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format := args[0]
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.Rows(cmd.Context(), a.Location())
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = exporter.FileName(a.Location(), format)
	}

	if format == "csv" {
		err = os.WriteFile(out, exporter.CSV(rows), 0644)
	} else {
		err = writeXLSX(out, rows)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%d rows written to %s\n", len(rows), out)
	return nil
}

func writeXLSX(path string, rows []schema.AuditRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.WriteXLSX(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runAdmins(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	printJSON(map[string]any{"emails": a.Admins().Emails(), "writable": a.Admins().Writable()})
	return nil
}

func runAdminsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Admins().Update(cmd.Context(), args); err != nil {
		return err
	}
	printJSON(a.Admins().Emails())
	return nil
}
