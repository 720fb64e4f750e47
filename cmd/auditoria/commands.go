package main

import (
	"context"
	"log/slog"

	"github.com/celerix-dev/auditoria/internal/app"
	"github.com/celerix-dev/auditoria/internal/platform/config"
	"github.com/celerix-dev/auditoria/internal/platform/logger"
	"github.com/charmbracelet/huh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	location   string
	assumeYes  bool

	cfg config.Config
	log *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "auditoria",
		Short: "Track audit findings per store location",
		Long: `auditoria records, filters, imports and exports audit rows for each
store location (PDV), on this machine or through a shared document store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			log = logger.New(cfg.Log)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe, // cmd_serve.go
	}

	locationsCmd = &cobra.Command{
		Use:   "locations",
		Short: "List the known store locations",
		Args:  cobra.NoArgs,
		Run:   runLocations,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List a location's rows, optionally searched and filtered",
		Args:  cobra.NoArgs,
		RunE:  runList, // cmd_rows.go
	}

	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a row to a location",
		Args:  cobra.NoArgs,
		RunE:  runAdd,
	}

	deleteCmd = &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete the row addressed by ref (see list)",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete every locally stored row of a location",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}

	importCmd = &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Merge rows from a CSV or spreadsheet file ahead of the existing ones",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	exportCmd = &cobra.Command{
		Use:       "export <csv|xlsx>",
		Short:     "Write a location's rows to a CSV or spreadsheet file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"csv", "xlsx"},
		RunE:      runExport,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Copy every location's rows from the configured backend into another",
		Args:  cobra.NoArgs,
		RunE:  runMigrate, // cmd_migrate.go
	}

	adminsCmd = &cobra.Command{
		Use:   "admins",
		Short: "Show the admin allow-list",
		Args:  cobra.NoArgs,
		RunE:  runAdmins,
	}
	adminsSetCmd = &cobra.Command{
		Use:   "set <email>...",
		Short: "Replace the admin allow-list in the document store",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAdminsSet,
	}
)

var (
	listQuery   string
	listByID    bool
	listByCat   bool
	listAll     bool
	listFilters map[string]string
	listJSON    bool
	addFields   map[string]string
	exportOut   string
	migrateTo   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&location, "location", "l", "", "store location (default: first location)")

	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "search text")
	listCmd.Flags().BoolVar(&listByID, "by-id", false, "search the id column")
	listCmd.Flags().BoolVar(&listByCat, "by-category", false, "search the categoria column")
	listCmd.Flags().BoolVar(&listAll, "everywhere", false, "search every column")
	listCmd.Flags().StringToStringVarP(&listFilters, "filter", "f", nil, "field=substring filters, e.g. -f situacao=pend")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")

	addCmd.Flags().StringToStringVar(&addFields, "set", nil, "field=value pairs, e.g. --set id=A1,categoria=Rede")

	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	clearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	migrateCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default: <location>_auditoria.<format>)")

	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendRemote, "destination backend: local, remote or embedded")

	adminsCmd.AddCommand(adminsSetCmd)
	rootCmd.AddCommand(serveCmd, locationsCmd, listCmd, addCmd, deleteCmd, clearCmd,
		importCmd, exportCmd, migrateCmd, adminsCmd)
}

// openApp builds the application context for one command.
func openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, cfg, log, prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	if location != "" {
		if err := a.SelectLocation(location); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// confirm asks a yes/no question unless --yes was given.
func confirm(title string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Sim").
		Negative("Não").
		Value(&ok).
		Run()
	return ok, err
}
