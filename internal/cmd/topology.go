package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ben0x539/eve-log-alert/internal/config"
	"github.com/ben0x539/eve-log-alert/internal/topology"
)

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Manage the jump graph used by NAME+N watches",
}

var topologyImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a YAML jump graph into the database",
	Long: `Import a YAML jump graph into the database.

The file maps each system to its neighbours:

  systems:
    UQ-PWD: [9-F0B2, 6-CZ49]
    9-F0B2: [UQ-PWD]

Jumps are undirected. Importing again only adds what is new.`,
	Args: cobra.ExactArgs(1),
	RunE: runTopologyImport,
}

var topologyLookupCmd = &cobra.Command{
	Use:   "lookup NAME RADIUS",
	Short: "List systems within RADIUS jumps of NAME",
	Args:  cobra.ExactArgs(2),
	RunE:  runTopologyLookup,
}

func init() {
	rootCmd.AddCommand(topologyCmd)
	topologyCmd.AddCommand(topologyImportCmd)
	topologyCmd.AddCommand(topologyLookupCmd)

	topologyCmd.PersistentFlags().String("db", "", "jump graph database (default: watch.topology)")
}

// topologyPath picks --db, falling back to the configured database.
func topologyPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("watch.topology")
	}
	if path == "" {
		return "", fmt.Errorf("no topology database: pass --db or set watch.topology")
	}
	return config.ExpandHome(path), nil
}

func runTopologyImport(cmd *cobra.Command, args []string) error {
	path, err := topologyPath(cmd)
	if err != nil {
		return err
	}

	graph, err := topology.LoadGraphFile(args[0])
	if err != nil {
		return err
	}

	store, err := topology.Open(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := store.Import(cmd.Context(), graph)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d systems and %d jumps into %s\n", stats.Systems, stats.Jumps, path)
	return nil
}

func runTopologyLookup(cmd *cobra.Command, args []string) error {
	radius, err := strconv.Atoi(args[1])
	if err != nil || radius < 0 {
		return fmt.Errorf("invalid radius %q: expected a non-negative integer", args[1])
	}

	path, err := topologyPath(cmd)
	if err != nil {
		return err
	}

	store, err := topology.Open(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	found, err := store.Within(cmd.Context(), args[0], radius)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range found {
		fmt.Fprintf(out, "%s\t%d\n", r.Name, r.Distance)
	}
	return nil
}
