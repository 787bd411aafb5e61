package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/optics-dcs/miz-import/internal/archive"
	"github.com/optics-dcs/miz-import/internal/config"
	"github.com/optics-dcs/miz-import/internal/database"
	"github.com/optics-dcs/miz-import/internal/geo"
	"github.com/optics-dcs/miz-import/internal/importer"
	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/internal/model/convert"
	"github.com/optics-dcs/miz-import/internal/parser"
	"github.com/optics-dcs/miz-import/internal/session"
	"github.com/optics-dcs/miz-import/internal/tree"
	"github.com/optics-dcs/miz-import/pkg/core"
	"github.com/spf13/cobra"
)

func newParser() *parser.Parser {
	return parser.NewParser(Logger).WithMetrics(Metrics)
}

func parsePackageID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid package id %q", s)
	}
	return uint(id), nil
}

func newInspectCmd() *cobra.Command {
	var entries bool
	cmd := &cobra.Command{
		Use:   "inspect <file.miz>",
		Short: "Print a summary of a mission archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if entries {
				names, err := archive.List(args[0])
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			m, err := newParser().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSummary(out, m)
			return nil
		},
	}
	cmd.Flags().BoolVar(&entries, "entries", false, "list the archive entries instead")
	return cmd
}

func printSummary(out io.Writer, m *core.Mission) {
	fmt.Fprintf(out, "Sortie:     %s\n", m.Sortie)
	fmt.Fprintf(out, "Terrain:    %s\n", m.Terrain)
	fmt.Fprintf(out, "Start:      %s\n", m.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Bullseye:   blue %s, red %s\n",
		geo.FormatDMS(geo.ToLatLng(m.BullseyeBlue, m.Projection), false),
		geo.FormatDMS(geo.ToLatLng(m.BullseyeRed, m.Projection), false))
	fmt.Fprintf(out, "Weather:    %s, QNH %g, %g C, visibility %g m\n",
		m.Weather.Name, m.Weather.QNH, m.Weather.Temperature, m.Weather.VisibilityDistance)
	if len(m.UsedModules) > 0 {
		fmt.Fprintf(out, "Modules:    %s\n", strings.Join(m.UsedModules, ", "))
	}

	fmt.Fprintf(out, "Groups:     %d (%d with human seats)\n", len(m.AircraftGroups), len(m.HumanGroups()))
	for _, g := range m.AircraftGroups {
		human := ""
		if g.HasHuman() {
			human = " *"
		}
		fmt.Fprintf(out, "  %-4d %-24s %-6s %-10s %-8s %d units, %d waypoints%s\n",
			g.GroupID, g.Name, g.Coalition, g.Country, g.Task, len(g.Units), len(g.Waypoints), human)
	}
}

func newTreeCmd() *cobra.Command {
	var (
		live     bool
		outPath  string
		compress string
	)
	cmd := &cobra.Command{
		Use:   "tree <file.miz>",
		Short: "Print the selection tree of a mission archive as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			compression, err := parseCompression(compress)
			if err != nil {
				return err
			}
			root, err := buildTree(cmd.Context(), newParser(), args[0], live)
			if err != nil {
				return err
			}
			data, err := tree.Marshal(root)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outPath, data, compression)
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "use the live scheme (human flights only)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&compress, "compress", CompressNone, "output compression: none, gzip or zstd")
	return cmd
}

func newStageCmd() *cobra.Command {
	var (
		live      bool
		packageID string
	)
	cmd := &cobra.Command{
		Use:   "stage <file.miz>",
		Short: "Project a mission archive and keep the tree for a later commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pkgID, err := parsePackageID(packageID)
			if err != nil {
				return err
			}
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			if _, err := svc.store.GetPackage(ctx, pkgID); err != nil {
				return err
			}
			if _, ok := svc.sessions.(*session.MemoryStore); ok {
				Logger.Warn("Sessions are kept in memory and end with this process")
			}

			root, err := buildTree(ctx, newParser(), args[0], live)
			if err != nil {
				return err
			}
			snap, err := session.NewSnapshot(root, pkgID, args[0])
			if err != nil {
				return err
			}
			id, err := svc.sessions.Put(ctx, snap)
			if err != nil {
				return err
			}
			Logger.Info("Staged mission", "session", id, "file", args[0], "package", pkgID, "scheme", snap.Scheme)
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "use the live scheme (human flights only)")
	cmd.Flags().StringVar(&packageID, "package", "", "id of the package the selection is added to")
	_ = cmd.MarkFlagRequired("package")
	return cmd
}

func newCommitCmd() *cobra.Command {
	var (
		selected []string
		discard  bool
	)
	cmd := &cobra.Command{
		Use:   "commit <session-id>",
		Short: "Add nodes of a staged tree to its package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			snap, err := svc.sessions.Get(ctx, args[0])
			if err != nil {
				return err
			}
			root, err := snap.Root()
			if err != nil {
				return err
			}
			pkg, err := svc.store.GetPackage(ctx, snap.PackageID)
			if err != nil {
				return err
			}

			res, err := svc.importer().AddToPackage(ctx, root, splitIDs(selected), pkg)
			if err != nil {
				return err
			}
			if discard {
				if err := svc.sessions.Delete(ctx, snap.ID); err != nil {
					Logger.Warn("Failed to discard session", "session", snap.ID, "error", err)
				}
			}
			return reportResult(cmd.OutOrStdout(), pkg, res)
		},
	}
	cmd.Flags().StringSliceVar(&selected, "select", nil, "tree node ids to add (repeatable, comma separated)")
	cmd.Flags().BoolVar(&discard, "discard", false, "delete the session after committing")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		live      bool
		packageID string
		selected  []string
	)
	cmd := &cobra.Command{
		Use:   "import <file.miz>",
		Short: "Project a mission archive and add the selected nodes to a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pkgID, err := parsePackageID(packageID)
			if err != nil {
				return err
			}
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			pkg, err := svc.store.GetPackage(ctx, pkgID)
			if err != nil {
				return err
			}
			root, err := buildTree(ctx, newParser(), args[0], live)
			if err != nil {
				return err
			}
			res, err := svc.importer().AddToPackage(ctx, root, splitIDs(selected), pkg)
			if err != nil {
				return err
			}
			return reportResult(cmd.OutOrStdout(), pkg, res)
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "use the live scheme (human flights only)")
	cmd.Flags().StringVar(&packageID, "package", "", "id of the package the selection is added to")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "tree node ids to add (repeatable, comma separated)")
	_ = cmd.MarkFlagRequired("package")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}

// reportResult prints the created flights and failed ids. Failures make the command fail.
func reportResult(out io.Writer, pkg *model.Package, res importer.Result) error {
	for _, f := range res.Flights {
		fmt.Fprintf(out, "flight %d %q added to package %d\n", f.ID, f.Callsign, pkg.ID)
	}
	if len(res.Failed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(res.Failed))
	for id := range res.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(out, "failed %s: %v\n", id, res.Failed[id])
	}
	return fmt.Errorf("%d of the selected ids failed", len(ids))
}

func newPackageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package",
		Short: "Manage packages",
	}
	cmd.AddCommand(newPackageCreateCmd(), newPackageShowCmd())
	return cmd
}

func newPackageCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			pkg := &model.Package{Name: args[0]}
			if err := svc.store.CreatePackage(cmd.Context(), pkg); err != nil {
				return err
			}
			Logger.Info("Created package", "id", pkg.ID, "name", pkg.Name)
			fmt.Fprintln(cmd.OutOrStdout(), pkg.ID)
			return nil
		},
	}
}

func newPackageShowCmd() *cobra.Command {
	var (
		outPath  string
		compress string
	)
	cmd := &cobra.Command{
		Use:   "show <package-id>",
		Short: "Print a package and its flights as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			compression, err := parseCompression(compress)
			if err != nil {
				return err
			}
			pkgID, err := parsePackageID(args[0])
			if err != nil {
				return err
			}
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			pkg, err := svc.store.GetPackage(ctx, pkgID)
			if err != nil {
				return err
			}
			flights, err := svc.store.FlightsByPackage(ctx, pkgID)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(convert.PackageToCore(*pkg, flights), "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outPath, append(data, '\n'), compression)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&compress, "compress", CompressNone, "output compression: none, gzip or zstd")
	return cmd
}

func newSeedAirframesCmd() *cobra.Command {
	var (
		stations  int
		multicrew bool
	)
	cmd := &cobra.Command{
		Use:   "seed-airframes <name=dcs-type>...",
		Short: "Add or update catalog airframes and their editor type strings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mappings, err := parseMappings(args)
			if err != nil {
				return err
			}
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			for _, m := range mappings {
				dcsName := m.Value
				a := &model.Airframe{Name: m.Name, Stations: stations, Multicrew: multicrew, DCSNameID: &dcsName}
				if err := svc.store.SeedAirframe(cmd.Context(), a); err != nil {
					return fmt.Errorf("seeding airframe %s: %w", m.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "airframe %d %q <- %s\n", a.ID, a.Name, dcsName)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&stations, "stations", 2, "stations per airframe")
	cmd.Flags().BoolVar(&multicrew, "multicrew", false, "mark the airframes as multicrew")
	return cmd
}

func newSeedWaypointTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-waypoint-types <name=dcs-type>...",
		Short: "Add or update catalog waypoint types and their editor type strings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mappings, err := parseMappings(args)
			if err != nil {
				return err
			}
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			for _, m := range mappings {
				wt := &model.WaypointType{Name: m.Name, DCSMapping: m.Value}
				if err := svc.store.SeedWaypointType(cmd.Context(), wt); err != nil {
					return fmt.Errorf("seeding waypoint type %s: %w", m.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "waypoint type %d %q <- %s\n", wt.ID, wt.Name, wt.DCSMapping)
			}
			return nil
		},
	}
}

func newPruneSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired staged sessions from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			store, ok := svc.sessions.(*session.GormStore)
			if !ok {
				return fmt.Errorf("sessions are not kept in a database")
			}
			removed, err := store.Prune(cmd.Context())
			if err != nil {
				return err
			}
			Logger.Info("Pruned sessions", "removed", removed)
			fmt.Fprintln(cmd.OutOrStdout(), removed)
			return nil
		},
	}
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <out.db>",
		Short: "Copy the SQLite planning database to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			if svc.db() == nil {
				return fmt.Errorf("storage type %q has no database to back up", config.GetStorageConfig().Type)
			}
			if err := database.DumpToDisk(svc.db(), args[0]); err != nil {
				return err
			}
			Logger.Info("Backed up database", "path", args[0])
			return nil
		},
	}
}
