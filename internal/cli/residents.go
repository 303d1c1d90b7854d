package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coproconnect/panel/internal/domain/model"
)

var (
	listPage     int
	listSize     int
	listSearch   string
	listBuilding string
	listStatus   string
	listSort     string
	listDesc     bool

	recordFile string

	historyBuilding string
	historyFloor    string
	historyDoor     string
)

var residentsCmd = &cobra.Command{
	Use:   "residents",
	Short: "Browse and edit resident records",
}

var residentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of resident records",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		dir := model.SortAsc
		if listDesc {
			dir = model.SortDesc
		}

		page, err := app.store.LoadPage(cmd.Context(), model.PageQuery{
			Page:      listPage,
			Size:      listSize,
			Search:    listSearch,
			Building:  listBuilding,
			LotStatus: listStatus,
			SortField: listSort,
			SortDir:   dir,
		})
		if err != nil {
			return err
		}

		if len(page.Residents) == 0 {
			fmt.Println("No resident records found.")
			return nil
		}

		rows := make([][]string, 0, len(page.Residents))
		for _, r := range page.Residents {
			rows = append(rows, []string{
				r.ID,
				r.LotID,
				r.Building,
				r.Floor,
				r.Door,
				r.LotStatus,
				r.OwnerName,
				fmt.Sprintf("%d", len(r.Occupants)),
				fmt.Sprintf("%d", len(r.HappixAccounts)),
			})
		}
		renderTable(os.Stdout,
			[]string{"ID", "Lot", "Building", "Floor", "Door", "Status", "Owner", "Occupants", "Happix"},
			rows)

		fmt.Printf("\nPage %d of %d (%d records)\n",
			page.CurrentPage+1, page.TotalPages, page.TotalElements)
		return nil
	},
}

var residentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one resident record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		residents, err := app.store.LoadAll(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range residents {
			if r.ID == args[0] {
				return printJSON(r)
			}
		}
		return fmt.Errorf("no resident record with id %q", args[0])
	},
}

var residentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a resident record from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := readRecordFile(recordFile)
		if err != nil {
			return err
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		created, err := app.store.Create(cmd.Context(), record)
		if err != nil {
			return err
		}

		fmt.Println(color.GreenString("Created record %s.", created.ID))
		return nil
	},
}

var residentsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace a resident record from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := readRecordFile(recordFile)
		if err != nil {
			return err
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		updated, err := app.store.Update(cmd.Context(), record)
		if err != nil {
			return err
		}

		fmt.Println(color.GreenString("Updated record %s.", updated.ID))
		return nil
	},
}

var residentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a resident record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Println(color.GreenString("Deleted record %s.", args[0]))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the change history of one apartment",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		entries, err := app.client.FetchApartmentHistory(cmd.Context(), historyBuilding, historyFloor, historyDoor)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No history for this apartment.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %s  %s\n", e.ChangedAt, color.CyanString(e.ActionType), e.Description)
			for _, c := range e.Changes {
				fmt.Printf("    %-12s %s: %s -> %s\n",
					c.Category, c.FieldLabel, derefOr(c.OldValue, "-"), derefOr(c.NewValue, "-"))
			}
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		stats, err := app.client.FetchStatistics(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Lots:              %d (%d occupied, %d vacant)\n",
			stats.TotalLots, stats.OccupiedLots, stats.VacantLots)
		fmt.Printf("Buildings:         %d\n", stats.TotalBuildings)
		fmt.Printf("Occupants:         %d (%.1f per lot)\n", stats.TotalOccupants, stats.AvgOccupants)
		fmt.Printf("Happix accounts:   %d\n", stats.TotalHappix)

		if len(stats.StatusCount) > 0 {
			fmt.Println("\nLots by status:")
			printCountMap(stats.StatusCount)
		}
		if len(stats.BuildingCount) > 0 {
			fmt.Println("\nLots by building:")
			printCountMap(stats.BuildingCount)
		}
		if len(stats.HappixByType) > 0 {
			fmt.Println("\nHappix accounts by type:")
			printCountMap(stats.HappixByType)
		}
		return nil
	},
}

// readRecordFile loads a resident record from a JSON file, or stdin when the
// path is "-".
func readRecordFile(path string) (model.Resident, error) {
	if path == "" {
		return model.Resident{}, fmt.Errorf("a record file is required, pass --file")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Resident{}, fmt.Errorf("read record file: %w", err)
	}

	var record model.Resident
	if err := json.Unmarshal(data, &record); err != nil {
		return model.Resident{}, fmt.Errorf("parse record file: %w", err)
	}
	return record, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printCountMap(counts map[string]int64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
}

func derefOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

func init() {
	residentsListCmd.Flags().IntVar(&listPage, "page", 0, "zero-based page index")
	residentsListCmd.Flags().IntVar(&listSize, "size", 0, "page size (default from settings)")
	residentsListCmd.Flags().StringVar(&listSearch, "search", "", "free-text search")
	residentsListCmd.Flags().StringVar(&listBuilding, "building", "", "filter by building")
	residentsListCmd.Flags().StringVar(&listStatus, "status", "", "filter by lot status")
	residentsListCmd.Flags().StringVar(&listSort, "sort", "", "sort field")
	residentsListCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")

	residentsCreateCmd.Flags().StringVarP(&recordFile, "file", "f", "", "JSON record file (use - for stdin)")
	residentsUpdateCmd.Flags().StringVarP(&recordFile, "file", "f", "", "JSON record file (use - for stdin)")

	historyCmd.Flags().StringVar(&historyBuilding, "building", "", "building")
	historyCmd.Flags().StringVar(&historyFloor, "floor", "", "floor")
	historyCmd.Flags().StringVar(&historyDoor, "door", "", "door")
	_ = historyCmd.MarkFlagRequired("building")
	_ = historyCmd.MarkFlagRequired("floor")
	_ = historyCmd.MarkFlagRequired("door")

	residentsCmd.AddCommand(residentsListCmd)
	residentsCmd.AddCommand(residentsShowCmd)
	residentsCmd.AddCommand(residentsCreateCmd)
	residentsCmd.AddCommand(residentsUpdateCmd)
	residentsCmd.AddCommand(residentsDeleteCmd)

	rootCmd.AddCommand(residentsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}
