package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var happixCmd = &cobra.Command{
	Use:   "happix",
	Short: "Browse Happix badge accounts",
}

var happixListCmd = &cobra.Command{
	Use:   "list",
	Short: "List badge accounts across all lots",
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

		var rows [][]string
		for _, r := range residents {
			for _, acct := range r.HappixAccounts {
				rows = append(rows, []string{
					r.LotID,
					r.Building,
					acct.Name,
					acct.Type.Label(),
					acct.Relation,
					acct.Terminal,
					acct.Mobile,
				})
			}
		}

		if len(rows) == 0 {
			fmt.Println("No Happix badge accounts found.")
			return nil
		}

		renderTable(os.Stdout,
			[]string{"Lot", "Building", "Name", "Type", "Relation", "Terminal", "Mobile"},
			rows)
		fmt.Printf("\n%d badge accounts across %d lots\n", len(rows), len(residents))
		return nil
	},
}

func init() {
	happixCmd.AddCommand(happixListCmd)
	rootCmd.AddCommand(happixCmd)
}
