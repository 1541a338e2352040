package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parley-labs/parley/manager"
	"github.com/parley-labs/parley/session"
)

var (
	listClient string
	listState  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		mds, err := eng.Sessions().List(cmd.Context(), manager.Filter{
			ClientID: listClient,
			State:    session.State(listState),
		})
		if err != nil {
			return err
		}
		if len(mds) == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCLIENT\tPERSONA\tTYPE\tSTATE\tMESSAGES\tUPDATED")
		for _, md := range mds {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				md.ID, md.ClientID, md.PersonaName, md.Type, md.State,
				md.MessageCount, md.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listClient, "client", "", "Filter by client identifier")
	listCmd.Flags().StringVar(&listState, "state", "", "Filter by lifecycle state")
}
