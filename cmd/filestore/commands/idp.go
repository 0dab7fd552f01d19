package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/filestore/display"
)

func newIdpCmd() *cobra.Command {
	idpCmd := &cobra.Command{
		Use:   "idp",
		Short: "List identity providers",
	}

	lsCmd := &cobra.Command{
		Use:   "ls <realm> [search]",
		Short: "List a realm's identity providers ordered by alias",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  withRuntime(runIdpLs),
	}
	addPageFlags(lsCmd)

	idpCmd.AddCommand(lsCmd)
	return idpCmd
}

func runIdpLs(cmd *cobra.Command, rt *runtime, args []string) error {
	realm, err := resolveRealm(rt, args[0])
	if err != nil {
		return err
	}
	p, err := rt.idps.Create(rt.session)
	if err != nil {
		return err
	}

	search := ""
	if len(args) == 2 {
		search = args[1]
	}
	first, _ := cmd.Flags().GetInt("first")
	found := collect(p.GetAllStream(realm.ID, search, first, rt.maxResults(cmd)))

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, found)
	}

	tbl := display.NewTable("ALIAS", "PROVIDER", "DISPLAY NAME", "ENABLED")
	for _, idp := range found {
		tbl.Row(idp.Alias, idp.ProviderID, idp.DisplayName, strconv.FormatBool(idp.Enabled))
	}
	if err := tbl.Render(out, "No identity providers found"); err != nil {
		return err
	}
	if total := p.Count(realm.ID); search == "" && total > len(found) {
		fmt.Fprintf(out, "Showing %d of %d\n", len(found), total)
	}
	return nil
}
