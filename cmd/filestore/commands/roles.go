package commands

import (
	"iter"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/filestore/display"
	"github.com/teranos/filestore/model"
)

func newRolesCmd() *cobra.Command {
	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "Search realm and client roles",
	}

	searchCmd := &cobra.Command{
		Use:   "search <realm> [term]",
		Short: "List roles whose name or description contains term",
		Long: `List a realm's roles ordered by name. With a term, only roles whose name or
description contains it (case-insensitive). --client switches to that client's roles.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withRuntime(runRolesSearch),
	}
	searchCmd.Flags().String("client", "", "Client id whose roles to search")
	searchCmd.Flags().Bool("composites", false, "Show the roles each role aggregates")
	addPageFlags(searchCmd)

	rolesCmd.AddCommand(searchCmd)
	return rolesCmd
}

func runRolesSearch(cmd *cobra.Command, rt *runtime, args []string) error {
	realm, err := resolveRealm(rt, args[0])
	if err != nil {
		return err
	}
	p, err := rt.roles.Create(rt.session)
	if err != nil {
		return err
	}

	term := ""
	if len(args) == 2 {
		term = args[1]
	}
	client, _ := cmd.Flags().GetString("client")
	first, _ := cmd.Flags().GetInt("first")
	max := rt.maxResults(cmd)

	var seq iter.Seq[*model.Role]
	if client != "" {
		seq = p.SearchForClientRolesStream(realm.ID, client, term, first, max)
	} else {
		seq = p.SearchForRolesStream(realm.ID, term, first, max)
	}
	found := collect(seq)

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, found)
	}

	showComposites, _ := cmd.Flags().GetBool("composites")
	columns := []string{"ID", "NAME", "CLIENT", "DESCRIPTION"}
	if showComposites {
		columns = append(columns, "COMPOSITES")
	}
	tbl := display.NewTable(columns...)
	for _, r := range found {
		row := []string{r.ID, r.Name, r.ClientID, r.Description}
		if showComposites {
			var names []string
			for child := range p.GetCompositesStream(r) {
				names = append(names, child.Name)
			}
			row = append(row, strings.Join(names, ", "))
		}
		tbl.Row(row...)
	}
	return tbl.Render(out, "No roles found")
}
