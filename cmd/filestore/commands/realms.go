package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/filestore/display"
	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/model"
)

func newRealmsCmd() *cobra.Command {
	realmsCmd := &cobra.Command{
		Use:   "realms",
		Short: "List and create realms",
	}

	lsCmd := &cobra.Command{
		Use:   "ls [search]",
		Short: "List realms ordered by name",
		Long:  "List realms ordered by name. With a search term, only realms whose name contains it (case-insensitive).",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withRuntime(runRealmsLs),
	}
	addPageFlags(lsCmd)

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a realm and write it to the store directory",
		Args:  cobra.ExactArgs(1),
		RunE:  withRuntime(runRealmsCreate),
	}
	createCmd.Flags().String("id", "", "Realm id (generated when empty)")
	createCmd.Flags().Int64("events-expiration", 0, "Seconds before events of this realm expire (0 = never)")
	createCmd.Flags().Bool("admin-events", false, "Record admin events for this realm")
	createCmd.Flags().Bool("admin-events-details", false, "Keep the resource representation on admin events")

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a realm and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE:  withRuntime(runRealmsRm),
	}

	realmsCmd.AddCommand(lsCmd, createCmd, rmCmd)
	return realmsCmd
}

func runRealmsLs(cmd *cobra.Command, rt *runtime, args []string) error {
	p, err := rt.realms.Create(rt.session)
	if err != nil {
		return err
	}

	search := ""
	if len(args) == 1 {
		search = args[0]
	}
	first, _ := cmd.Flags().GetInt("first")
	found := collect(p.SearchRealms(search, first, rt.maxResults(cmd)))
	return printRealms(cmd, found)
}

func runRealmsCreate(cmd *cobra.Command, rt *runtime, args []string) error {
	p, err := rt.realms.Create(rt.session)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("id")
	realm, err := p.CreateRealm(id, args[0])
	if err != nil {
		return err
	}
	if exp, _ := cmd.Flags().GetInt64("events-expiration"); exp > 0 {
		realm.SetEventsEnabled(true)
		realm.SetEventsExpiration(exp)
	}
	if on, _ := cmd.Flags().GetBool("admin-events"); on {
		realm.SetAdminEventsEnabled(true)
	}
	if on, _ := cmd.Flags().GetBool("admin-events-details"); on {
		realm.SetAdminEventsEnabled(true)
		realm.SetAdminEventsDetailsEnabled(true)
	}
	return printRealms(cmd, []*model.Realm{realm})
}

func runRealmsRm(cmd *cobra.Command, rt *runtime, args []string) error {
	p, err := rt.realms.Create(rt.session)
	if err != nil {
		return err
	}

	removed, err := p.RemoveRealm(args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(cmd.OutOrStdout(), "Realm %s not found\n", args[0])
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed realm %s\n", args[0])
	return nil
}

func printRealms(cmd *cobra.Command, found []*model.Realm) error {
	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, found)
	}

	tbl := display.NewTable("ID", "NAME", "ENABLED", "EVENTS EXPIRE", "CREATED")
	for _, r := range found {
		expire := "never"
		if r.EventsExpiration > 0 {
			expire = (time.Duration(r.EventsExpiration) * time.Second).String()
		}
		tbl.Row(r.ID, r.Name, strconv.FormatBool(r.Enabled), expire, formatMillis(r.CreatedTimestamp))
	}
	return tbl.Render(out, "No realms found")
}

// formatMillis renders epoch millis as RFC 3339 in UTC.
func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// resolveRealm finds a realm by id, then by name.
func resolveRealm(rt *runtime, ref string) (*model.Realm, error) {
	p, err := rt.realms.Create(rt.session)
	if err != nil {
		return nil, err
	}
	if r := p.GetRealm(ref); r != nil {
		return r, nil
	}
	if r := p.GetRealmByName(ref); r != nil {
		return r, nil
	}
	return nil, errors.WithHint(errors.NewNotFoundError("realm %q", ref), "list realms with `filestore realms ls`")
}
