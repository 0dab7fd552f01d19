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

func newEventsCmd() *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Query, record and purge events",
		Long: `Query, record and purge user and admin events.

Times accept RFC 3339 ("2026-03-01T12:00:00Z") or epoch milliseconds.

Examples:
  filestore events ls --realm master --type LOGIN,LOGOUT --max 20
  filestore events ls --realm master --asc --first 10 --max 10
  filestore events admin --realm master --path "users/*"
  filestore events record --realm master --type LOGIN --user alice
  filestore events purge --realm master --older-than 720h
  filestore events purge --expired`,
	}

	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List user events, newest first",
		Args:  cobra.NoArgs,
		RunE:  withRuntime(runEventsLs),
	}
	lsCmd.Flags().String("realm", "", "Realm id or name")
	lsCmd.Flags().StringSlice("type", nil, "Event types (any of)")
	lsCmd.Flags().String("client", "", "Client id")
	lsCmd.Flags().String("user", "", "User id")
	lsCmd.Flags().String("ip", "", "IP address")
	addTimeFlags(lsCmd)
	addPageFlags(lsCmd)

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "List admin events, newest first",
		Args:  cobra.NoArgs,
		RunE:  withRuntime(runEventsAdmin),
	}
	adminCmd.Flags().String("realm", "", "Realm id or name")
	adminCmd.Flags().StringSlice("operation", nil, "Operation types (any of)")
	adminCmd.Flags().StringSlice("resource-type", nil, "Resource types (any of)")
	adminCmd.Flags().String("path", "", "Resource path, * matches any run of characters")
	adminCmd.Flags().String("auth-realm", "", "Realm the caller authenticated in")
	adminCmd.Flags().String("auth-user", "", "Calling user id")
	addTimeFlags(adminCmd)
	addPageFlags(adminCmd)

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record a user event",
		Args:  cobra.NoArgs,
		RunE:  withRuntime(runEventsRecord),
	}
	recordCmd.Flags().String("realm", "", "Realm id or name")
	recordCmd.Flags().String("type", "", "Event type")
	recordCmd.Flags().String("client", "", "Client id")
	recordCmd.Flags().String("user", "", "User id")
	recordCmd.Flags().String("ip", "", "IP address")
	recordCmd.Flags().StringToString("detail", nil, "Event details (key=value)")
	_ = recordCmd.MarkFlagRequired("realm")
	_ = recordCmd.MarkFlagRequired("type")

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete events of a realm, or every expired event",
		Args:  cobra.NoArgs,
		RunE:  withRuntime(runEventsPurge),
	}
	purgeCmd.Flags().String("realm", "", "Realm id or name")
	purgeCmd.Flags().Duration("older-than", 0, "Only events older than this")
	purgeCmd.Flags().Bool("admin", false, "Purge admin events instead of user events")
	purgeCmd.Flags().Bool("expired", false, "Purge user events past their expiration in every realm")
	purgeCmd.MarkFlagsMutuallyExclusive("expired", "realm")
	purgeCmd.MarkFlagsOneRequired("expired", "realm")

	eventsCmd.AddCommand(lsCmd, adminCmd, recordCmd, purgeCmd)
	return eventsCmd
}

func addTimeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Only events at or after this time")
	cmd.Flags().String("to", "", "Only events at or before this time")
	cmd.Flags().Bool("asc", false, "Oldest first")
}

// parseMillis accepts RFC 3339 or epoch milliseconds.
func parseMillis(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, errors.NewInvalidArgumentError("time %q is neither RFC 3339 nor epoch millis", s)
	}
	return t.UnixMilli(), nil
}

// timeFlag returns the parsed flag value and whether it was given.
func timeFlag(cmd *cobra.Command, name string) (int64, bool, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return 0, false, nil
	}
	ms, err := parseMillis(raw)
	if err != nil {
		return 0, false, errors.Wrapf(err, "--%s", name)
	}
	return ms, true, nil
}

// realmFlag resolves --realm to an id; empty when the flag is unset.
func realmFlag(cmd *cobra.Command, rt *runtime) (string, error) {
	ref, _ := cmd.Flags().GetString("realm")
	if ref == "" {
		return "", nil
	}
	realm, err := resolveRealm(rt, ref)
	if err != nil {
		return "", err
	}
	return realm.ID, nil
}

func runEventsLs(cmd *cobra.Command, rt *runtime, args []string) error {
	p, err := rt.events.Create(rt.session)
	if err != nil {
		return err
	}
	q := p.CreateQuery()

	realmID, err := realmFlag(cmd, rt)
	if err != nil {
		return err
	}
	if realmID != "" {
		q.Realm(realmID)
	}
	if types, _ := cmd.Flags().GetStringSlice("type"); len(types) > 0 {
		q.Type(types...)
	}
	if v, _ := cmd.Flags().GetString("client"); v != "" {
		q.Client(v)
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		q.User(v)
	}
	if v, _ := cmd.Flags().GetString("ip"); v != "" {
		q.IPAddress(v)
	}
	if from, ok, err := timeFlag(cmd, "from"); err != nil {
		return err
	} else if ok {
		q.FromDate(from)
	}
	if to, ok, err := timeFlag(cmd, "to"); err != nil {
		return err
	} else if ok {
		q.ToDate(to)
	}
	if asc, _ := cmd.Flags().GetBool("asc"); asc {
		q.OrderByAscTime()
	}
	if first, _ := cmd.Flags().GetInt("first"); first > 0 {
		q.FirstResult(first)
	}
	if max := rt.maxResults(cmd); max >= 0 {
		q.MaxResults(max)
	}

	seq, err := q.GetResultStream()
	if err != nil {
		return err
	}
	found := collect(seq)

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, found)
	}

	tbl := display.NewTable("TIME", "TYPE", "REALM", "CLIENT", "USER", "IP", "ERROR")
	for _, e := range found {
		tbl.Row(formatMillis(e.Time), e.Type, e.RealmID, e.ClientID, e.UserID, e.IPAddress, e.Error)
	}
	return tbl.Render(out, "No events found")
}

func runEventsAdmin(cmd *cobra.Command, rt *runtime, args []string) error {
	p, err := rt.events.Create(rt.session)
	if err != nil {
		return err
	}
	q := p.CreateAdminQuery()

	realmID, err := realmFlag(cmd, rt)
	if err != nil {
		return err
	}
	if realmID != "" {
		q.Realm(realmID)
	}
	if ops, _ := cmd.Flags().GetStringSlice("operation"); len(ops) > 0 {
		q.Operation(ops...)
	}
	if types, _ := cmd.Flags().GetStringSlice("resource-type"); len(types) > 0 {
		q.ResourceType(types...)
	}
	if v, _ := cmd.Flags().GetString("path"); v != "" {
		q.ResourcePath(v)
	}
	if v, _ := cmd.Flags().GetString("auth-realm"); v != "" {
		q.AuthRealm(v)
	}
	if v, _ := cmd.Flags().GetString("auth-user"); v != "" {
		q.AuthUser(v)
	}
	if from, ok, err := timeFlag(cmd, "from"); err != nil {
		return err
	} else if ok {
		q.FromTime(from)
	}
	if to, ok, err := timeFlag(cmd, "to"); err != nil {
		return err
	} else if ok {
		q.ToTime(to)
	}
	if asc, _ := cmd.Flags().GetBool("asc"); asc {
		q.OrderByAscTime()
	}
	if first, _ := cmd.Flags().GetInt("first"); first > 0 {
		q.FirstResult(first)
	}
	if max := rt.maxResults(cmd); max >= 0 {
		q.MaxResults(max)
	}

	seq, err := q.GetResultStream()
	if err != nil {
		return err
	}
	found := collect(seq)

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, found)
	}

	tbl := display.NewTable("TIME", "OPERATION", "RESOURCE", "PATH", "REALM", "BY")
	for _, e := range found {
		tbl.Row(formatMillis(e.Time), e.OperationType, e.ResourceType, e.ResourcePath, e.RealmID, e.AuthDetails.UserID)
	}
	return tbl.Render(out, "No admin events found")
}

func runEventsRecord(cmd *cobra.Command, rt *runtime, args []string) error {
	realmID, err := realmFlag(cmd, rt)
	if err != nil {
		return err
	}
	p, err := rt.events.Create(rt.session)
	if err != nil {
		return err
	}

	e := &model.Event{RealmID: realmID}
	e.Type, _ = cmd.Flags().GetString("type")
	e.ClientID, _ = cmd.Flags().GetString("client")
	e.UserID, _ = cmd.Flags().GetString("user")
	e.IPAddress, _ = cmd.Flags().GetString("ip")
	if details, _ := cmd.Flags().GetStringToString("detail"); len(details) > 0 {
		e.Details = details
	}

	if err := p.OnEvent(e); err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(cmd.OutOrStdout(), e)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %s event %s\n", e.Type, e.ID)
	return nil
}

func runEventsPurge(cmd *cobra.Command, rt *runtime, args []string) error {
	p, err := rt.events.Create(rt.session)
	if err != nil {
		return err
	}
	now := time.Now()
	out := cmd.OutOrStdout()

	if expired, _ := cmd.Flags().GetBool("expired"); expired {
		n := p.ClearExpired(now.UnixMilli())
		fmt.Fprintf(out, "✓ Purged %d expired events\n", n)
		return nil
	}

	realmID, err := realmFlag(cmd, rt)
	if err != nil {
		return err
	}
	admin, _ := cmd.Flags().GetBool("admin")
	olderThan, _ := cmd.Flags().GetDuration("older-than")
	cutoff := now.Add(-olderThan).UnixMilli()

	var n int
	switch {
	case admin && olderThan > 0:
		n = p.ClearAdminOlderThan(realmID, cutoff)
	case admin:
		n = p.ClearAdmin(realmID)
	case olderThan > 0:
		n = p.ClearOlderThan(realmID, cutoff)
	default:
		n = p.Clear(realmID)
	}

	kind := "events"
	if admin {
		kind = "admin events"
	}
	fmt.Fprintf(out, "✓ Purged %d %s\n", n, kind)
	return nil
}
