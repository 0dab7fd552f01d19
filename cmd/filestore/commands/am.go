package commands

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/filestore/am"
	"github.com/teranos/filestore/display"
	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/internal/util"
)

func newAmCmd() *cobra.Command {
	amCmd := &cobra.Command{
		Use:   "am",
		Short: "Manage filestore configuration",
		Long: `am - Manage filestore configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags (--dir)
2. Environment variables (FILESTORE_* prefix)
3. Project config (./am.toml, searched up from the working directory)
4. User config (~/.filestore/am.toml)
5. System config (/etc/filestore/am.toml)
6. Default values

Examples:
  filestore am show                    # Show current configuration
  filestore am show --format json      # Show configuration in JSON format
  filestore am get store.dir           # Get specific config value
  filestore am set store.watch true    # Persist a value in the user config
  filestore am where                   # Show where each value comes from
  filestore am validate                # Validate current configuration`,
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAmShow(cmd, format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", "toml", "Output format: toml, json, yaml")

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a specific configuration value",
		Long:  "Get a specific configuration value using dot notation (e.g., store.dir, events.expiration_check_seconds)",
		Args:  cobra.ExactArgs(1),
		RunE:  runAmGet,
	}

	var configPath string
	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a configuration value",
		Long: `Write a value into a TOML config file, creating it when missing.
The previous file is kept as a rotating backup (am.toml.back1 ...).
Values "true"/"false" and integers are stored typed; anything else as a string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAmSet(cmd, configPath, args[0], args[1])
		},
	}
	setCmd.Flags().StringVar(&configPath, "file", "", "Config file to update (default: ~/.filestore/am.toml)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate current configuration",
		RunE:  runAmValidate,
	}

	whereCmd := &cobra.Command{
		Use:   "where",
		Short: "Show where configuration is loaded from",
		RunE:  runAmWhere,
	}

	amCmd.AddCommand(showCmd, getCmd, setCmd, validateCmd, whereCmd)
	return amCmd
}

func runAmShow(cmd *cobra.Command, format string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return display.WriteJSON(out, cfg)

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# filestore configuration\n%s", data)

	case "toml":
		data, err := am.MarshalTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# filestore configuration\n%s", data)

	default:
		return errors.NewInvalidArgumentError("unsupported format: %s (supported: toml, json, yaml)", format)
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if !am.GetViper().IsSet(key) {
		return errors.NewNotFoundError("configuration key %q", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmSet(cmd *cobra.Command, path, key, raw string) error {
	if path == "" {
		path = am.UserConfigPath()
		if path == "" {
			return errors.New("could not determine home directory")
		}
	}

	if err := am.UpdateSetting(path, key, parseValue(raw)); err != nil {
		return err
	}
	am.Reset()

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to reload config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.WithHintf(err, "%s now holds an invalid value; run `filestore am set %s <value>` again", path, key)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s (%s)\n", key, raw, path)
	return nil
}

// parseValue keeps booleans and integers typed in the TOML file.
func parseValue(raw string) interface{} {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}
	out := cmd.OutOrStdout()

	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, intro)
	}

	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(out, "  2. [SYSTEM]   /etc/filestore/am.toml")
	fmt.Fprintln(out, "  3. [USER]     ~/.filestore/am.toml")
	fmt.Fprintln(out, "  4. [PROJECT]  ./am.toml (searches up directories)")
	fmt.Fprintln(out, "  5. [ENV]      FILESTORE_* environment variables")
	fmt.Fprintln(out)

	order := []am.ConfigSource{
		am.SourceDefault,
		am.SourceSystem,
		am.SourceUser,
		am.SourceProject,
		am.SourceEnvironment,
	}
	settings := slices.Clone(intro.Settings)
	slices.SortStableFunc(settings, func(a, b am.SettingInfo) int {
		return slices.Index(order, a.Source) - slices.Index(order, b.Source)
	})

	tbl := display.NewTable("KEY", "VALUE", "SOURCE", "FROM")
	for _, s := range settings {
		tbl.Row(s.Key, util.Truncate(fmt.Sprintf("%v", s.Value), 50), string(s.Source), s.SourcePath)
	}
	return tbl.Render(out, "No settings found")
}
