// Package display renders command output as pterm tables or JSON.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/filestore/errors"
)

// EnvJSON forces JSON output when set to a true value.
const EnvJSON = "FILESTORE_JSON"

// ShouldOutputJSON reports whether cmd should print JSON: an explicit --json
// flag wins, then a persistent --json on the root, then FILESTORE_JSON.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return envJSON()
	}

	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		v, _ := strconv.ParseBool(f.Value.String())
		return v
	}
	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}
	return envJSON()
}

func envJSON() bool {
	v, _ := strconv.ParseBool(os.Getenv(EnvJSON))
	return v
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
