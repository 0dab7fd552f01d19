package commands

import (
	"iter"

	"github.com/spf13/cobra"

	"github.com/teranos/filestore/query"
)

// addPageFlags registers --first and --max.
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("first", 0, "Skip this many results")
	cmd.Flags().Int("max", query.Unbounded, "Maximum number of results (-1 for no limit)")
}

// withRuntime opens the store directory, runs fn and writes changes back.
func withRuntime(fn func(cmd *cobra.Command, rt *runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := rt.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, rt, args)
	}
}

// collect drains seq into a non-nil slice so empty results encode as [].
func collect[T any](seq iter.Seq[T]) []T {
	out := []T{}
	for v := range seq {
		out = append(out, v)
	}
	return out
}
