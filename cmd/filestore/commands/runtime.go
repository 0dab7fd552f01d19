package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/teranos/filestore/am"
	"github.com/teranos/filestore/clientscopes"
	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/events"
	"github.com/teranos/filestore/filestore"
	"github.com/teranos/filestore/idp"
	"github.com/teranos/filestore/internal/util"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/provider"
	"github.com/teranos/filestore/realms"
	"github.com/teranos/filestore/roles"
	"github.com/teranos/filestore/session"
	"github.com/teranos/filestore/store"
)

// runtime is one loaded store directory with every provider factory started.
type runtime struct {
	ctx      context.Context
	cfg      *am.Config
	log      *zap.SugaredLogger
	dir      *filestore.Dir
	registry *provider.Registry
	session  *session.Session

	realms       *realms.Factory
	clientScopes *clientscopes.Factory
	roles        *roles.Factory
	idps         *idp.Factory
	events       *events.Factory
}

// openRuntime loads config, reads the store directory and starts the registry.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	log := logger.Logger.Named("filestore")
	stores := store.NewStores(log)

	dir, err := filestore.OpenConfig(cfg, stores, filestore.WithLogger(log))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open store directory")
	}
	if err := dir.Load(ctx); err != nil {
		return nil, errors.WithHintf(err, "fix or remove the offending file under %s", dir.Root())
	}

	rt := &runtime{
		ctx:          ctx,
		cfg:          cfg,
		log:          log,
		dir:          dir,
		registry:     provider.NewRegistry(cfg, stores, log),
		realms:       realms.NewFactory(),
		clientScopes: clientscopes.NewFactory(),
		roles:        roles.NewFactory(),
		idps:         idp.NewFactory(),
		events:       events.NewFactory(),
	}
	for _, f := range []provider.Factory{rt.realms, rt.clientScopes, rt.roles, rt.idps, rt.events} {
		if err := rt.registry.Register(f); err != nil {
			return nil, multierr.Append(err, rt.registry.Close())
		}
	}
	if err := rt.registry.Start(); err != nil {
		return nil, multierr.Append(err, rt.registry.Close())
	}
	rt.session = rt.registry.NewSession(ctx)
	return rt, nil
}

// close flushes changed entities, then releases the session and the registry.
func (rt *runtime) close() error {
	return multierr.Combine(
		rt.dir.Flush(rt.ctx),
		rt.session.Close(),
		rt.registry.Close(),
	)
}

// maxResults returns the --max flag when given, else query.default_max_results,
// else the flag's default.
func (rt *runtime) maxResults(cmd *cobra.Command) int {
	n, _ := cmd.Flags().GetInt("max")
	if cmd.Flags().Changed("max") {
		return n
	}
	return util.Deref(rt.cfg.Query.DefaultMaxResults, n)
}
