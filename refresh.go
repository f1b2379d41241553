package catalogsync

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

// Refresh implements Client.
func (c *client) Refresh(ctx context.Context, name string) (*reconciler.Result, error) {
	ctrl, ok := c.controllers[name]
	if !ok {
		return nil, unknownProvider(name)
	}
	return ctrl.Refresh(ctx)
}

// RefreshAll implements Client. Providers refresh concurrently and
// independently; the returned map holds every provider that succeeded and
// the error joins every failure.
func (c *client) RefreshAll(ctx context.Context) (map[string]*reconciler.Result, error) {
	logger := logging.FromContext(ctx)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		results = make(map[string]*reconciler.Result, len(c.names))
	)

	for _, name := range c.names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			result, err := c.controllers[name].Refresh(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn().Err(err).Str(logging.FieldProvider, name).Msg("Provider refresh failed")
				errs = append(errs, pkgerrors.WrapResource("refresh", "provider", name, err))
				return
			}
			logger.Info().Str(logging.FieldProvider, name).Msg(result.Summary())
			results[name] = result
		}(name)
	}

	wg.Wait()

	if len(errs) > 0 {
		return results, errors.Join(errs...)
	}
	return results, nil
}
