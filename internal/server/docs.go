// Package server provides the catalogsync ops HTTP server: health and
// readiness probes, provider refresh status, on-demand refresh and
// Prometheus metrics.
//
// The architecture follows the pattern: CLI → App → Server → Router → Handlers
//
// Usage:
//
//	srv := server.New(client, server.DefaultConfig(), logger)
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

// @title catalogsync ops API
// @version 1.0
// @description Refresh status and manual refresh for catalog entity providers.
//
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
