package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"rafters/internal/gateway/config"
	"rafters/internal/gateway/handler"
	"rafters/internal/gateway/repository/export"
	"rafters/internal/gateway/repository/tokenstore"
	"rafters/internal/gateway/server"
	"rafters/internal/gateway/service/analysis"
	"rafters/internal/mcp"
	"rafters/internal/registry"
	"rafters/internal/tokenfile"
	"rafters/internal/util/jsonutil"
)

type App struct {
	cfg      *config.Config
	server   *server.Server
	svc      *analysis.Service
	sets     *tokenstore.Store
	exporter *export.S3Store
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	snap, err := tokenfile.LoadDir(cfg.TokensDir)
	if err != nil {
		return nil, fmt.Errorf("load tokens from %s: %w", cfg.TokensDir, err)
	}

	svc := analysis.New(snap)

	tools := mcp.NewRegistry()
	mcp.RegisterDefaultTools(tools, svc)

	tokenHandler := handler.NewTokenHandler(svc)
	analysisHandler := handler.NewAnalysisHandler(svc)
	toolsHandler := handler.NewToolsHandler(tools)
	watchHandler := handler.NewWatchHandler(svc)

	mux := server.NewMux(tokenHandler, analysisHandler, toolsHandler, watchHandler)
	srv := server.New(cfg.Port, mux)

	a := &App{
		cfg:    cfg,
		server: srv,
		svc:    svc,
		sets:   tokenstore.NewFrom(cfg.StoreDSN, cfg.StorePath),
	}

	if cfg.Export.Enabled {
		exporter, err := export.NewS3Store(export.S3Config{
			Endpoint:  cfg.Export.Endpoint,
			Region:    cfg.Export.Region,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			Bucket:    cfg.Export.Bucket,
			UseSSL:    cfg.Export.UseSSL,
		})
		if err != nil {
			log.Printf("snapshot export disabled: %v", err)
		} else {
			a.exporter = exporter
		}
	}

	a.persist(snap)
	return a, nil
}

// Reload re-reads the token directory and swaps the served snapshot.
// Watch subscribers are notified; the previous snapshot keeps serving
// when loading fails.
func (a *App) Reload() error {
	snap, err := tokenfile.LoadDir(a.cfg.TokensDir)
	if err != nil {
		return err
	}
	a.svc.Reload(snap)
	a.persist(snap)
	log.Printf("reloaded %s: version %s", a.cfg.TokensDir, snap.Version())
	return nil
}

// persist records the loaded set in the token-set store and pushes a
// JSON export to the snapshot bucket when one is configured.
func (a *App) persist(snap *registry.Snapshot) {
	a.sets.EnsureLoaded()
	a.sets.Put(tokenstore.TokenSet{
		ID:       "default",
		Version:  snap.Version(),
		Document: snapshotDocument(snap),
	})
	a.sets.Save()

	if a.exporter == nil {
		return
	}
	payload, err := jsonutil.MarshalNoEscapeIndent(registry.GraphView(snap), "", "  ")
	if err != nil {
		return
	}
	go func(version string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.exporter.Put(ctx, version, payload); err != nil {
			log.Printf("snapshot export %s failed: %v", version, err)
		}
	}(snap.Version())
}

func snapshotDocument(snap *registry.Snapshot) tokenfile.Document {
	doc := tokenfile.Document{Tokens: snap.Tokens()}
	for _, e := range snap.Edges() {
		doc.Dependencies = append(doc.Dependencies, tokenfile.Declaration{
			Token:     e.TokenName,
			DependsOn: e.DependsOn,
			Rule:      e.Rule,
		})
	}
	return doc
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
