package server

import (
	"net/http"

	"rafters/internal/gateway/handler"
	"rafters/internal/gateway/middleware"
)

func NewMux(
	tokenHandler *handler.TokenHandler,
	analysisHandler *handler.AnalysisHandler,
	toolsHandler *handler.ToolsHandler,
	watchHandler *handler.WatchHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/tokens", tokenHandler.HandleList)
	mux.HandleFunc("/v1/tokens/resolve", tokenHandler.HandleResolve)
	mux.HandleFunc("/v1/graph", tokenHandler.HandleGraph)
	mux.HandleFunc("/v1/rules/execute", analysisHandler.HandleExecute)
	mux.HandleFunc("/v1/impact", analysisHandler.HandleImpact)
	mux.HandleFunc("/v1/tools", toolsHandler.HandleSpecs)
	mux.HandleFunc("/v1/tools/call", toolsHandler.HandleCall)
	mux.HandleFunc("/v1/watch", watchHandler.HandleWatch)

	return middleware.CORS(mux)
}
