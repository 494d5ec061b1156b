package server

import (
	"encoding/json"
	"net/http"

	"gridsync/internal/engine"
	"gridsync/internal/interest"
	"gridsync/internal/network"
	"gridsync/pkg/logger"
)

// Snapshotter отдает последний опубликованный снимок мира.
type Snapshotter interface {
	Snapshot() engine.Snapshot
}

// DebugHandler предоставляет доступ к внутреннему состоянию движка.
// Читает только снимок, поэтому не мешает тику.
type DebugHandler struct {
	Source Snapshotter
}

func NewDebugHandler(s Snapshotter) *DebugHandler {
	return &DebugHandler{Source: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/clients", h.handleClients)
	mux.HandleFunc("/debug/entities", h.handleEntities)
	mux.HandleFunc("/debug/pipeline", h.handlePipeline)
}

// /debug/clients - области интереса и подписки клиентов
func (h *DebugHandler) handleClients(w http.ResponseWriter, r *http.Request) {
	clients := h.Source.Snapshot().Clients
	if clients == nil {
		clients = []interest.View{}
	}
	writeJSON(w, clients)
}

// /debug/entities - все сущности, кроме клеток пола
func (h *DebugHandler) handleEntities(w http.ResponseWriter, r *http.Request) {
	entities := h.Source.Snapshot().Entities
	if entities == nil {
		entities = []engine.EntityView{}
	}
	writeJSON(w, entities)
}

// PipelineView - состояние стадий тика и транспорта.
type PipelineView struct {
	Tick         uint64               `json:"tick"`
	FloorTiles   int                  `json:"floor_tiles"`
	Stages       []engine.StageTiming `json:"stages"`
	Flush        network.FlushStats   `json:"flush"`
	Peers        []network.PeerStats  `json:"peers"`
	PendingLoads int                  `json:"pending_loads"`
}

// /debug/pipeline - длительности стадий последнего тика, очереди соединений
func (h *DebugHandler) handlePipeline(w http.ResponseWriter, r *http.Request) {
	snap := h.Source.Snapshot()
	writeJSON(w, PipelineView{
		Tick:         snap.Tick,
		FloorTiles:   snap.FloorTiles,
		Stages:       snap.Stages,
		Flush:        snap.Flush,
		Peers:        snap.Peers,
		PendingLoads: snap.PendingLoads,
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Debug("debug write failed")
	}
}
