package delivery

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/companion/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
)

const maxAssetLimit = 200

type AssetHandler struct {
	assets ports.AssetRepository
	log    *logger.ZapLogger
}

func NewAssetHandler(assets ports.AssetRepository, log *logger.ZapLogger) *AssetHandler {
	return &AssetHandler{
		assets: assets,
		log:    log,
	}
}

// GET /api/assets?session=&query=&limit=
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := ports.AssetFilter{
		SessionID: q.Get("session"),
		Query:     q.Get("query"),
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		f.Limit = min(n, maxAssetLimit)
	}

	list, err := h.assets.ListAssets(r.Context(), f)
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "list assets failed",
			Error:   err,
		})
		http.Error(w, "failed list assets: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "assets listed",
		Fields: map[string]any{
			"session": f.SessionID,
			"query":   f.Query,
			"count":   len(list),
		},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"assets": list,
	})
}

// GET /api/assets/{id}
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	asset, err := h.assets.GetAssetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed get asset: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if asset == nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(asset)
}
