package gateway

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the gateway's dispatch, status, and stream endpoints onto
// r, matching the status_url/stream_url paths AsyncResponse advertises.
func (g *Gateway) Routes(r chi.Router) {
	r.Post("/workflows/{type}", g.handleDispatch)
	r.Get("/workflows/{id}/status", g.handleStatus)
	r.Get("/workflows/{id}/stream", g.handleStream)
}

func (g *Gateway) handleDispatch(w http.ResponseWriter, r *http.Request) {
	workflowType := chi.URLParam(r, "type")

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := validateDispatchBody(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := g.Dispatch(r.Context(), workflowType, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (g *Gateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "id")
	status, err := g.Status(operationID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (g *Gateway) handleStream(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "id")
	ch, cancel, err := g.Subscribe(operationID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	select {
	case status, ok := <-ch:
		if !ok {
			return
		}
		data, _ := json.Marshal(status)
		w.Write([]byte("data: "))
		w.Write(data)
		w.Write([]byte("\n\n"))
		flusher.Flush()
	case <-r.Context().Done():
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
