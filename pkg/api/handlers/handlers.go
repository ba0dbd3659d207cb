package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/repositories"
	"github.com/cbodonnell/slide/pkg/state"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
)

// streamBuffer is how many snapshots a slow stream may fall behind by.
const streamBuffer = 64

// Subscriber is satisfied by workers.Broadcaster.
type Subscriber interface {
	Subscribe(size int) (<-chan *messages.Snapshot, func())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}
}

func HandleGetState(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := stateManager.Get(r.Context())
		if err != nil {
			log.Error("failed to get latest snapshot: %v", err)
			http.Error(w, "Failed to get latest snapshot", http.StatusInternalServerError)
			return
		}
		writeJSON(w, snapshot)
	}
}

func HandleListRuns(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := repository.ListRuns(r.Context())
		if err != nil {
			log.Error("failed to list runs: %v", err)
			http.Error(w, "Failed to list runs", http.StatusInternalServerError)
			return
		}
		writeJSON(w, runs)
	}
}

func HandleGetRun(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := mux.Vars(r)["runID"]
		run, err := repository.GetRun(r.Context(), runID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Run not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get run %s: %v", runID, err)
			http.Error(w, "Failed to get run", http.StatusInternalServerError)
			return
		}
		writeJSON(w, run)
	}
}

func HandleGetCheckpoint(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := mux.Vars(r)["runID"]
		snapshot, err := repository.LoadCheckpoint(r.Context(), runID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Checkpoint not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load checkpoint of run %s: %v", runID, err)
			http.Error(w, "Failed to load checkpoint", http.StatusInternalServerError)
			return
		}
		writeJSON(w, snapshot)
	}
}

// HandleStream upgrades to a websocket and sends every published snapshot as
// a binary message in the format of messages.SerializeSnapshot.
func HandleStream(subscriber Subscriber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Error("failed to accept websocket: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "unexpected close")

		snapshots, unsubscribe := subscriber.Subscribe(streamBuffer)
		defer unsubscribe()

		// nothing is read from viewers, CloseRead handles their control frames
		ctx := conn.CloseRead(r.Context())
		log.Debug("Streaming snapshots to %s", r.RemoteAddr)

		for {
			select {
			case <-ctx.Done():
				log.Trace("Stream to %s closed: %v", r.RemoteAddr, ctx.Err())
				return
			case snapshot, ok := <-snapshots:
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "stream ended")
					return
				}
				b, err := messages.SerializeSnapshot(snapshot)
				if err != nil {
					log.Error("failed to serialize snapshot for frame %d: %v", snapshot.Frame, err)
					continue
				}
				if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
					log.Debug("Failed to write to stream %s: %v", r.RemoteAddr, err)
					return
				}
			}
		}
	}
}
