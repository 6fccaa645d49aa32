package http

import (
	"encoding/json"
	"net/http"
)

func RegisterHandlers(mux *http.ServeMux, predictor LevelPredictor) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /predict", handlePredict(predictor))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePredict runs one synchronous prediction. Every pipeline failure,
// whatever its internal kind, surfaces as 400 with the error text in
// "detail"; only a handler bug can produce a 5xx here.
func handlePredict(predictor LevelPredictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeDetail(w, "invalid JSON body: "+err.Error())
			return
		}

		level, err := predictor.PredictLevel(payload)
		if err != nil {
			writeDetail(w, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"predicted_level": level})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": message})
}
