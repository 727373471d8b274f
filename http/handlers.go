package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"flightdelay/db"
	"flightdelay/logging"
	"flightdelay/ml"
	"flightdelay/monitoring"
)

const predictionCacheSize = 1024

type predictRequest struct {
	Flights []ml.FlightRecord `json:"flights"`
}

type predictResponse struct {
	Predict []int `json:"predict"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// API holds the process-wide read-only serving state: the predictor is
// fixed at startup and never swapped, which is what makes the prediction
// cache and lock-free request handling safe.
type API struct {
	predictor *ml.Predictor
	cache     *lru.Cache[string, []int]
	metrics   *monitoring.Collector
	feed      *monitoring.PredictionFeed

	store func(records []ml.FlightRecord, labels []int) error
}

func NewAPI(predictor *ml.Predictor, metrics *monitoring.Collector, feed *monitoring.PredictionFeed, store func([]ml.FlightRecord, []int) error) (*API, error) {
	if predictor == nil {
		return nil, errors.New("predictor is required")
	}
	cache, err := lru.New[string, []int](predictionCacheSize)
	if err != nil {
		return nil, err
	}
	return &API{
		predictor: predictor,
		cache:     cache,
		metrics:   metrics,
		feed:      feed,
		store:     store,
	}, nil
}

func (api *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", api.handleHealth)
	mux.HandleFunc("POST /predict", api.handlePredict)
	mux.HandleFunc("GET /api/metrics", api.handleMetrics)
	mux.HandleFunc("GET /api/trainings", api.handleTrainings)
	if api.feed != nil {
		mux.HandleFunc("GET /api/ws/predictions", api.feed.HandleWS)
	}
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (api *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	if api.metrics != nil {
		api.metrics.IncRequests()
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	for _, flight := range req.Flights {
		if verr := api.predictor.Validate(flight); verr != nil {
			if api.metrics != nil {
				api.metrics.IncRejected()
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("Value in column %s is incorrect", verr.Field),
			})
			return
		}
	}

	key := cacheKey(req.Flights)
	if labels, ok := api.cache.Get(key); ok {
		if api.metrics != nil {
			api.metrics.IncCacheHits()
			api.metrics.AddPredictions(len(labels))
		}
		api.publish(labels, true)
		writeJSON(w, http.StatusOK, predictResponse{Predict: labels})
		return
	}

	labels, err := api.predictor.Predict(req.Flights)
	if err != nil {
		var verr *ml.ValidationError
		if errors.As(err, &verr) {
			if api.metrics != nil {
				api.metrics.IncRejected()
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("Value in column %s is incorrect", verr.Field),
			})
			return
		}
		logging.GetLogger().Errorw("prediction failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
		return
	}

	api.cache.Add(key, labels)
	if api.metrics != nil {
		api.metrics.AddPredictions(len(labels))
	}
	if api.store != nil {
		if err := api.store(req.Flights, labels); err != nil {
			logging.GetLogger().Warnw("failed to persist predictions", "error", err)
		}
	}
	api.publish(labels, false)

	writeJSON(w, http.StatusOK, predictResponse{Predict: labels})
}

func (api *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if api.metrics == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	writeJSON(w, http.StatusOK, api.metrics.Snapshot())
}

func (api *API) handleTrainings(w http.ResponseWriter, r *http.Request) {
	runs, err := db.LoadTrainingRuns()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trainings": runs})
}

func (api *API) publish(labels []int, cached bool) {
	if api.feed == nil {
		return
	}
	api.feed.Publish(monitoring.PredictionEvent{
		Timestamp: time.Now(),
		Flights:   len(labels),
		Labels:    labels,
		Cached:    cached,
	})
}

// cacheKey encodes the batch as JSON so field values containing any
// separator cannot collide with a different batch.
func cacheKey(flights []ml.FlightRecord) string {
	payload, _ := json.Marshal(flights)
	return string(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
