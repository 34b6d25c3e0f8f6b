// Package scoreserver exposes a fitted Spectral Residual detector over HTTP.
package scoreserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwbudde/algo-anomaly/detect/spectralres"
	"github.com/cwbudde/algo-anomaly/timeseries"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sranomaly_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"endpoint", "status"})

	scoreDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sranomaly_score_duration_seconds",
		Help:    "Duration of scoring requests",
		Buckets: prometheus.DefBuckets,
	})

	pointsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sranomaly_points_scored_total",
		Help: "Total number of points scored",
	})
)

// Server routes scoring requests to a detector.
type Server struct {
	router   *mux.Router
	detector *spectralres.Detector
}

// New creates a Server around det and registers its routes.
func New(det *spectralres.Detector) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		detector: det,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/score", s.handleScore).Methods("POST")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler())
}

// Router returns the HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

type seriesPayload struct {
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

type scoreRequest struct {
	seriesPayload
	History *seriesPayload `json:"history,omitempty"`
}

type scoreResponse struct {
	Times  []time.Time `json:"times"`
	Scores []float64   `json:"scores"`
}

func (p seriesPayload) frame() (timeseries.Frame, error) {
	return timeseries.NewFrame(p.Times, [][]float64{p.Values}, nil)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, "/score", http.StatusBadRequest, err)
		return
	}

	frame, err := req.frame()
	if err != nil {
		s.fail(w, "/score", http.StatusBadRequest, err)
		return
	}

	var history *timeseries.Frame
	if req.History != nil {
		h, err := req.History.frame()
		if err != nil {
			s.fail(w, "/score", http.StatusBadRequest, err)
			return
		}
		history = &h
	}

	scores, err := s.detector.Score(frame, history)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, spectralres.ErrNotFitted) {
			status = http.StatusConflict
		}
		s.fail(w, "/score", status, err)
		return
	}

	scoreDuration.Observe(time.Since(start).Seconds())
	pointsScored.Add(float64(scores.Len()))
	s.ok(w, "/score", scoreResponse{Times: scores.Times, Scores: scores.Values})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.ok(w, "/health", map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) ok(w http.ResponseWriter, endpoint string, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("scoreserver: encode response: %v", err)
	}
	requestsTotal.WithLabelValues(endpoint, "200").Inc()
}

func (s *Server) fail(w http.ResponseWriter, endpoint string, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}
