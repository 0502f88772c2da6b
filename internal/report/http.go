package report

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/secwest/pv-generation-planning/internal/batch"
)

// Server exposes completed run results over HTTP as JSON. Results are
// immutable once the batch finishes, so handlers need no locking.
type Server struct {
	router  *mux.Router
	results map[string]*batch.SiteResult
	order   []string
	logger  *zap.SugaredLogger
}

// NewServer builds the results API for a finished batch.
func NewServer(results []batch.SiteResult, logger *zap.SugaredLogger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		results: make(map[string]*batch.SiteResult, len(results)),
		logger:  logger,
	}
	for i := range results {
		res := &results[i]
		s.results[res.Site] = res
		s.order = append(s.order, res.Site)
	}

	s.router.HandleFunc("/api/v1/runs", s.handleListRuns).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/runs/{site}", s.handleGetRun).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/runs/{site}/monthly", s.handleGetMonthly).Methods(http.MethodGet)
	return s
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves the API until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infow("results API listening", "addr", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// runSummary is the wire shape for one run.
type runSummary struct {
	RunID                  string    `json:"run_id"`
	Site                   string    `json:"site"`
	CompletedAt            time.Time `json:"completed_at"`
	AnnualEnergyKWh        float64   `json:"annual_energy_kwh"`
	SpecificYieldKWhPerKWp float64   `json:"specific_yield_kwh_per_kwp"`
	CapacityFactor         float64   `json:"capacity_factor"`
	PerformanceRatio       float64   `json:"performance_ratio"`
	InstalledCost          float64   `json:"installed_cost"`
	PaybackYears           float64   `json:"payback_years"`
	LCOE                   float64   `json:"lcoe"`
	NPV                    float64   `json:"npv"`
}

type monthlyEntry struct {
	Year                   int     `json:"year"`
	Month                  int     `json:"month"`
	EnergyKWh              float64 `json:"energy_kwh"`
	SpecificYieldKWhPerKWp float64 `json:"specific_yield_kwh_per_kwp"`
	POAInsolationKWhM2     float64 `json:"poa_insolation_kwh_m2"`
	MeanCellTemperature    float64 `json:"mean_cell_temperature"`
	PeakACPowerW           float64 `json:"peak_ac_power_w"`
}

func summarize(res *batch.SiteResult) runSummary {
	return runSummary{
		RunID:                  res.RunID,
		Site:                   res.Site,
		CompletedAt:            res.CompletedAt,
		AnnualEnergyKWh:        res.Yield.AnnualEnergyKWh,
		SpecificYieldKWhPerKWp: res.Yield.SpecificYieldKWhPerKWp,
		CapacityFactor:         res.Yield.CapacityFactor,
		PerformanceRatio:       res.Yield.PerformanceRatio,
		InstalledCost:          res.Economics.InstalledCost,
		PaybackYears:           res.Economics.PaybackYears,
		LCOE:                   res.Economics.LCOE,
		NPV:                    res.Economics.NPV,
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	summaries := make([]runSummary, 0, len(s.order))
	for _, site := range s.order {
		summaries = append(summaries, summarize(s.results[site]))
	}
	s.writeJSON(w, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	res, ok := s.results[mux.Vars(r)["site"]]
	if !ok {
		http.Error(w, "unknown site", http.StatusNotFound)
		return
	}
	s.writeJSON(w, summarize(res))
}

func (s *Server) handleGetMonthly(w http.ResponseWriter, r *http.Request) {
	res, ok := s.results[mux.Vars(r)["site"]]
	if !ok {
		http.Error(w, "unknown site", http.StatusNotFound)
		return
	}
	entries := make([]monthlyEntry, 0, len(res.Yield.Monthly))
	for _, m := range res.Yield.Monthly {
		entries = append(entries, monthlyEntry{
			Year:                   m.Year,
			Month:                  int(m.Month),
			EnergyKWh:              m.EnergyKWh,
			SpecificYieldKWhPerKWp: m.SpecificYieldKWhPerKWp,
			POAInsolationKWhM2:     m.POAInsolationKWhM2,
			MeanCellTemperature:    m.MeanCellTemperature,
			PeakACPowerW:           m.PeakACPowerW,
		})
	}
	s.writeJSON(w, entries)
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorw("error encoding response", "error", err)
	}
}
