// Package handlers provides HTTP handlers for the Monte Carlo simulation
// endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/fintool/quantsvc/internal/marketdata"
	"github.com/fintool/quantsvc/internal/simulation"
)

// Handler handles simulation HTTP requests
type Handler struct {
	engine *simulation.Engine
	log    zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(engine *simulation.Engine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "simulation").Logger(),
	}
}

// portfolioResponse mirrors the service's public portfolio contract.
type portfolioResponse struct {
	PortfolioFinalValues []float64         `json:"portfolioFinalValues,omitempty"`
	MeanFinalValue       float64           `json:"meanFinalValue"`
	StdFinalValue        float64           `json:"stdFinalValue"`
	ExpectedReturn       float64           `json:"expectedReturn"`
	PortfolioVar95       float64           `json:"portfolioVar95"`
	PortfolioCvar95      float64           `json:"portfolioCvar95"`
	Params               simulation.Params `json:"params"`
}

// assetResponse mirrors the service's public single-asset contract.
type assetResponse struct {
	FinalPrices      []float64         `json:"finalPrices,omitempty"`
	MeanFinalPrice   float64           `json:"meanFinalPrice"`
	StdFinalPrice    float64           `json:"stdFinalPrice"`
	MedianFinalPrice float64           `json:"medianFinalPrice"`
	ExpectedReturn   float64           `json:"expectedReturn"`
	AssetVar95       float64           `json:"assetVar95"`
	AssetCvar95      float64           `json:"assetCvar95"`
	Params           simulation.Params `json:"params"`
}

// HandleSimulatePortfolio handles POST /sim/portfolio
func (h *Handler) HandleSimulatePortfolio(w http.ResponseWriter, r *http.Request) {
	var request simulation.PortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	startTime := time.Now()
	result, err := h.engine.SimulatePortfolio(r.Context(), request)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.log.Info().
		Int("n_assets", result.Params.NAssets).
		Int("n_paths", request.Paths).
		Dur("elapsed", time.Since(startTime)).
		Msg("Portfolio simulation served")

	response := portfolioResponse{
		MeanFinalValue:  result.Mean,
		StdFinalValue:   result.Std,
		ExpectedReturn:  result.ExpectedReturn,
		PortfolioVar95:  result.VaR95,
		PortfolioCvar95: result.CVaR95,
		Params:          result.Params,
	}
	if request.ReturnPaths {
		response.PortfolioFinalValues = result.FinalValues
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSimulateAsset handles POST /sim/asset
func (h *Handler) HandleSimulateAsset(w http.ResponseWriter, r *http.Request) {
	var request simulation.AssetRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	startTime := time.Now()
	result, err := h.engine.SimulateAsset(r.Context(), request)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.log.Info().
		Int("n_paths", request.Paths).
		Dur("elapsed", time.Since(startTime)).
		Msg("Asset simulation served")

	response := assetResponse{
		MeanFinalPrice:   result.Mean,
		StdFinalPrice:    result.Std,
		MedianFinalPrice: result.Median,
		ExpectedReturn:   result.ExpectedReturn,
		AssetVar95:       result.VaR95,
		AssetCvar95:      result.CVaR95,
		Params:           result.Params,
	}
	if request.ReturnPaths {
		response.FinalPrices = result.FinalValues
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandlePriceOption handles POST /simulate
func (h *Handler) HandlePriceOption(w http.ResponseWriter, r *http.Request) {
	var request simulation.OptionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := simulation.PriceEuropeanCall(request)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// writeEngineError maps the engine's error taxonomy to HTTP statuses:
// malformed input is the caller's fault (400), an unrepairable correlation
// matrix is a semantically invalid entity (422), and market-data failures
// are either an unknown ticker (400) or an upstream outage (502).
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	var valErr *simulation.ValidationError
	if errors.As(err, &valErr) {
		h.writeError(w, http.StatusBadRequest, valErr.Error())
		return
	}

	var corrErr *simulation.InvalidCorrelationError
	if errors.As(err, &corrErr) {
		h.writeError(w, http.StatusUnprocessableEntity, corrErr.Error())
		return
	}

	var dataErr *simulation.DataUnavailableError
	if errors.As(err, &dataErr) {
		if errors.Is(err, marketdata.ErrNotFound) {
			h.writeError(w, http.StatusBadRequest, dataErr.Error())
			return
		}
		h.writeError(w, http.StatusBadGateway, dataErr.Error())
		return
	}

	h.log.Error().Err(err).Msg("Simulation failed")
	h.writeError(w, http.StatusInternalServerError, "Simulation failed: "+err.Error())
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
