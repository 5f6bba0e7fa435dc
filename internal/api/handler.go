package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/cbm-calculator/internal/cache"
	"github.com/eugenenazirov/cbm-calculator/internal/calculator"
	"github.com/eugenenazirov/cbm-calculator/internal/metrics"
	"github.com/eugenenazirov/cbm-calculator/internal/storage"
	"github.com/eugenenazirov/cbm-calculator/internal/units"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

var errPalletRequired = errors.New("pallet is required for palletized loads")

// Handler wires calculator, storage and cache dependencies into HTTP handlers.
type Handler struct {
	calculator calculator.Calculator
	storage    storage.Storage
	cache      *cache.LRU
	validator  *requestValidator

	clock func() time.Time

	mu               sync.RWMutex
	palletsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithCache memoizes calculation reports. A nil cache disables memoization.
func WithCache(c *cache.LRU) HandlerOption {
	return func(h *Handler) {
		h.cache = c
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(calc calculator.Calculator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		calculator: calc,
		storage:    store,
		validator:  newRequestValidator(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.palletsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPallets(w http.ResponseWriter, r *http.Request) {
	_ = r
	pallets, err := h.storage.GetPallets()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := palletsResponse{
		Pallets:   pallets,
		Units:     canonicalUnits,
		UpdatedAt: h.currentPalletsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutPallets(w http.ResponseWriter, r *http.Request) {
	var req palletsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pallets", err.Error())
		return
	}

	presets := make([]storage.PalletPreset, 0, len(req.Pallets))
	for _, p := range req.Pallets {
		preset, err := p.toPreset()
		if err != nil {
			writeCalculationError(w, err)
			return
		}
		presets = append(presets, preset)
	}

	if err := h.storage.SetPallets(presets); err != nil {
		if errors.Is(err, storage.ErrInvalidPallets) {
			writeError(w, http.StatusBadRequest, "Invalid pallets", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markPalletsUpdated()
	// Entries built from replaced presets can no longer be requested by name.
	h.cache.Clear()
	if h.cache != nil {
		metrics.RecordCacheOperation("clear", "ok")
	}

	pallets, err := h.storage.GetPallets()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := palletsResponse{
		Pallets:   pallets,
		Units:     canonicalUnits,
		UpdatedAt: h.currentPalletsUpdatedAt(),
		Message:   "Pallet presets updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetContainers(w http.ResponseWriter, r *http.Request) {
	_ = r
	containers, err := h.storage.GetContainers()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, containersResponse{Containers: containers, Units: canonicalUnits})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	calcReq, err := h.buildRequest(req)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	volumeUnit := units.CubicMeter
	if req.VolumeUnit != "" {
		volumeUnit = units.Unit(req.VolumeUnit)
	}

	report, cached := h.cache.Get(calcReq)
	if h.cache != nil {
		metrics.RecordCacheOperation("get", hitOrMiss(cached))
	}

	start := time.Now()
	if !cached {
		var calcErr error
		report, calcErr = h.calculator.Calculate(calcReq)
		elapsed := time.Since(start)
		if calcErr != nil {
			metrics.RecordCalculation(elapsed, string(calcReq.Mode), "error")
			writeCalculationError(w, calcErr)
			return
		}
		metrics.RecordCalculation(elapsed, string(calcReq.Mode), "success")
		h.cache.Put(calcReq, report)
	}

	resp, err := newCalculateResponse(report, volumeUnit, cached, time.Since(start))
	if err != nil {
		writeCalculationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// buildRequest resolves presets and converts every measurement to millimeters
// and kilograms.
func (h *Handler) buildRequest(req calculateRequest) (calculator.Request, error) {
	box, err := req.Box.toBox()
	if err != nil {
		return calculator.Request{}, err
	}

	mode := calculator.ModePalletized
	if req.Mode != "" {
		mode = calculator.LoadMode(req.Mode)
	}

	var pallet calculator.Pallet
	if mode == calculator.ModePalletized {
		if req.Pallet == nil {
			return calculator.Request{}, errPalletRequired
		}
		if req.Pallet.Custom != nil {
			pallet, err = req.Pallet.Custom.toPallet()
		} else {
			var preset storage.PalletPreset
			preset, err = h.storage.GetPallet(req.Pallet.Preset)
			pallet = preset.Pallet
		}
		if err != nil {
			return calculator.Request{}, err
		}
	}

	var container calculator.Container
	switch ct := calculator.ContainerType(req.Container.Type); {
	case ct != calculator.ContainerCustom:
		container, err = h.storage.GetContainer(ct)
	case req.Container.Custom == nil:
		err = fmt.Errorf("%w: custom container requires dimensions", calculator.ErrInvalidContainerType)
	default:
		container, err = req.Container.Custom.toContainer()
	}
	if err != nil {
		return calculator.Request{}, err
	}

	return calculator.Request{Box: box, Pallet: pallet, Container: container, Mode: mode}, nil
}

func (h *Handler) currentPalletsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.palletsUpdatedAt
}

func (h *Handler) markPalletsUpdated() {
	h.mu.Lock()
	h.palletsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// calculationErrors maps engine and conversion failures to HTTP responses.
// Input errors are 400; loads that are well-formed but physically impossible are 422.
var calculationErrors = []struct {
	err        error
	status     int
	code       string
	message    string
	suggestion string
}{
	{units.ErrInvalidUnit, http.StatusBadRequest, "InvalidUnit", "Invalid unit", "Use mm, cm, m, in or ft for lengths and g, kg or lb for weights"},
	{units.ErrNonFinite, http.StatusBadRequest, "InvalidNumber", "Invalid number", "Values must be finite numbers within the range of the chosen unit"},
	{calculator.ErrInvalidDimension, http.StatusBadRequest, "InvalidDimension", "Invalid dimension", ""},
	{calculator.ErrInvalidWeight, http.StatusBadRequest, "InvalidWeight", "Invalid weight", ""},
	{calculator.ErrInvalidQuantity, http.StatusBadRequest, "InvalidQuantity", "Invalid quantity", "Quantity must be a whole number of boxes greater than zero"},
	{calculator.ErrInvalidLoadMode, http.StatusBadRequest, "InvalidLoadMode", "Invalid load mode", ""},
	{calculator.ErrInvalidContainerType, http.StatusBadRequest, "InvalidContainerType", "Invalid container type", ""},
	{errPalletRequired, http.StatusBadRequest, "PalletRequired", "Invalid request", "Pass pallet.preset or pallet.custom, or set mode to loose"},
	{storage.ErrPresetNotFound, http.StatusBadRequest, "PresetNotFound", "Unknown preset", "List available presets with GET /api/pallets or GET /api/containers"},
	{calculator.ErrBoxExceedsPallet, http.StatusUnprocessableEntity, "BoxExceedsPallet", "Box does not fit on pallet", "Choose a larger pallet, allow tipping, or raise the maximum stack height"},
	{calculator.ErrPalletExceedsContainer, http.StatusUnprocessableEntity, "PalletExceedsContainer", "Pallet does not fit in container", "Try a 40ftHC container, a smaller pallet, or a lower stack height"},
	{calculator.ErrBoxExceedsContainer, http.StatusUnprocessableEntity, "BoxExceedsContainer", "Box does not fit in container", "Try a larger container or split the shipment"},
	{calculator.ErrCountOutOfRange, http.StatusUnprocessableEntity, "CountOutOfRange", "Item count out of range", "Check the box dimensions and their unit; the load would hold more items than can be counted"},
}

func writeCalculationError(w http.ResponseWriter, err error) {
	for _, m := range calculationErrors {
		if errors.Is(err, m.err) {
			resp := errorResponse{
				Error:      m.message,
				Code:       m.code,
				Details:    err.Error(),
				Suggestion: m.suggestion,
			}
			writeJSON(w, m.status, resp)
			return
		}
	}
	writeInternalError(w, err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
