package restserver

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/chrissnell/powerspeed/internal/analysis"
	"github.com/chrissnell/powerspeed/internal/chart"
	"github.com/chrissnell/powerspeed/internal/log"
	"github.com/chrissnell/powerspeed/internal/metrics"
	"github.com/chrissnell/powerspeed/internal/request"
	"github.com/chrissnell/powerspeed/internal/source"
	"github.com/chrissnell/powerspeed/internal/types"
	"github.com/chrissnell/powerspeed/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// VesselInfo describes one vessel present in the dataset
type VesselInfo struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	TotalRunningDays float64 `json:"total_running_days"`
}

// VesselsResponse lists every vessel and the default selection
type VesselsResponse struct {
	Vessels          []VesselInfo `json:"vessels"`
	DefaultSelection []int        `json:"default_selection"`
}

// BoundsResponse carries the full observed range of every filterable column
type BoundsResponse struct {
	Metric                types.SpeedMetric `json:"speed_metric"`
	MeanDraft             types.Range       `json:"mean_draft"`
	RelativeWindDirection types.Range       `json:"relative_wind_direction"`
	Speed                 types.Range       `json:"speed"`
	BFScale               types.Range       `json:"bf_scale"`
	Rows                  int               `json:"rows"`
	HasFOC                bool              `json:"has_fuel"`
}

// loadDataset reads the data source for this request. On failure the error
// response has already been written and nil is returned.
func (h *Handlers) loadDataset(w http.ResponseWriter, req *http.Request) *types.Dataset {
	opts, err := request.ParseOptions(req.URL.Query(), h.controller.analysis)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return nil
	}

	ds, err := h.controller.loader.Load(req.Context(), opts)
	if err != nil {
		h.writeLoadError(w, req, err)
		return nil
	}
	return ds
}

func (h *Handlers) writeLoadError(w http.ResponseWriter, req *http.Request, err error) {
	kind := source.KindOf(err)
	metrics.ObserveLoadFailure(kind.String())
	h.controller.logger.Errorw("dataset load failed",
		"request_id", log.RequestID(req.Context()),
		"kind", kind.String(),
		"error", err)

	status := http.StatusBadGateway
	if kind == source.KindSourceUnavailable {
		status = http.StatusServiceUnavailable
	}
	h.formatter.WriteError(w, req, status, err.Error())
}

// GetVessels handles /api/vessels
func (h *Handlers) GetVessels(w http.ResponseWriter, req *http.Request) {
	ds := h.loadDataset(w, req)
	if ds == nil {
		return
	}

	resp := VesselsResponse{
		Vessels:          []VesselInfo{},
		DefaultSelection: request.DefaultSelection(ds, h.controller.analysis.DefaultVesselCount),
	}
	for _, id := range ds.VesselIDs() {
		resp.Vessels = append(resp.Vessels, VesselInfo{
			ID:               id,
			Name:             h.controller.names.Name(id),
			TotalRunningDays: ds.TotalRunningDays(id),
		})
	}

	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error encoding vessels response: %v", err)
	}
}

// GetBounds handles /api/bounds
func (h *Handlers) GetBounds(w http.ResponseWriter, req *http.Request) {
	metric, err := request.ParseMetric(req.URL.Query(), h.controller.analysis)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	ds := h.loadDataset(w, req)
	if ds == nil {
		return
	}

	c := types.DefaultCriteria(ds, metric, nil)
	resp := BoundsResponse{
		Metric:                metric,
		MeanDraft:             c.MeanDraft,
		RelativeWindDirection: c.RelativeWindDirection,
		Speed:                 c.Speed,
		BFScale:               c.BFScale,
		Rows:                  ds.Len(),
		HasFOC:                ds.HasFOC,
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error encoding bounds response: %v", err)
	}
}

// run loads, parses and analyses. On failure the error response has already
// been written and nil is returned.
func (h *Handlers) run(w http.ResponseWriter, req *http.Request) *analysis.Result {
	start := time.Now()

	ds := h.loadDataset(w, req)
	if ds == nil {
		return nil
	}

	c, err := request.ParseCriteria(req.URL.Query(), ds, h.controller.analysis)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return nil
	}

	res := analysis.Run(ds, c, h.controller.names)
	metrics.ObserveResult(res, time.Since(start))

	for _, warn := range res.Warnings {
		h.controller.logger.Warnw(warn.Message,
			"request_id", log.RequestID(req.Context()),
			"vessel_id", warn.VesselID)
	}
	h.controller.logger.Debugw("analysis complete",
		"request_id", log.RequestID(req.Context()),
		"status", res.Status,
		"rows", res.Rows,
		"bins", len(res.Bins))
	return res
}

// GetAnalysis handles /api/analysis
func (h *Handlers) GetAnalysis(w http.ResponseWriter, req *http.Request) {
	res := h.run(w, req)
	if res == nil {
		return
	}
	if err := h.formatter.WriteResponse(w, req, res, nil); err != nil {
		log.Errorf("error encoding analysis response: %v", err)
	}
}

// GetChart handles /api/chart.png
func (h *Handlers) GetChart(w http.ResponseWriter, req *http.Request) {
	res := h.run(w, req)
	if res == nil {
		return
	}
	if res.Status != analysis.StatusOK {
		h.formatter.WriteStatus(w, req, http.StatusNotFound, map[string]string{
			"status":  string(res.Status),
			"message": res.Message,
		}, nil)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, res, chart.Options{}); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chart.ErrNothingToPlot) {
			status = http.StatusNotFound
		}
		log.Errorf("error rendering chart: %v", err)
		h.formatter.WriteError(w, req, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// Healthz handles /healthz
func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}
