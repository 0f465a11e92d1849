package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
)

const (
	formatText = "text"
	formatCSV  = "csv"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: serverVersion(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// papersHandler returns the configured paper catalog.
func (s *Server) papersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	papers := make([]PaperInfo, 0, len(s.cfg.Detection.Papers))
	for id, v := range s.cfg.Detection.Papers {
		papers = append(papers, PaperInfo{
			ID:      id,
			Width:   v.Width,
			Height:  v.Height,
			Profile: v.Profile,
		})
	}
	sort.Slice(papers, func(i, j int) bool { return papers[i].ID < papers[j].ID })

	response := PapersResponse{
		Papers: papers,
		Count:  len(papers),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding papers response: %v\n", err)
	}
}

// detectHandler processes frame detection requests. The body is a drawing
// entity collection in the JSON interchange format.
func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	col, err := entities.Decode(r.Body)
	if err != nil {
		detectRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Failed to parse drawing: %v", err), http.StatusBadRequest)
		return
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Detection pipeline not initialized", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	res := s.pipeline.Process(col)
	duration := time.Since(start)

	detectRequestsTotal.WithLabelValues("http", "success").Inc()
	detectProcessingDuration.WithLabelValues("http").Observe(duration.Seconds())
	framesDetected.WithLabelValues("http").Observe(float64(res.FrameCount()))
	sheetSetsGrouped.WithLabelValues("http").Observe(float64(len(res.SheetSets)))
	flagsRaisedTotal.WithLabelValues("http").Add(float64(countFlags(res)))

	format := r.URL.Query().Get("format")
	switch format {
	case formatCSV:
		out, err := pipeline.ToCSV([]*pipeline.DrawingResult{res})
		if err != nil {
			http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(out))
	case formatText:
		out, err := pipeline.ToPlainText(res)
		if err != nil {
			http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(out))
	default:
		w.Header().Set("Content-Type", "application/json")
		response := DetectResponse{Success: true, Result: res}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding detect response: %v\n", err)
		}
	}
}

// countFlags totals drawing-level, frame-level and sheet-set flags.
func countFlags(res *pipeline.DrawingResult) int {
	n := len(res.Flags)
	for _, f := range res.Frames {
		n += len(f.Runtime.Flags)
	}
	for _, s := range res.SheetSets {
		n += len(s.Flags)
		for _, p := range s.Pages {
			if p.Frame != nil {
				n += len(p.Frame.Runtime.Flags)
			}
		}
	}
	return n
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := DetectResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error, but can't send another response
		fmt.Fprintf(os.Stderr, "Error writing error response: %v\n", err)
	}
}
