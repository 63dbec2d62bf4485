// File path: internal/api/copybook_handler.go
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/common"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/common/telemetry"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/copybook"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/sqlite"
)

type compileRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Record string `json:"record,omitempty"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req compileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("copybook name required"))
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("copybook source required"))
		return
	}

	start := time.Now()
	schema, err := copybook.Compile(req.Source)
	telemetry.RecordCompile(time.Since(start), err)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	record := schema.DataRecord()
	if strings.TrimSpace(req.Record) != "" {
		record = schema.Record(req.Record)
		if record == nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("record %q not found in copybook", req.Record))
			return
		}
	}
	row, err := s.catalog.InsertCopybook(r.Context(), sqlite.Copybook{
		Name:         strings.TrimSpace(req.Name),
		Fingerprint:  schema.Fingerprint,
		Source:       req.Source,
		RecordName:   record.Name,
		RecordLength: record.Length,
		FieldCount:   schema.FieldCount(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("catalog copybook: %w", err))
		return
	}
	logger.Info("api: copybook compiled",
		"name", row.Name, "id", row.ID,
		"record", record.Name, "record_length", record.Length,
		"fields", row.FieldCount,
	)
	writeJSON(w, http.StatusCreated, compileResponse{
		Copybook: *row,
		Record:   fieldJSON(record),
	})
}

func (s *Server) handleListCopybooks(w http.ResponseWriter, r *http.Request) {
	copybooks, err := s.catalog.ListCopybooks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"copybooks": copybooks})
}

func (s *Server) handleGetCopybook(w http.ResponseWriter, r *http.Request) {
	row, ok := s.copybookFromPath(w, r)
	if !ok {
		return
	}
	// Recompile from catalogued source so the response carries the
	// full field layout, not just the stored summary columns.
	schema, err := copybook.Compile(row.Source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("recompile catalogued copybook: %w", err))
		return
	}
	record := schema.Record(row.RecordName)
	if record == nil {
		record = schema.DataRecord()
	}
	writeJSON(w, http.StatusOK, compileResponse{
		Copybook: *row,
		Record:   fieldJSON(record),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	row, ok := s.copybookFromPath(w, r)
	if !ok {
		return
	}
	runs, err := s.catalog.RunsForCopybook(r.Context(), row.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.catalog.ListActivity(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activity": activity})
}

func (s *Server) copybookFromPath(w http.ResponseWriter, r *http.Request) (*sqlite.Copybook, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad copybook id"))
		return nil, false
	}
	row, err := s.catalog.CopybookByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, fmt.Errorf("copybook %d not found", id))
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return row, true
}

// compileResponse pairs the catalogue row with the resolved layout of
// the record the decoder will apply.
type compileResponse struct {
	Copybook sqlite.Copybook `json:"copybook"`
	Record   *fieldView      `json:"record"`
}

type fieldView struct {
	Name       string          `json:"name"`
	Level      int             `json:"level"`
	Usage      string          `json:"usage,omitempty"`
	Picture    string          `json:"picture,omitempty"`
	Offset     int             `json:"offset"`
	Length     int             `json:"length"`
	Occurs     *occursView     `json:"occurs,omitempty"`
	Redefines  string          `json:"redefines,omitempty"`
	Conditions []conditionView `json:"conditions,omitempty"`
	Children   []*fieldView    `json:"children,omitempty"`
}

type occursView struct {
	Count       int    `json:"count"`
	DependingOn string `json:"depending_on,omitempty"`
}

type conditionView struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func fieldJSON(f *copybook.Field) *fieldView {
	if f == nil {
		return nil
	}
	view := &fieldView{
		Name:      f.Name,
		Level:     f.Level,
		Offset:    f.Offset,
		Length:    f.Length,
		Redefines: f.Redefines,
	}
	if f.Picture != nil {
		view.Picture = f.Picture.Raw
	}
	if !f.Group() {
		view.Usage = f.Usage.String()
	}
	if f.Occurs != nil {
		view.Occurs = &occursView{Count: f.Occurs.Count, DependingOn: f.Occurs.DependingOn}
	}
	for _, cond := range f.Conditions {
		cv := conditionView{Name: cond.Name}
		for _, v := range cond.Values {
			if v.Range {
				cv.Values = append(cv.Values, v.Low+".."+v.High)
			} else {
				cv.Values = append(cv.Values, v.Low)
			}
		}
		view.Conditions = append(view.Conditions, cv)
	}
	for _, c := range f.Children {
		view.Children = append(view.Children, fieldJSON(c))
	}
	return view
}
