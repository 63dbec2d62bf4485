// File path: internal/api/decode_handler.go
package api

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/common"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/common/telemetry"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/copybook"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/decoder"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/normalizer"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/sqlite"
)

// decodeResponse is the full outcome of one decode run.
type decodeResponse struct {
	Copybook     string             `json:"copybook,omitempty"`
	Record       string             `json:"record"`
	RecordLength int                `json:"record_length"`
	CodePage     string             `json:"code_page"`
	Summary      decoder.Summary    `json:"summary"`
	Normalizer   *normalizer.Report `json:"normalizer,omitempty"`
	Records      []decoder.Record   `json:"records"`
}

// handleDecode accepts a multipart form: a "data" file part plus either
// a "copybook_id" referencing the catalog or an inline "copybook" file
// part. Optional fields select the code page, the 01 record, and
// transfer file normalization.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	const maxMemory = 64 << 20 // 64 MiB of in-memory file parts
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		logger.Warn("api: decode form parse failed", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse decode form: %w", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	source, row, err := s.resolveCopybook(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := formFile(r, "data")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	codePage := strings.TrimSpace(r.FormValue("code_page"))
	if codePage == "" {
		codePage = s.cfg.DefaultCodePage
	}

	schema, err := copybook.Compile(source)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	var opts []decoder.Option
	if record := strings.TrimSpace(r.FormValue("record")); record != "" {
		opts = append(opts, decoder.WithRecord(record))
	} else if row != nil {
		opts = append(opts, decoder.WithRecord(row.RecordName))
	}
	dec, err := decoder.New(schema, codePage, opts...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := decodeResponse{
		Record:       dec.RecordName(),
		RecordLength: dec.RecordLength(),
		CodePage:     codePage,
	}
	if row != nil {
		resp.Copybook = row.Name
	}

	buf := data
	if parseBool(r.FormValue("normalize")) {
		normalized, report, err := normalizer.Normalize(data, dec.RecordLength())
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		telemetry.RecordNormalize(report.OriginalSize - report.NormalizedSize)
		buf = normalized
		resp.Normalizer = &report
	}

	start := time.Now()
	records, err := dec.Decode(buf)
	telemetry.RecordDecode(time.Since(start), len(records), err)
	if row != nil {
		s.recordRun(ctx, row.ID, codePage, len(buf), len(records), err)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp.Summary = decoder.Summarize(records)
	resp.Records = records
	logger.Info("api: decode complete",
		"record", resp.Record, "records", len(records),
		"code_page", codePage, "bytes", len(buf),
	)
	writeJSON(w, http.StatusOK, resp)
}

// resolveCopybook returns the copybook source from the catalog or the
// inline upload. The catalog row is nil for inline sources.
func (s *Server) resolveCopybook(r *http.Request) (string, *sqlite.Copybook, error) {
	if idValue := strings.TrimSpace(r.FormValue("copybook_id")); idValue != "" {
		id, err := strconv.ParseInt(idValue, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad copybook id %q", idValue)
		}
		row, err := s.catalog.CopybookByID(r.Context(), id)
		if err != nil {
			if err == sql.ErrNoRows {
				return "", nil, fmt.Errorf("copybook %d not found", id)
			}
			return "", nil, err
		}
		return row.Source, row, nil
	}
	inline, err := formFile(r, "copybook")
	if err != nil {
		return "", nil, fmt.Errorf("copybook_id or copybook file part required")
	}
	return string(inline), nil, nil
}

func (s *Server) recordRun(ctx context.Context, copybookID int64, codePage string, inputBytes, recordCount int, decodeErr error) {
	run := sqlite.DecodeRun{
		CopybookID:  copybookID,
		CodePage:    codePage,
		InputBytes:  inputBytes,
		RecordCount: recordCount,
		Status:      "ok",
	}
	if decodeErr != nil {
		run.Status = "error"
		run.Error = sql.NullString{String: decodeErr.Error(), Valid: true}
	}
	if _, err := s.catalog.InsertDecodeRun(ctx, run); err != nil {
		common.Logger().Warn("api: record decode run failed", "error", err)
	}
}

func formFile(r *http.Request, name string) ([]byte, error) {
	file, _, err := r.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("missing %s file part: %w", name, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s upload is empty", name)
	}
	return data, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
