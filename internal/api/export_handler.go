package api

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"
)

// ── Request / Response types ────────────────────────────────────────────────

type ImportResult struct {
	QuestionsImported int `json:"questions_imported" example:"42"`
}

// importBody returns the uploaded file: the "file" part of a multipart form,
// or the raw request body otherwise.
func importBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}

// ── Handlers ────────────────────────────────────────────────────────────────

// exportBank downloads the whole bank.
// @Summary      Export the bank
// @Description  JSON array of questions with statistics, readable by POST /import/json.
// @Tags         Import/Export
// @Produce      json
// @Success      200  {array}   importer.ExportRecord
// @Failure      500  {object}  ErrorResponse
// @Router       /export [get]
func (h *Handler) exportBank(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if h.handleServiceError(w, h.svc.Export(&buf)) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=quizdrill-questions.json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// importJSON replaces the bank with a JSON export.
// @Summary      Import JSON
// @Description  Replaces the whole bank. Nothing changes when the payload is rejected.
// @Tags         Import/Export
// @Accept       json
// @Produce      json
// @Param        body  body      []importer.ExportRecord  true  "Questions"
// @Success      200   {object}  ImportResult
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /import/json [post]
func (h *Handler) importJSON(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := importBody(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing upload")
		return
	}
	defer closeBody()

	n, err := h.svc.ImportJSON(r.Context(), body)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, ImportResult{QuestionsImported: n})
}

// importCSV replaces the bank with the valid rows of a CSV file.
// @Summary      Import CSV
// @Description  Columns: subject,topic,prompt,choice1,choice2,choice3,choice4,answerIndex,explanation. The first line is a header. Invalid rows are skipped.
// @Tags         Import/Export
// @Accept       plain
// @Produce      json
// @Success      200  {object}  ImportResult
// @Failure      400  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /import/csv [post]
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := importBody(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing upload")
		return
	}
	defer closeBody()

	n, err := h.svc.ImportCSV(r.Context(), body)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, ImportResult{QuestionsImported: n})
}
