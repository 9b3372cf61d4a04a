package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"supersoniq-insights/internal/export"
	"supersoniq-insights/internal/pipeline"
	"supersoniq-insights/internal/types"
)

// createRun accepts a multipart upload with the audio in field "file" and
// runs the pipeline synchronously.
func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	reqLog := s.Log.WithRequest(r).WithField("handler", "runs")

	if s.Processor.Busy() {
		writeJSON(w, http.StatusConflict, errorBody{Error: types.UserMessage(types.ErrRunInProgress)})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	in := pipeline.Input{}
	file, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		in.Audio, in.Filename, in.Size = file, hdr.Filename, hdr.Size
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// Audio stays nil; the pipeline reports the missing file.
	default:
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: fmt.Sprintf("audio file exceeds %d bytes", tooBig.Limit)})
			return
		}
		reqLog.WithError(err).Warn("bad upload")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "could not read upload: " + err.Error()})
		return
	}

	out, err := s.Processor.Process(r.Context(), in)
	if errors.Is(err, types.ErrRunInProgress) {
		writeJSON(w, http.StatusConflict, errorBody{Error: types.UserMessage(err)})
		return
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
		var ve *types.ValidationError
		if errors.As(err, &ve) {
			status = http.StatusBadRequest
		}
	}
	if err := writeJSON(w, status, out); err != nil {
		reqLog.WithError(err).Error("failed to write response")
	}
}

func (s *Server) lastRun(w http.ResponseWriter, r *http.Request) {
	out, ok := s.Processor.Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no run has finished yet"})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) resetRun(w http.ResponseWriter, r *http.Request) {
	s.Processor.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportRun(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	out, ok := s.Processor.Last()
	if !ok || out.Result == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no insights to export"})
		return
	}
	body, err := export.Render(format, out.Result)
	if err != nil {
		s.Log.WithRequest(r).WithError(err).Error("export failed")
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format, time.Now())))
	w.Write(body)
}

