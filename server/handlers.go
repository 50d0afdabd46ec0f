package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"htmldocx/config"
	"htmldocx/docx"
	"htmldocx/misc"
)

// convertRequest is JSON form of conversion request.
type convertRequest struct {
	HTML     string          `json:"html"`
	Options  json.RawMessage `json:"options,omitempty"`
	Filename string          `json:"filename,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": misc.GetVersion(),
	})
}

var reqIDSafe = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(zap.String("id", middleware.GetReqID(r.Context())))

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	req, opts, err := s.decodeRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(strings.TrimSpace(req.HTML)) == 0 {
		writeError(w, http.StatusBadRequest, "html content is empty")
		return
	}
	if s.rpt != nil {
		s.rpt.StoreData("request-"+reqIDSafe.ReplaceAllString(middleware.GetReqID(r.Context()), "_")+".html", []byte(req.HTML))
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Server.RequestTimeout)
	defer cancel()

	doc := &s.cfg.Document
	data, err := docx.Convert(ctx, req.HTML, opts, docx.Deps{
		Fetcher: s.fetcher,
		Images:  &doc.Images,
		Workers: doc.Fetch.Workers,
		Timeout: doc.Fetch.Timeout,
		FixZip:  doc.FixZip,
		Log:     log,
	})
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "conversion timed out")
		case errors.Is(err, context.Canceled):
			// client is gone
			log.Debug("Conversion canceled", zap.Error(err))
		default:
			log.Error("Unable to convert document", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "unable to convert document")
		}
		return
	}

	w.Header().Set("Content-Type", docx.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": outputName(req, opts)}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Warn("Unable to send document", zap.Error(err))
	}
}

// decodeRequest accepts raw HTML body or JSON request. Options in JSON are
// applied on top of configured options.
func (s *Server) decodeRequest(r *http.Request) (*convertRequest, config.ConversionOptions, error) {
	opts := s.cfg.Document.Options.Clone()

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, opts, err
		}
		return &convertRequest{HTML: string(data), Filename: r.URL.Query().Get("filename")}, opts, nil
	}

	var req convertRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, opts, err
		}
		return nil, opts, fmt.Errorf("unable to decode request: %w", err)
	}
	if len(req.Options) > 0 && string(req.Options) != "null" {
		if err := json.Unmarshal(req.Options, &opts); err != nil {
			return nil, opts, fmt.Errorf("unable to decode options: %w", err)
		}
	}
	return &req, opts, nil
}

func outputName(req *convertRequest, opts config.ConversionOptions) string {
	name := req.Filename
	if len(name) == 0 {
		name = opts.Title
	}
	name = strings.TrimSuffix(name, ".docx")
	if name = slug.Make(name); len(name) == 0 {
		name = "document"
	}
	return name + ".docx"
}
