package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"webPageProbeGO/internal/aggregator"
	"webPageProbeGO/internal/errs"
)

// aggregateHandler reduces an uploaded result document to chart data.
// The document comes either as the multipart field "file" or as the raw body.
func (s *Server) aggregateHandler(c *gin.Context) {
	body, closeBody, err := s.resultDocument(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid upload", err)
		return
	}
	defer closeBody()

	results, err := aggregator.DecodeResultMap(body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid result document", err)
		return
	}

	view, err := aggregator.Aggregate(results)
	if err != nil {
		if errors.Is(err, aggregator.ErrNoValidData) {
			respondError(c, http.StatusUnprocessableEntity, "No valid data to process", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to aggregate results", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// resultDocument picks the uploaded file or falls back to the request body
func (s *Server) resultDocument(c *gin.Context) (io.Reader, func(), error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return c.Request.Body, func() {}, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, &errs.AppError{Kind: errs.MalformedInput, Message: "missing file field", Cause: err}
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, &errs.AppError{Kind: errs.MalformedInput, Message: "unreadable upload", Cause: err}
	}
	return file, func() { _ = file.Close() }, nil
}

// responseTimesHandler flattens {"results": map} into one load time per sample
func (s *Server) responseTimesHandler(c *gin.Context) {
	var req struct {
		Results json.RawMessage `json:"results"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}
	if len(req.Results) == 0 {
		respondError(c, http.StatusBadRequest, "Invalid request", errs.Malformed("results is required"))
		return
	}

	results, err := aggregator.DecodeResultMap(bytes.NewReader(req.Results))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid result document", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    aggregator.ExtractResponseTimes(results),
	})
}

