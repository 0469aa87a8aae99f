// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/partfinder/internal/finder"
	"github.com/pdiddy/partfinder/internal/jobs"
)

const (
	msgPartRequired  = "Part number is required"
	msgPartsRequired = "Both part numbers are required"
	msgNotConfigured = "Server is not configured with a generation API key"
	msgEmptyAnswer   = "The model returned no content"
	msgAccepted      = "Request accepted and processing in background."

	jobKindAlternatives = "alternatives"
)

type errorBody struct {
	Error string `json:"error"`
}

type alternativesRequest struct {
	PartNumber string `json:"partNumber"`
}

type compareRequest struct {
	PartA string `json:"partA"`
	PartB string `json:"partB"`
}

type acceptedBody struct {
	ID      string      `json:"id"`
	Status  jobs.Status `json:"status"`
	Message string      `json:"message"`
}

func preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) alternatives(c *gin.Context) {
	var req alternativesRequest
	if !bind(c, &req, msgPartRequired) {
		return
	}
	res, err := s.svc.Alternatives(c.Request.Context(), req.PartNumber)
	if err != nil {
		s.fail(c, err, msgPartRequired)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) compare(c *gin.Context) {
	var req compareRequest
	if !bind(c, &req, msgPartsRequired) {
		return
	}
	res, err := s.svc.Compare(c.Request.Context(), req.PartA, req.PartB)
	if err != nil {
		s.fail(c, err, msgPartsRequired)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) submitAlternatives(c *gin.Context) {
	var req alternativesRequest
	if !bind(c, &req, msgPartRequired) {
		return
	}
	part := req.PartNumber
	if strings.TrimSpace(part) == "" {
		s.fail(c, finder.ErrInvalidInput, msgPartRequired)
		return
	}
	if !s.svc.Configured() {
		s.fail(c, finder.ErrNotConfigured, msgPartRequired)
		return
	}

	job, err := s.jobs.Submit(c.Request.Context(), jobKindAlternatives, []string{part}, func(ctx context.Context) (any, error) {
		return s.svc.Alternatives(ctx, part)
	})
	if err != nil {
		s.fail(c, err, msgPartRequired)
		return
	}
	c.Header("Location", "/api/jobs/"+job.ID)
	c.JSON(http.StatusAccepted, acceptedBody{ID: job.ID, Status: job.Status, Message: msgAccepted})
}

func (s *Server) job(c *gin.Context) {
	job, err := s.jobs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody{Error: "Job not found"})
		return
	}
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, job)
}

// bind decodes the JSON body. A missing or malformed body is a client error.
func bind(c *gin.Context, dst any, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorBody{Error: "Request body too large"})
			return false
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msg})
		return false
	}
	return true
}

// fail maps a pipeline error to a status code and a short message.
func (s *Server) fail(c *gin.Context, err error, invalidMsg string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, finder.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: invalidMsg})
	case errors.Is(err, finder.ErrNotConfigured):
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: msgNotConfigured})
	case errors.Is(err, finder.ErrEmptyAnswer):
		c.AbortWithStatusJSON(http.StatusBadGateway, errorBody{Error: msgEmptyAnswer})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}
