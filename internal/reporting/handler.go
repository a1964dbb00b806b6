package reporting

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	httperr "github.com/cdr-lab/cdr-service/internal/core/errors"
	"github.com/cdr-lab/cdr-service/internal/core/storage"
)

const (
	defaultLongestCallsTop = 10
	dateLayout             = "2006-01-02"

	msgQueryFailed = "Error occurred while executing aggregate query"
)

// RegisterRoutes registers all aggregate query routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/cdr/average-call-cost", s.HandleAverageCallCost)
	r.GET("/v1/cdr/min-call-cost", s.HandleMinCallCost)
	r.GET("/v1/cdr/max-call-cost", s.HandleMaxCallCost)
	r.GET("/v1/cdr/total-call-cost", s.HandleTotalCallCost)
	r.GET("/v1/cdr/total-call-count", s.HandleTotalCallCount)
	r.GET("/v1/cdr/longest-calls", s.HandleLongestCalls)
	r.GET("/v1/cdr/average-number-of-calls", s.HandleAverageNumberOfCalls)
	r.GET("/v1/cdr/most-called-number", s.HandleMostCalledNumber)
	r.GET("/v1/cdr/most-active-caller", s.HandleMostActiveCaller)
	r.GET("/v1/cdr/total-call-duration/:caller_id", s.HandleTotalCallDuration)

	// Same aggregate as most-called-number; the endpoint name is kept
	// for compatibility with existing clients.
	r.GET("/v1/cdr/frequent-called-number", s.HandleFrequentCalledNumber)
}

// HandleAverageCallCost handles GET /v1/cdr/average-call-cost.
// The scalar is null when no records are stored.
func (s *Service) HandleAverageCallCost(c *gin.Context) {
	avg, err := s.AverageCallCost(c.Request.Context())
	if err != nil {
		writeQueryError(c, "average call cost", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"averageCost": avg})
}

// HandleMinCallCost handles GET /v1/cdr/min-call-cost.
func (s *Service) HandleMinCallCost(c *gin.Context) {
	min, err := s.MinCallCost(c.Request.Context())
	if err != nil {
		writeQueryError(c, "min call cost", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"minCost": min})
}

// HandleMaxCallCost handles GET /v1/cdr/max-call-cost.
func (s *Service) HandleMaxCallCost(c *gin.Context) {
	max, err := s.MaxCallCost(c.Request.Context())
	if err != nil {
		writeQueryError(c, "max call cost", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maxCost": max})
}

// HandleTotalCallCost handles GET /v1/cdr/total-call-cost.
// Zero, not null, over an empty record set.
func (s *Service) HandleTotalCallCost(c *gin.Context) {
	total, err := s.TotalCallCost(c.Request.Context())
	if err != nil {
		writeQueryError(c, "total call cost", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalCost": total})
}

// HandleTotalCallCount handles GET /v1/cdr/total-call-count.
func (s *Service) HandleTotalCallCount(c *gin.Context) {
	count, err := s.TotalCallCount(c.Request.Context())
	if err != nil {
		writeQueryError(c, "total call count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalCalls": count})
}

// HandleLongestCalls handles GET /v1/cdr/longest-calls?top=N (default 10).
// List-valued results are returned as a raw array.
func (s *Service) HandleLongestCalls(c *gin.Context) {
	top, err := strconv.Atoi(c.DefaultQuery("top", strconv.Itoa(defaultLongestCallsTop)))
	if err != nil {
		writeValidationError(c, "top must be an integer")
		return
	}

	records, err := s.LongestCalls(c.Request.Context(), top)
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			writeValidationError(c, err.Error())
			return
		}
		writeQueryError(c, "longest calls", err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// HandleAverageNumberOfCalls handles
// GET /v1/cdr/average-number-of-calls?startDate=&endDate= (YYYY-MM-DD).
func (s *Service) HandleAverageNumberOfCalls(c *gin.Context) {
	start, err := time.Parse(dateLayout, c.Query("startDate"))
	if err != nil {
		writeValidationError(c, "startDate must be a date in YYYY-MM-DD form")
		return
	}
	end, err := time.Parse(dateLayout, c.Query("endDate"))
	if err != nil {
		writeValidationError(c, "endDate must be a date in YYYY-MM-DD form")
		return
	}

	average, err := s.AverageNumberOfCalls(c.Request.Context(), start, end)
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			writeValidationError(c, err.Error())
			return
		}
		writeQueryError(c, "average number of calls", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"averageCalls": average})
}

// HandleMostCalledNumber handles GET /v1/cdr/most-called-number.
// Null when no records are stored.
func (s *Service) HandleMostCalledNumber(c *gin.Context) {
	s.writeTopGroup(c, "mostCalledNumber", s.MostCalledNumber)
}

// HandleFrequentCalledNumber handles GET /v1/cdr/frequent-called-number.
func (s *Service) HandleFrequentCalledNumber(c *gin.Context) {
	s.writeTopGroup(c, "frequentNumber", s.MostCalledNumber)
}

// HandleMostActiveCaller handles GET /v1/cdr/most-active-caller.
func (s *Service) HandleMostActiveCaller(c *gin.Context) {
	s.writeTopGroup(c, "mostActiveCaller", s.MostActiveCaller)
}

func (s *Service) writeTopGroup(c *gin.Context, field string, query func(context.Context) (string, error)) {
	value, err := query(c.Request.Context())
	if errors.Is(err, storage.ErrNoRecords) {
		c.JSON(http.StatusOK, gin.H{field: nil})
		return
	}
	if err != nil {
		writeQueryError(c, field, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{field: value})
}

// HandleTotalCallDuration handles GET /v1/cdr/total-call-duration/:caller_id.
func (s *Service) HandleTotalCallDuration(c *gin.Context) {
	callerID := c.Param("caller_id")

	total, err := s.TotalCallDuration(c.Request.Context(), callerID)
	if err != nil {
		writeQueryError(c, "total call duration", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalDuration": total})
}

func writeValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidRequestError,
		Message:   message,
	})
}

// writeQueryError logs the original cause and returns a fixed message;
// the cause is never leaked to the caller.
func writeQueryError(c *gin.Context, what string, err error) {
	slog.Error("Aggregate query failed", "query", what, "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   msgQueryFailed,
	})
}
