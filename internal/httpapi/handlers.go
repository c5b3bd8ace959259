package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Suhailakram0318/AI-call/internal/bland"
	"github.com/Suhailakram0318/AI-call/internal/contacts"
	"github.com/Suhailakram0318/AI-call/internal/pipeline"
	"github.com/Suhailakram0318/AI-call/internal/records"
	"github.com/Suhailakram0318/AI-call/internal/reporting"
	"github.com/Suhailakram0318/AI-call/pkg/logger"
)

// CallOrchestrator is the slice of the pipeline the handlers need.
type CallOrchestrator interface {
	Start(ctx context.Context, req bland.CallRequest) (callID string, ok bool)
	Complete(ctx context.Context, callID, phone string) string
	Status(ctx context.Context, callID string) (string, error)
	RunBulk(ctx context.Context, reqs []bland.CallRequest) pipeline.BulkReport
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Calls   CallOrchestrator
	Store   records.Store
	Reports *reporting.Service
}

type startCallRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	BankName  string `json:"bank_name"`
	DueAmount string `json:"due_amount"`
	DueDate   string `json:"due_date"`
	Voice     string `json:"voice,omitempty"`
	Tone      string `json:"tone,omitempty"`
}

// StartCall places one outbound call and returns immediately; polling,
// analysis, and persistence continue in the background.
func (h Handlers) StartCall(c *gin.Context) {
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Name == "" || req.Phone == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name and phone required"})
		return
	}

	callReq := bland.CallRequest{
		Name:      req.Name,
		Phone:     req.Phone,
		BankName:  req.BankName,
		DueAmount: req.DueAmount,
		DueDate:   req.DueDate,
		Voice:     req.Voice,
		Tone:      req.Tone,
	}

	callID, ok := h.Calls.Start(c.Request.Context(), callReq)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Call initiation failed"})
		return
	}

	log := logger.FromGin(c)
	go func() {
		outcome := h.Calls.Complete(context.Background(), callID, callReq.Phone)
		log.Info("background call run finished", "call_id", callID, "outcome", outcome)
	}()

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Initiated call to %s", req.Name),
		"call_id": callID,
	})
}

// CallStatus reports the latest known status for a call, coarsened to
// completed, rejected, initiating or error.
func (h Handlers) CallStatus(c *gin.Context) {
	callID := c.Param("call_id")

	status, err := h.Calls.Status(c.Request.Context(), callID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"call_id": callID, "status": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "status": coarseStatus(status)})
}

func coarseStatus(s string) string {
	switch s {
	case records.StatusCompleted:
		return "completed"
	case records.StatusFailed, records.StatusNoAnswered, records.StatusTimedOut:
		return "rejected"
	default:
		return "initiating"
	}
}

// GetCall returns the persisted record for a finished call.
func (h Handlers) GetCall(c *gin.Context) {
	rec, err := h.Store.Get(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "record lookup failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UploadContacts accepts a CSV or XLSX sheet of borrowers and dials the
// batch in the background.
func (h Handlers) UploadContacts(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	parsed, skipped, err := contacts.ParseFile(header.Filename, file)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(parsed) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no dialable contacts in file", "skipped": skipped})
		return
	}

	bankName := c.PostForm("bank_name")
	reqs := make([]bland.CallRequest, 0, len(parsed))
	for _, ct := range parsed {
		reqs = append(reqs, bland.CallRequest{
			Name:      ct.Name,
			Phone:     ct.Phone,
			BankName:  bankName,
			DueAmount: ct.DueAmount,
			DueDate:   ct.DueDate,
		})
	}

	log := logger.FromGin(c)
	go func() {
		report := h.Calls.RunBulk(context.Background(), reqs)
		log.Info("bulk dialing finished",
			"requested", report.Requested,
			"completed", report.Completed,
			"rejected", report.Rejected,
			"timed_out", report.TimedOut,
			"failed", report.Failed)
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message":  fmt.Sprintf("Dialing %d contacts", len(reqs)),
		"contacts": len(reqs),
		"skipped":  skipped,
	})
}

// CallsReport aggregates stored call outcomes over an optional
// RFC 3339 time range.
func (h Handlers) CallsReport(c *gin.Context) {
	var req reporting.CallsReportRequest

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
			return
		}
		req.Range.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
			return
		}
		req.Range.To = t
	}

	out, err := h.Reports.CallsReport(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}
