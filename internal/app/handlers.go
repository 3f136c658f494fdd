package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"timesheet/internal/aggregate"
	"timesheet/internal/auth"
	"timesheet/internal/domain"
	"timesheet/internal/usecase"
)

// ReportService builds reports for a user and range.
type ReportService interface {
	Build(ctx context.Context, userID int64, start, end time.Time) (usecase.Report, error)
	PDF(ctx context.Context, userID int64, start, end time.Time) ([]byte, string, error)
}

// TaskService creates and lists a user's tasks.
type TaskService interface {
	Create(ctx context.Context, userID int64, in usecase.NewTask) (domain.TimeEntry, error)
	Page(ctx context.Context, userID int64, page int) (domain.Page, error)
}

// SessionClearer expires the caller's session.
type SessionClearer interface {
	Clear(w http.ResponseWriter)
}

// Handler serves the JSON and PDF endpoints.
type Handler struct {
	reports  ReportService
	tasks    TaskService
	sessions SessionClearer
}

func NewHandler(reports ReportService, tasks TaskService, sessions SessionClearer) *Handler {
	return &Handler{reports: reports, tasks: tasks, sessions: sessions}
}

type rangeRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CreateReport answers POST /api/reports with a PDF attachment.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := auth.UserID(ctx)

	var req rangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, filename, err := h.reports.PDF(ctx, userID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to write report")
	}
}

type summaryResponse struct {
	Start   time.Time       `json:"startDate"`
	End     time.Time       `json:"endDate"`
	Groups  []groupResponse `json:"groups"`
	Summary totalsResponse  `json:"summary"`
}

type groupResponse struct {
	Date         string              `json:"date"`
	Entries      []domain.TimeEntry  `json:"entries"`
	TotalMinutes int64               `json:"totalMinutes"`
	TotalTime    string              `json:"totalTime"`
	Jobs         []jobTotalsResponse `json:"jobs"`
}

type jobTotalsResponse struct {
	JobType string `json:"jobType"`
	Minutes int64  `json:"minutes"`
	Time    string `json:"time"`
}

type totalsResponse struct {
	domain.Summary
	TotalTime string `json:"totalTime"`
}

// ReportSummary answers GET /api/reports/summary?startDate=&endDate=.
func (h *Handler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := auth.UserID(ctx)

	q := r.URL.Query()
	start, end, err := parseRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.reports.Build(ctx, userID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := summaryResponse{
		Start:  rep.Range.Start,
		End:    rep.Range.End,
		Groups: make([]groupResponse, 0, len(rep.Groups)),
		Summary: totalsResponse{
			Summary:   rep.Summary,
			TotalTime: aggregate.FormatMinutes(rep.Summary.TotalMinutes),
		},
	}
	for _, g := range rep.Groups {
		jobs := make([]jobTotalsResponse, 0, len(g.Jobs))
		for _, j := range g.Jobs {
			jobs = append(jobs, jobTotalsResponse{JobType: j.JobType, Minutes: j.Minutes, Time: aggregate.FormatMinutes(j.Minutes)})
		}
		resp.Groups = append(resp.Groups, groupResponse{
			Date:         g.Date.Format("2006-01-02"),
			Entries:      g.Entries,
			TotalMinutes: g.TotalMinutes,
			TotalTime:    aggregate.FormatMinutes(g.TotalMinutes),
			Jobs:         jobs,
		})
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	JobType     string  `json:"jobType"`
	Date        string  `json:"date"`
	StartTime   string  `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Deadline    *string `json:"deadline"`
}

// CreateTask answers POST /api/tasks with the stored task.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := auth.UserID(ctx)

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toNewTask()
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.Create(ctx, userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, task)
}

func (req createTaskRequest) toNewTask() (usecase.NewTask, error) {
	in := usecase.NewTask{Title: req.Title, Description: req.Description, JobType: req.JobType}
	var err error
	if in.Date, err = parseTimestamp("date", req.Date); err != nil {
		return in, err
	}
	if in.StartTime, err = parseTimestamp("startTime", req.StartTime); err != nil {
		return in, err
	}
	if in.EndTime, err = parseOptionalTimestamp("endTime", req.EndTime); err != nil {
		return in, err
	}
	if in.Deadline, err = parseOptionalTimestamp("deadline", req.Deadline); err != nil {
		return in, err
	}
	return in, nil
}

// ListTasks answers GET /api/tasks?page=N. A missing or malformed page is page 1.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := auth.UserID(ctx)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	p, err := h.tasks.Page(ctx, userID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p.Entries == nil {
		p.Entries = []domain.TimeEntry{}
	}
	writeJSON(w, r, http.StatusOK, p)
}

// Logout expires the session cookie. It succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func decodeJSON(r *http.Request, into any) error {
	if r.Body == nil {
		return domain.Invalid("", "request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return domain.Invalid("", "invalid request body")
	}
	return nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := parseTimestamp("startDate", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTimestamp("endDate", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, domain.Invalid("startDate", "must not be after endDate")
	}
	return start, end, nil
}

func parseTimestamp(field, val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, domain.Invalid(field, "is required")
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be an RFC 3339 timestamp")
	}
	return t, nil
}

func parseOptionalTimestamp(field string, val *string) (*time.Time, error) {
	if val == nil || *val == "" {
		return nil, nil
	}
	t, err := parseTimestamp(field, *val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps err onto the error taxonomy. Internal errors are logged
// and answered with a fixed message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "User not found"})
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Something went wrong"})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
