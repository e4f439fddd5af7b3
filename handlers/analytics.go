package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/jobdeck/jobdeck/database"
	"github.com/jobdeck/jobdeck/services"
)

// AnalyticsHandler serves the summary view: aggregates computed live
// over the user's application list.
type AnalyticsHandler struct {
	registry *services.Registry
}

func NewAnalyticsHandler(registry *services.Registry) *AnalyticsHandler {
	return &AnalyticsHandler{registry: registry}
}

type monthlyCount struct {
	Month        string `json:"month"`
	Applications int    `json:"applications"`
}

type analyticsSummary struct {
	TotalApplications int                     `json:"totalApplications"`
	StatusCounts      map[database.Status]int `json:"statusCounts"`
	ByMonth           []monthlyCount          `json:"byMonth"`
	ResponseRate      int                     `json:"responseRate"`
}

// Summary aggregates the board for the analytics charts.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	jobs := ws.Board.Jobs()
	summary := analyticsSummary{
		TotalApplications: len(jobs),
		StatusCounts:      ws.Board.StatusCounts(),
		ByMonth:           monthlyCounts(jobs),
	}

	// Response rate: share of applications that got past the initial
	// send (anything other than a plain rejection counts as a response
	// once it reached a board bucket).
	responded := summary.StatusCounts[database.StatusInterviewObtained] +
		summary.StatusCounts[database.StatusInProcess] +
		summary.StatusCounts[database.StatusAccepted]
	if len(jobs) > 0 {
		summary.ResponseRate = responded * 100 / len(jobs)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"summary": summary,
	})
}

func monthlyCounts(jobs []database.Job) []monthlyCount {
	byMonth := map[string]int{}
	for _, job := range jobs {
		t, err := time.Parse("2006-01-02", job.ApplicationDate)
		if err != nil {
			continue
		}
		byMonth[t.Format("2006-01")]++
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	counts := make([]monthlyCount, 0, len(months))
	for _, m := range months {
		counts = append(counts, monthlyCount{Month: m, Applications: byMonth[m]})
	}
	return counts
}
