package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"carelog/internal/adapters/http/middleware"
	entryStore "carelog/internal/adapters/storage/entry"
	"carelog/internal/application/orchestrators"
	"carelog/internal/application/projections"
	domainEntry "carelog/internal/domain/entry"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// templatesDir is relative to the repo root; tests override it.
var templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	_, loggedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"isLoggedIn": func() bool { return loggedIn },
		"csrfToken":  func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"displayDate": domainEntry.FormatDisplayDate,
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleIndex handles GET / (the submission form)
func handleIndex(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "index.html", map[string]any{
		"CSRFToken": csrf.Token(r),
		"CareTypes": domainEntry.CareTypes,
		"Sites":     domainEntry.Sites,
		"Saved":     r.URL.Query().Get("saved") == "1",
	})
}

// handleSubmit handles POST /submit
func handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.SubmitEntryInput{
		Person:     r.FormValue("person"),
		CareTypes:  r.Form["care_types"],
		Date:       r.FormValue("date"),
		TeamMember: r.FormValue("team_member"),
		Notes:      r.FormValue("notes"),
		Plan:       r.FormValue("plan"),
		Site:       r.FormValue("site"),
	}

	deps := orchestrators.SubmitEntryDeps{EntryStore: stores.EntryStore}
	id, err := orchestrators.ExecuteSubmitEntry(r.Context(), input, deps)
	if err != nil {
		if strings.HasPrefix(err.Error(), "validation:") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/?saved=1", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "id": id})
}

// handleBreakdown handles GET /breakdown
func handleBreakdown(w http.ResponseWriter, r *http.Request) {
	rows, err := projections.QueryGetBreakdown(r.Context(), projections.GetBreakdownDeps{
		EntryStore: stores.EntryStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "breakdown.html", map[string]any{"Rows": rows})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// Already logged in: straight to the dashboard
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.LoginInput{Password: r.FormValue("password")}
	deps := orchestrators.LoginDeps{PasswordHash: adminPasswordHash}

	if err := orchestrators.ExecuteLogin(input, deps); err != nil {
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Error":     "Invalid password",
		})
		return
	}

	token := sessions.Create()
	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// handleLogout handles GET /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// adminRecentLimit caps how many entries the dashboard lists.
const adminRecentLimit = 20

// handleAdmin handles GET /admin
func handleAdmin(w http.ResponseWriter, r *http.Request) {
	entries, err := stores.EntryStore.List(r.Context(), entryStore.ListFilter{OrderByDateDesc: true})
	if err != nil {
		internalError(w, err)
		return
	}

	recent := entries
	if len(recent) > adminRecentLimit {
		recent = recent[:adminRecentLimit]
	}

	data := map[string]any{
		"CSRFToken":        csrf.Token(r),
		"Entries":          recent,
		"TotalEntries":     len(entries),
		"DigestConfigured": digestRecipient != "",
		"DigestSent":       r.URL.Query().Get("digest") == "sent",
	}
	if perfCollector != nil {
		data["Perf"] = perfCollector.Snapshot(timeNow().Add(-time.Hour), 5)
	}
	renderTemplate(w, r, "admin.html", data)
}

// handleSnapshot handles GET /snapshot
func handleSnapshot(w http.ResponseWriter, r *http.Request) {
	rows, err := projections.QueryGetSnapshot(r.Context(),
		projections.GetSnapshotQuery{Now: timeNow()},
		projections.GetSnapshotDeps{EntryStore: stores.EntryStore},
	)
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "snapshot.html", map[string]any{"Rows": rows})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// apiEntry is the JSON wire shape of one entry.
type apiEntry struct {
	ID         int64  `json:"id"`
	Person     string `json:"person"`
	CareTypes  string `json:"care_types"`
	Date       string `json:"date"`
	TeamMember string `json:"team_member"`
	Notes      string `json:"notes"`
	Plan       string `json:"plan"`
	Site       string `json:"site"`
	CreatedAt  string `json:"created_at"`
}

// handleAPIEntries handles GET /api/entries
func handleAPIEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := stores.EntryStore.List(r.Context(), entryStore.ListFilter{OrderByDateDesc: true})
	if err != nil {
		internalError(w, err)
		return
	}

	data := make([]apiEntry, 0, len(entries))
	for _, e := range entries {
		data = append(data, apiEntry{
			ID:         e.ID,
			Person:     e.Person,
			CareTypes:  e.CareTypes,
			Date:       e.Date,
			TeamMember: e.TeamMember,
			Notes:      e.Notes,
			Plan:       e.Plan,
			Site:       e.Site,
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// handleExport handles GET /admin/export
func handleExport(w http.ResponseWriter, r *http.Request) {
	entries, err := stores.EntryStore.List(r.Context(), entryStore.ListFilter{OrderByDateDesc: true})
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=entries.csv")

	cw := csv.NewWriter(w)
	if err := cw.Write(domainEntry.CSVHeader); err != nil {
		internalError(w, err)
		return
	}
	for i := range entries {
		if err := cw.Write(entries[i].CSVRecord()); err != nil {
			internalError(w, err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("csv_flush", "error", err.Error())
	}
}

// handleDeleteEntry handles POST /delete/{id}
func handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	deps := orchestrators.DeleteEntryDeps{EntryStore: stores.EntryStore}
	if err := orchestrators.ExecuteDeleteEntry(r.Context(), id, deps); err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// handleSendDigest handles POST /admin/digest
func handleSendDigest(w http.ResponseWriter, r *http.Request) {
	if emailSender == nil || digestRecipient == "" {
		http.Error(w, "digest email is not configured", http.StatusConflict)
		return
	}

	threshold := 0
	if v := r.FormValue("threshold_days"); v != "" {
		threshold, _ = strconv.Atoi(v)
	}

	result, err := orchestrators.ExecuteSendOverdueDigest(r.Context(),
		orchestrators.OverdueDigestInput{
			Recipient:     digestRecipient,
			From:          emailFromAddress,
			ThresholdDays: threshold,
			Now:           timeNow(),
		},
		orchestrators.OverdueDigestDeps{
			EntryStore: stores.EntryStore,
			Sender:     emailSender,
		},
	)
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin?digest=sent", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "people": result.PeopleListed})
}
