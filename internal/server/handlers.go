package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/huangsam/timesheet/core"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/iocache"
	"github.com/huangsam/timesheet/internal/outwriter"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/huangsam/timesheet/internal/worklog"
	"github.com/huangsam/timesheet/schema"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// downloadKinds maps the download path segment to a report kind.
var downloadKinds = map[string]schema.ReportKind{
	"detailed":       schema.DetailedReport,
	"summary":        schema.SummaryReport,
	"sprint":         schema.SprintReport,
	"sprint_closure": schema.SprintReport,
}

func (s *Server) snapshotStore() contract.SnapshotStore {
	if s.mgr == nil {
		return nil
	}
	return s.mgr.GetSnapshotStore()
}

// requestConfig clones the server config with the query filters applied.
// Requests can only read snapshots, never files on the server.
func (s *Server) requestConfig(r *http.Request) (*contract.Config, error) {
	cfg := s.cfg.Clone()
	cfg.WorklogPath = ""
	cfg.PayloadPath = ""

	q := r.URL.Query()
	cfg.SnapshotID = strings.TrimSpace(q.Get("snapshot"))
	cfg.Author = strings.TrimSpace(q.Get("author"))
	if v := q.Get("base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q", v)
		}
		cfg.Seed = seed
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("invalid page %q", v)
		}
		cfg.Page = page
	}
	if v := q.Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > contract.MaxPerPage {
			return nil, fmt.Errorf("invalid per_page %q", v)
		}
		cfg.PerPage = perPage
	}
	for key, dst := range map[string]*time.Time{"start": &cfg.StartDate, "end": &cfg.EndDate} {
		if v := q.Get(key); v != "" {
			t, err := contract.ParseDate(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s date %q", key, v)
			}
			*dst = t
		}
	}
	return cfg, nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// uploadSnapshot stores an uploaded worklog and returns its id.
func (s *Server) uploadSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Missing file or base URL")
		return
	}
	file, header, err := r.FormFile("file")
	baseURL := r.FormValue("base_url")
	if err != nil || baseURL == "" {
		writeError(w, http.StatusBadRequest, "Missing file or base URL")
		return
	}
	defer func() { _ = file.Close() }()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}

	entries, err := s.loader.LoadReader(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error reading file: %v", err))
		return
	}

	store := s.snapshotStore()
	snap, err := iocache.SaveWorklog(store, header.Filename, baseURL, entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.snapshotsCreated.Inc()
	if s.cfg.SnapshotMaxAge > 0 {
		if removed, err := iocache.MaybePruneSnapshots(store, s.cfg.SnapshotMaxAge, time.Now()); err != nil {
			s.log.Warn().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("snapshot cleanup failed")
		} else if removed > 0 {
			s.log.Info().Int64("removed", removed).Msg("pruned stale snapshots")
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          snap.ID,
		"source_name": snap.SourceName,
		"entries":     len(entries),
		"authors":     core.Authors(entries),
	})
}

func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	ids, err := iocache.ListWorklogs(s.snapshotStore())
	if err != nil {
		s.writeFailed(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": ids})
}

func (s *Server) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := iocache.RemoveWorklog(s.snapshotStore(), id); err != nil {
		s.writeFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// strainChart synthesizes the strain chart of a snapshot.
func (s *Server) strainChart(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	chart, err := core.GetStrainChart(core.WithSuppressHeader(r.Context()), cfg, s.mgr)
	if err != nil {
		s.writeFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// report returns one report of a snapshot as JSON.
func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	kind := schema.ReportKind(mux.Vars(r)["kind"])
	if _, ok := schema.ValidReportKinds[kind]; !ok {
		writeError(w, http.StatusNotFound, "Invalid report type")
		return
	}
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bundle, _, err := core.GetReportBundle(core.WithSuppressHeader(r.Context()), cfg, s.mgr)
	if err != nil {
		s.writeFailed(w, r, err)
		return
	}

	switch kind {
	case schema.CategoryReport:
		writeJSON(w, http.StatusOK, bundle.Category)
	case schema.SummaryReport:
		page := view.Paginate(len(bundle.Summary), cfg.Page, cfg.PerPage)
		writeJSON(w, http.StatusOK, map[string]any{
			"rows":       view.Slice(bundle.Summary, page),
			"pagination": page,
		})
	case schema.DetailedReport:
		writeJSON(w, http.StatusOK, bundle.Detailed)
	case schema.SprintReport:
		writeJSON(w, http.StatusOK, bundle.Sprint)
	default:
		writeJSON(w, http.StatusOK, bundle)
	}
}

// download streams a report workbook as an attachment.
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	kind, ok := downloadKinds[mux.Vars(r)["kind"]]
	if !ok {
		writeError(w, http.StatusNotFound, "Invalid report type")
		return
	}
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cfg.SnapshotID == "" {
		writeError(w, http.StatusBadRequest, "Missing snapshot")
		return
	}
	bundle, src, err := core.GetReportBundle(core.WithSuppressHeader(r.Context()), cfg, s.mgr)
	if err != nil {
		s.writeFailed(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := outwriter.WriteXLSXReport(&buf, kind, bundle); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outwriter.DownloadName(kind, src.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) getHolidays(w http.ResponseWriter, _ *http.Request) {
	holidays, err := iocache.LoadHolidays(s.snapshotStore())
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": holidays})
}

func (s *Server) putHolidays(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Holidays []string `json:"holidays"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json")
		return
	}
	saved, err := iocache.SaveHolidays(s.snapshotStore(), body.Holidays)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "holidays": saved})
}

// toggleHoliday adds the date when absent and removes it when present.
func (s *Server) toggleHoliday(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json")
		return
	}
	store := s.snapshotStore()
	current, err := iocache.LoadHolidays(store)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	next, added, err := view.ToggleHoliday(current, strings.TrimSpace(body.Date))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := iocache.SaveHolidays(store, next)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "added": added, "holidays": saved})
}

// uploadHolidays replaces the holiday list with the dates of an uploaded workbook.
func (s *Server) uploadHolidays(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeFailure(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	holidays, err := worklog.ParseHolidayWorkbook(file)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := iocache.SaveHolidays(s.snapshotStore(), holidays)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "holidays": saved})
}

// calendar returns the Sunday-first grid of one month with holidays marked.
func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	month := s.cfg.Month
	if v := r.URL.Query().Get("month"); v != "" {
		t, err := time.Parse(contract.MonthLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q, expected YYYY-MM", v))
			return
		}
		month = t
	}
	if month.IsZero() {
		now := time.Now()
		month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	holidays, err := iocache.LoadHolidays(s.snapshotStore())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month.Format(contract.MonthLayout),
		"weeks": view.Calendar(month.Year(), month.Month(), holidays),
	})
}

func (s *Server) getPreference(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, ok := schema.ValidPreferences[name]; !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown preference: %s", name))
		return
	}
	value, err := iocache.LoadPreference(s.snapshotStore(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "value": value})
}

func (s *Server) putPreference(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, ok := schema.ValidPreferences[name]; !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown preference: %s", name))
		return
	}
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeBody(w, r, &body); err != nil || body.Enabled == nil {
		writeError(w, http.StatusBadRequest, `expected {"enabled": true|false}`)
		return
	}
	if err := iocache.SavePreference(s.snapshotStore(), name, *body.Enabled); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "value": strconv.FormatBool(*body.Enabled)})
}
