// Command devserver runs a small demo of the formula engine over a
// gorm-backed task table: list records, filter them with a canonical
// filter tree, apply highlight rules and compute ad-hoc formulas.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	formula "github.com/rowbase/formula"
)

type server struct {
	db     *gorm.DB
	engine *formula.Engine
	logger *slog.Logger
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.AutoMigrate(&Task{}); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &server{
		db:     db,
		engine: formula.NewEngine(formula.WithLogger(logger), formula.WithServiceName("devserver")),
		logger: logger,
	}
	if err := srv.seed(); err != nil {
		logger.Error("failed to seed database", slog.Any("error", err))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/records", srv.handleListRecords)
	mux.HandleFunc("POST /api/records/filter", srv.handleFilterRecords)
	mux.HandleFunc("POST /api/records/highlight", srv.handleHighlightRecords)
	mux.HandleFunc("POST /api/formula", srv.handleFormula)

	handler := withServerTiming(withRequestLogging(logger, mux))

	logger.Info("devserver listening", slog.String("addr", *addr))
	if err := http.ListenAndServe(*addr, handler); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func (s *server) seed() error {
	tasks := sampleTasks(time.Now())
	return s.db.Create(&tasks).Error
}

func (s *server) loadTasks(w http.ResponseWriter) ([]Task, bool) {
	var tasks []Task
	if err := s.db.Find(&tasks).Error; err != nil {
		s.logger.Error("failed to load tasks", slog.Any("error", err))
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return nil, false
	}
	return tasks, true
}

func (s *server) handleListRecords(w http.ResponseWriter, _ *http.Request) {
	tasks, ok := s.loadTasks(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{"records": tasks})
}

// handleFilterRecords filters the table with a canonical filter tree.
// The filter is accepted in any of the legacy persisted shapes and
// normalized before compilation.
func (s *server) handleFilterRecords(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tasks, ok := s.loadTasks(w)
	if !ok {
		return
	}

	tree := formula.NormalizeFilter(req.Filter)
	fields := taskFields()

	matched := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if s.engine.EvaluateFilterTree(r.Context(), tree, task.row(), fields) {
			matched = append(matched, task)
		}
	}
	writeJSON(w, map[string]interface{}{"records": matched, "total": len(tasks)})
}

// handleHighlightRecords reports, for each record, the first matching
// highlight rule's style.
func (s *server) handleHighlightRecords(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rules []formula.HighlightRule `json:"rules"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tasks, ok := s.loadTasks(w)
	if !ok {
		return
	}

	fields := taskFields()
	type highlighted struct {
		RecordID string                  `json:"recordId"`
		RuleID   string                  `json:"ruleId,omitempty"`
		Style    *formula.HighlightStyle `json:"style,omitempty"`
	}

	results := make([]highlighted, 0, len(tasks))
	for _, task := range tasks {
		entry := highlighted{RecordID: task.ID}
		if rule := s.engine.EvaluateHighlightRules(r.Context(), req.Rules, task.row(), fields); rule != nil {
			entry.RuleID = rule.ID
			entry.Style = &rule.Style
		}
		results = append(results, entry)
	}
	writeJSON(w, map[string]interface{}{"highlights": results})
}

// handleFormula computes a raw formula against every record, the way a
// KPI block computes an expression per row.
func (s *server) handleFormula(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Formula string `json:"formula"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tasks, ok := s.loadTasks(w)
	if !ok {
		return
	}

	fields := taskFields()
	type computed struct {
		RecordID string      `json:"recordId"`
		Value    interface{} `json:"value"`
		Error    bool        `json:"error,omitempty"`
	}

	results := make([]computed, 0, len(tasks))
	for _, task := range tasks {
		v := s.engine.EvaluateFormula(r.Context(), req.Formula, task.row(), fields)
		results = append(results, computed{
			RecordID: task.ID,
			Value:    v.Interface(),
			Error:    v.IsError(),
		})
	}
	writeJSON(w, map[string]interface{}{"results": results})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}
