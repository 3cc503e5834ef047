package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mmmustafa1/mcqs-quiz/history"
	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/quiz"
	"github.com/mmmustafa1/mcqs-quiz/settings"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

type QuizHandlers struct {
	sessions *quiz.Registry
	ledger   *history.Ledger
	settings *settings.Manager
}

func NewQuizHandlers(sessions *quiz.Registry, ledger *history.Ledger, settingsManager *settings.Manager) *QuizHandlers {
	return &QuizHandlers{
		sessions: sessions,
		ledger:   ledger,
		settings: settingsManager,
	}
}

func (qh *QuizHandlers) HandleQuiz(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/quiz/")

	switch {
	case path == "parse" && r.Method == http.MethodPost:
		qh.parse(w, r)
	case path == "start" && r.Method == http.MethodPost:
		qh.start(w, r)
	case path == "answer" && r.Method == http.MethodPost:
		qh.answer(w, r)
	case path == "next" && r.Method == http.MethodPost:
		qh.next(w, r)
	case path == "restart" && r.Method == http.MethodPost:
		qh.restart(w, r)
	case path == "finish" && r.Method == http.MethodPost:
		qh.finish(w, r)
	case path == "state" && r.Method == http.MethodGet:
		qh.state(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (qh *QuizHandlers) parse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	questions := quiz.Parse(req.Text)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"questions": questions,
		"count":     len(questions),
	})
}

// start builds a fresh session from raw text or pre-parsed questions and
// replaces whatever session the owner had. A generated quiz asks for a
// speculative history placeholder so an abandoned run still shows up.
func (qh *QuizHandlers) start(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var req struct {
		Text              string               `json:"text,omitempty"`
		Questions         []models.Question    `json:"questions,omitempty"`
		Title             string               `json:"title,omitempty"`
		Settings          *models.QuizSettings `json:"settings,omitempty"`
		RecordPlaceholder bool                 `json:"record_placeholder,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	questions := req.Questions
	if len(questions) == 0 && req.Text != "" {
		questions = quiz.Parse(req.Text)
	}
	if len(questions) == 0 {
		http.Error(w, "No questions could be parsed from the input", http.StatusBadRequest)
		return
	}

	quizSettings := qh.settings.QuizSettings(owner)
	if req.Settings != nil {
		quizSettings = *req.Settings
	}

	session := quiz.NewSession(questions, quizSettings, req.Title)
	session.Start()
	qh.sessions.Put(owner, session)

	if req.RecordPlaceholder {
		snap := session.Snapshot()
		qh.ledger.AddQuizEntry(owner, 0, len(snap.Questions), snap.Questions, quizSettings, req.Title)
	}

	utils.LogStudy("Quiz started for %s: %d questions", owner, len(questions))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (qh *QuizHandlers) answer(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := qh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active quiz", http.StatusNotFound)
		return
	}

	var req struct {
		OptionIndex int `json:"option_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := session.SubmitAnswer(req.OptionIndex); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (qh *QuizHandlers) next(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := qh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active quiz", http.StatusNotFound)
		return
	}

	wasFinished := session.Snapshot().Finished
	if err := session.Next(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	qh.recordIfJustFinished(owner, session, wasFinished)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (qh *QuizHandlers) restart(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := qh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active quiz", http.StatusNotFound)
		return
	}

	session.Restart()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (qh *QuizHandlers) finish(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := qh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active quiz", http.StatusNotFound)
		return
	}

	wasFinished := session.Snapshot().Finished
	session.Finish()
	qh.recordIfJustFinished(owner, session, wasFinished)

	snap := session.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"state": snap,
		"score": session.Score(),
		"total": len(snap.Questions),
	})
}

func (qh *QuizHandlers) state(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := qh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active quiz", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

// recordIfJustFinished appends the history entry exactly once, on the
// transition into the finished state.
func (qh *QuizHandlers) recordIfJustFinished(owner string, session *quiz.Session, wasFinished bool) {
	snap := session.Snapshot()
	if wasFinished || !snap.Finished {
		return
	}
	qh.ledger.AddQuizEntry(owner, session.Score(), len(snap.Questions), snap.Questions, snap.Settings, snap.Title)
}
