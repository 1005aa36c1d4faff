package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/reflective-ai/reflective-server/internal/api/recovery"
	"github.com/reflective-ai/reflective-server/internal/conversation"
	"github.com/reflective-ai/reflective-server/internal/memory"
	"github.com/reflective-ai/reflective-server/internal/mood"
	"github.com/reflective-ai/reflective-server/internal/personality"
	"github.com/reflective-ai/reflective-server/internal/tasks"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

// Deps carries the constructed services the router wires into handlers.
type Deps struct {
	Store  vecstore.Store
	Memory *memory.Manager
	Chat   *conversation.Service
	Moods  *mood.Tracker
	Tasks  *tasks.Manager
	Modes  *personality.Manager
	Log    zerolog.Logger
}

// NewRouter creates a new HTTP router with all API routes
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	// Create handlers
	healthHandler := NewHealthHandler(d.Store)
	chatHandler := NewChatHandler(d.Chat, d.Memory, d.Moods, d.Tasks, d.Modes, d.Log)
	moodHandler := NewMoodHandler(d.Moods)
	taskHandler := NewTaskHandler(d.Tasks)
	memoryHandler := NewMemoryHandler(d.Memory)
	personalityHandler := NewPersonalityHandler(d.Modes)
	journalHandler := NewJournalHandler(d.Memory)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Chat endpoint
	router.HandleFunc("/api/chat", chatHandler.ProcessChat).Methods("POST")

	// Mood endpoints
	router.HandleFunc("/api/mood", moodHandler.LogMood).Methods("POST")
	router.HandleFunc("/api/mood/analytics", moodHandler.Analytics).Methods("GET")

	// Task endpoints
	router.HandleFunc("/api/tasks", taskHandler.ListTasks).Methods("GET")
	router.HandleFunc("/api/tasks", taskHandler.AddTask).Methods("POST")
	router.HandleFunc("/api/tasks/analytics", taskHandler.Analytics).Methods("GET")
	router.HandleFunc("/api/tasks/upcoming", taskHandler.Upcoming).Methods("GET")
	router.HandleFunc("/api/tasks/suggested", taskHandler.Suggested).Methods("GET")
	router.HandleFunc("/api/tasks/{taskId}", taskHandler.UpdateTask).Methods("PUT")
	router.HandleFunc("/api/tasks/{taskId}", taskHandler.DeleteTask).Methods("DELETE")

	// Memory endpoints
	router.HandleFunc("/api/memory/reflect", memoryHandler.SaveReflection).Methods("POST")
	router.HandleFunc("/api/memory/remember", memoryHandler.Remember).Methods("POST")
	router.HandleFunc("/api/memory/show", memoryHandler.ShowMemories).Methods("GET")
	router.HandleFunc("/api/memory/category", memoryHandler.MemoryCategory).Methods("GET")

	// Search endpoint
	router.HandleFunc("/api/search", memoryHandler.Search).Methods("POST")

	// Personality endpoints
	router.HandleFunc("/api/personality/modes", personalityHandler.ListModes).Methods("GET")
	router.HandleFunc("/api/personality/mode", personalityHandler.SetMode).Methods("POST")

	// Journal endpoints
	router.HandleFunc("/api/journal/start", journalHandler.StartEntry).Methods("POST")
	router.HandleFunc("/api/journal/latest", journalHandler.LatestEntry).Methods("GET")

	return router
}
