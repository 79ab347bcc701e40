package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/emsi-platform/studyhub/internal/metrics"
)

// NewRouter mounts the chat routes under /ai and the file routes under /files.
func NewRouter(h *Handler, m *metrics.Metrics, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(identity, captureRoute)

	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	ai := r.PathPrefix("/ai").Subrouter()
	ai.HandleFunc("/start-conversation", h.StartConversation).Methods(http.MethodPost)
	ai.HandleFunc("/get-conversations", h.GetConversations).Methods(http.MethodGet)
	ai.HandleFunc("/save-message", h.SaveMessage).Methods(http.MethodPost)
	ai.HandleFunc("/get-messages/{conversation_id}", h.GetMessages).Methods(http.MethodGet)
	ai.HandleFunc("/conversations/{conversation_id}", h.UpdateConversation).Methods(http.MethodPatch)
	ai.HandleFunc("/conversations/{conversation_id}", h.DeleteConversation).Methods(http.MethodDelete)
	ai.HandleFunc("/ai-chat", h.AIChat).Methods(http.MethodPost)
	ai.HandleFunc("/explain_file", h.ExplainFile).Methods(http.MethodPost)

	files := r.PathPrefix("/files").Subrouter()
	files.HandleFunc("/upload_file/{course_id}", h.UploadFile).Methods(http.MethodPost)
	files.HandleFunc("/get_files/{course_id}", h.GetFiles).Methods(http.MethodGet)
	files.HandleFunc("/generate_download_url/{course_id}/{file_name}", h.GenerateDownloadURL).Methods(http.MethodGet)
	files.HandleFunc("/generate_preview_url/{course_id}/{file_name}", h.GenerateDownloadURL).Methods(http.MethodGet)
	files.HandleFunc("/delete_file/{course_id}/{file_id}", h.DeleteFile).Methods(http.MethodDelete)

	return cors(allowedOrigins, requestID(accessLog(logger, m, r)))
}
