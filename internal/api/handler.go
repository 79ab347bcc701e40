package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/emsi-platform/studyhub/internal/apperr"
	"github.com/emsi-platform/studyhub/internal/db"
	"github.com/emsi-platform/studyhub/internal/models"
)

// Store is the persistence the handlers need; *db.Database implements it.
type Store interface {
	CreateConversation(ctx context.Context, userID, title string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	GetConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetConversationHistory(ctx context.Context, conversationID string) ([]models.Message, error)
	DeleteConversation(ctx context.Context, id string) error
	UpdateConversationTitle(ctx context.Context, id, title string) error

	CreateFile(ctx context.Context, f *models.FileRecord) error
	GetFile(ctx context.Context, id string) (*models.FileRecord, error)
	ListFiles(ctx context.Context, userID, courseID string) ([]models.FileRecord, error)
	DeleteFile(ctx context.Context, id string) error
}

// ObjectStore holds uploaded file bodies; *storage.S3 implements it.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	SignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Assistant answers chat turns; *chat.Service implements it.
type Assistant interface {
	Complete(ctx context.Context, msgs []models.ChatMessage) (string, error)
	ExplainFile(ctx context.Context, name string) (string, error)
}

type Options struct {
	MaxBodyBytes   int64
	MaxUploadBytes int64
	SignedURLTTL   time.Duration
}

type Handler struct {
	store     Store
	objects   ObjectStore
	assistant Assistant
	logger    *zap.Logger
	maxBody   int64
	maxUpload int64
	urlTTL    time.Duration
}

func NewHandler(store Store, objects ObjectStore, assistant Assistant, logger *zap.Logger, opts Options) *Handler {
	h := &Handler{
		store:     store,
		objects:   objects,
		assistant: assistant,
		logger:    logger,
		maxBody:   opts.MaxBodyBytes,
		maxUpload: opts.MaxUploadBytes,
		urlTTL:    opts.SignedURLTTL,
	}
	if h.maxBody <= 0 {
		h.maxBody = 1 << 20
	}
	if h.maxUpload <= 0 {
		h.maxUpload = 32 << 20
	}
	if h.urlTTL <= 0 {
		h.urlTTL = time.Hour
	}
	return h
}

type StartConversationRequest struct {
	Message string `json:"message"`
}

type SaveMessageRequest struct {
	ConversationID string      `json:"conversation_id"`
	Role           models.Role `json:"role"`
	Content        string      `json:"content"`
}

type UpdateConversationRequest struct {
	Title string `json:"title"`
}

type ExplainFileRequest struct {
	FileName string `json:"file_name"`
}

type ReplyResponse struct {
	Reply string `json:"reply"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "API is running"})
}

// AIChat takes the whole chat history as a JSON array and returns one reply.
func (h *Handler) AIChat(w http.ResponseWriter, r *http.Request) {
	var msgs []models.ChatMessage
	if err := h.decodeJSON(w, r, &msgs); err != nil {
		h.writeError(w, r, err)
		return
	}

	reply, err := h.assistant.Complete(r.Context(), msgs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ReplyResponse{Reply: reply})
}

// ExplainFile takes file_name from the query string, or from a JSON body.
func (h *Handler) ExplainFile(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file_name")
	if name == "" && r.ContentLength != 0 {
		var req ExplainFileRequest
		if err := h.decodeJSON(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
		name = req.FileName
	}

	reply, err := h.assistant.ExplainFile(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ReplyResponse{Reply: reply})
}

func (h *Handler) StartConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req StartConversationRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.writeError(w, r, apperr.Invalid("Initial message required to create conversation."))
		return
	}

	conv, err := h.store.CreateConversation(r.Context(), userID, models.TitleFromMessage(message))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Debug("Created conversation", zap.String("conversation_id", conv.ID))
	h.writeJSON(w, http.StatusOK, map[string]string{"conversation_id": conv.ID})
}

func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	conversations, err := h.store.GetConversations(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (h *Handler) SaveMessage(w http.ResponseWriter, r *http.Request) {
	var req SaveMessageRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if !req.Role.Valid() {
		h.writeError(w, r, apperr.Invalid("unknown role %q", req.Role))
		return
	}
	if _, err := h.ownedConversation(r, req.ConversationID); err != nil {
		h.writeError(w, r, err)
		return
	}

	msg := &models.Message{ConvID: req.ConversationID, Role: req.Role, Content: req.Content}
	if err := h.store.SaveMessage(r.Context(), msg); err != nil {
		h.writeError(w, r, storeError(err, "conversation not found"))
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	convID := mux.Vars(r)["conversation_id"]
	if _, err := h.ownedConversation(r, convID); err != nil {
		h.writeError(w, r, err)
		return
	}
	messages, err := h.store.GetConversationHistory(r.Context(), convID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *Handler) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	convID := mux.Vars(r)["conversation_id"]
	var req UpdateConversationRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		h.writeError(w, r, apperr.Invalid("title is required"))
		return
	}
	if _, err := h.ownedConversation(r, convID); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.UpdateConversationTitle(r.Context(), convID, title); err != nil {
		h.writeError(w, r, storeError(err, "conversation not found"))
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	convID := mux.Vars(r)["conversation_id"]
	if _, err := h.ownedConversation(r, convID); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.DeleteConversation(r.Context(), convID); err != nil {
		h.writeError(w, r, storeError(err, "conversation not found"))
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// ownedConversation loads id for the caller. Conversations of other users
// are reported as missing.
func (h *Handler) ownedConversation(r *http.Request, id string) (*models.Conversation, error) {
	userID, err := requireUser(r)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.Invalid("conversation_id is required")
	}
	conv, err := h.store.GetConversation(r.Context(), id)
	if err != nil {
		return nil, storeError(err, "conversation not found")
	}
	if conv.UserID != userID {
		return nil, apperr.NotFound("conversation not found")
	}
	return conv, nil
}

func storeError(err error, notFound string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, notFound)
	}
	return err
}
