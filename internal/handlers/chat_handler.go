// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/mahluminnovations/gymengine/internal/services"
	"github.com/mahluminnovations/gymengine/internal/services/ai"
	"github.com/mahluminnovations/gymengine/internal/services/chat"
	"github.com/mahluminnovations/gymengine/internal/services/ingest"
	"github.com/mahluminnovations/gymengine/internal/services/session"
)

const maxUploadMemory = 32 << 20 // 32 MB held in memory before spilling to disk

// ChatHandler exposes the conversational API: chat turns (blocking and
// streaming), session management, document upload and retrieval Q&A.
type ChatHandler struct {
	ChatService    *chat.Service
	SessionService *session.Service
	Ingestor       *ingest.Service
	ChunkSize      int
	Logger         services.Logger
}

func NewChatHandler(cs *chat.Service, ss *session.Service, ing *ingest.Service, chunkSize int, logger services.Logger) *ChatHandler {
	return &ChatHandler{
		ChatService:    cs,
		SessionService: ss,
		Ingestor:       ing,
		ChunkSize:      chunkSize,
		Logger:         logger,
	}
}

// chatRequest carries one chat turn regardless of transport encoding.
type chatRequest struct {
	UserKey     string
	ChatID      string
	UserMessage string
	Uploads     []ingest.Upload
}

// parseChatRequest accepts either a JSON body or a multipart form with
// optional file parts. Both carry the same three fields.
func parseChatRequest(r *http.Request) (*chatRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return nil, errors.New("invalid multipart form")
		}
		req := &chatRequest{
			UserKey:     r.FormValue("userKey"),
			ChatID:      r.FormValue("chatId"),
			UserMessage: r.FormValue("userMessage"),
		}
		for _, fh := range r.MultipartForm.File["file"] {
			f, err := fh.Open()
			if err != nil {
				return nil, errors.New("could not read uploaded file")
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, errors.New("could not read uploaded file")
			}
			req.Uploads = append(req.Uploads, ingest.Upload{Filename: fh.Filename, Data: data})
		}
		return req, nil
	}

	var body struct {
		UserKey     string `json:"userKey"`
		ChatID      string `json:"chatId"`
		UserMessage string `json:"userMessage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.New("invalid request body")
	}
	return &chatRequest{
		UserKey:     body.UserKey,
		ChatID:      body.ChatID,
		UserMessage: body.UserMessage,
	}, nil
}

// HandleChat processes one chat turn. With ?stream=true the reply is
// delivered as Server-Sent Events; otherwise the full reply is returned
// as a single JSON document.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	req, err := parseChatRequest(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserKey == "" {
		writeError(w, "userKey is required", http.StatusBadRequest)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("stream"), "true") {
		h.streamChat(w, r, req)
		return
	}

	result, err := h.ChatService.Respond(r.Context(), req.UserKey, req.ChatID, req.UserMessage, req.Uploads)
	if err != nil {
		var chatErr *chat.ChatError
		if errors.As(err, &chatErr) && chatErr.Type == chat.ErrTypeValidation {
			writeError(w, chatErr.Message, http.StatusBadRequest)
			return
		}
		h.Logger.Error("chat turn failed", "userKey", req.UserKey, "error", err)
		writeError(w, "Error processing chat", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reply":         result.Reply,
		"chatId":        result.ChatID,
		"references":    []string{},
		"downloadUrl":   nil,
		"reportContent": nil,
	})
}

// streamChat relays assistant fragments over SSE as they arrive. The
// post-processed reply travels in a terminating "final" event; failures
// surface as an "error" event on the open stream.
func (h *ChatHandler) streamChat(w http.ResponseWriter, r *http.Request, req *chatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	setupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	handlers := chat.StreamHandlers{
		OnDelta: func(fragment string) error {
			if err := r.Context().Err(); err != nil {
				return err
			}
			return sendSSEData(w, flusher, fragment)
		},
		OnFinal: func(visible string) {
			sendSSEEvent(w, flusher, "final", visible)
		},
	}

	if _, err := h.ChatService.Stream(r.Context(), req.UserKey, req.ChatID, req.UserMessage, req.Uploads, handlers); err != nil {
		h.Logger.Error("chat stream failed", "userKey", req.UserKey, "error", err)
		sendSSEEvent(w, flusher, "error", err.Error())
	}
}

// GetChats lists every chat session owned by a user key.
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	userKey := r.URL.Query().Get("userKey")
	if userKey == "" {
		writeError(w, "userKey is required", http.StatusBadRequest)
		return
	}

	chats, err := h.SessionService.ListByUser(r.Context(), userKey)
	if err != nil {
		h.Logger.Error("could not list chats", "userKey", userKey, "error", err)
		writeError(w, "Could not retrieve chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

// ArchiveAllChats marks every session of a user as archived.
func (h *ChatHandler) ArchiveAllChats(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserKey string `json:"userKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserKey == "" {
		writeError(w, "userKey is required", http.StatusBadRequest)
		return
	}

	if err := h.SessionService.ArchiveAll(r.Context(), body.UserKey); err != nil {
		h.Logger.Error("could not archive chats", "userKey", body.UserKey, "error", err)
		writeError(w, "Could not archive chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAllChats removes every session of a user along with any stored
// file objects.
func (h *ChatHandler) DeleteAllChats(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserKey string `json:"userKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserKey == "" {
		writeError(w, "userKey is required", http.StatusBadRequest)
		return
	}

	if err := h.SessionService.DeleteAll(r.Context(), body.UserKey); err != nil {
		h.Logger.Error("could not delete chats", "userKey", body.UserKey, "error", err)
		writeError(w, "Could not delete chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteChat removes one session identified by (userKey, chatId).
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserKey string `json:"userKey"`
		ChatID  string `json:"chatId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserKey == "" || body.ChatID == "" {
		writeError(w, "userKey and chatId are required", http.StatusBadRequest)
		return
	}

	if err := h.SessionService.Delete(r.Context(), body.UserKey, body.ChatID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, "Chat not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("could not delete chat", "userKey", body.UserKey, "chatId", body.ChatID, "error", err)
		writeError(w, "Could not delete chat", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RenameChat updates the title of one session.
func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserKey  string `json:"userKey"`
		ChatID   string `json:"chatId"`
		NewTitle string `json:"newTitle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserKey == "" || body.ChatID == "" || body.NewTitle == "" {
		writeError(w, "userKey, chatId and newTitle are required", http.StatusBadRequest)
		return
	}

	if err := h.SessionService.Rename(r.Context(), body.UserKey, body.ChatID, body.NewTitle); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, "Chat not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("could not rename chat", "userKey", body.UserKey, "chatId", body.ChatID, "error", err)
		writeError(w, "Could not rename chat", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UploadLargeFile chunks a document and upserts the segments into the
// search index under the caller's user key. The file is not attached to
// any chat session.
func (h *ChatHandler) UploadLargeFile(w http.ResponseWriter, r *http.Request) {
	userKey := r.URL.Query().Get("userKey")
	if userKey == "" {
		userKey = r.FormValue("userKey")
	}
	if userKey == "" {
		writeError(w, "userKey is required", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	f, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, "could not read uploaded file", http.StatusBadRequest)
		return
	}

	chunks, accepted, err := h.Ingestor.ChunkAndIndex(r.Context(), userKey, fh.Filename, data, h.ChunkSize)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedKind) {
			writeError(w, "unsupported file type", http.StatusBadRequest)
			return
		}
		h.Logger.Error("large file upload failed", "userKey", userKey, "filename", fh.Filename, "error", err)
		writeError(w, "Could not process file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"chunks":   chunks,
		"accepted": accepted,
	})
}

// AskDoc answers a standalone question against the caller's indexed
// documents, outside of any chat session.
func (h *ChatHandler) AskDoc(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserKey  string `json:"userKey"`
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserKey == "" || body.Question == "" {
		writeError(w, "userKey and question are required", http.StatusBadRequest)
		return
	}

	answer, err := h.ChatService.AskDocument(r.Context(), body.UserKey, body.Question)
	if err != nil {
		h.Logger.Error("document question failed", "userKey", body.UserKey, "error", err)
		writeError(w, "Could not answer question", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// GenerateChatTitle asks the completion engine for a short title over a
// supplied message transcript. Failures degrade to a fixed fallback
// title inside the service, so this endpoint never errors on the model.
func (h *ChatHandler) GenerateChatTitle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Messages) == 0 {
		writeError(w, "messages are required", http.StatusBadRequest)
		return
	}

	messages := make([]ai.Message, 0, len(body.Messages))
	for _, m := range body.Messages {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}

	title := h.ChatService.GenerateTitle(r.Context(), messages)
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}
