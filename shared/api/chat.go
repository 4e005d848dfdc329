package api

// Multipart field names of POST /api/chat.
const (
	ChatFieldPrompt  = "prompt"
	ChatFieldFiles   = "files"
	ChatFieldHistory = "history"
)
