package api

// RenderRequest asks the web frontend to turn an answer into HTML.
type RenderRequest struct {
	Markdown string `json:"markdown" validate:"max=200000"`
}

type RenderResponse struct {
	HTML string `json:"html"`
}
