package api

// LoginRequest carries no required tags: a missing field is just a
// credential that does not match.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OkResponse is the envelope for every JSON reply of the API.
type OkResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
