package model

// ErrorResponse is the JSON body of every API error. Code names the error
// kind, e.g. "validation", "locked_out" or "duplicate".
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
