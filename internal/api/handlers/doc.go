package handlers

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// defaultUserID is used when a request carries no X-User-ID header. The
// service is typically deployed per seller; multi-user deployments put a
// proxy in front that sets the header.
const defaultUserID = "default"

func userOrDefault(userID string) string {
	if userID == "" {
		return defaultUserID
	}
	return userID
}
