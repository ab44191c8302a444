package models

// ValidationError is transient and never persisted; it is recomputed on
// every relevant mutation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
