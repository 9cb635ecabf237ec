package controllers

// MessageEnvelope is the standard success envelope for mutations that
// return no payload.
type MessageEnvelope struct {
	Code    int    `json:"code" example:"200"`
	Message string `json:"message" example:"Database was created successfully"`
}

// ErrorEnvelope is the standard error envelope.
type ErrorEnvelope struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"not found: database 42"`
}
