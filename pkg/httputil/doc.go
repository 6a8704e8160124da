// Package httputil provides the JSON plumbing shared by HTTP handlers.
//
// # Responses
//
// [WriteJSON] encodes a value with a status code. [WriteError] maps an
// error to a status by its [errors.Code] and writes a body of the form
//
//	{"code": "SESSION_NOT_FOUND", "message": "session not found"}
//
// Errors without a code are reported as INTERNAL_ERROR and their text is
// not exposed to the client.
//
// # Requests
//
// [DecodeJSON] reads a size-limited JSON body and rejects unknown fields,
// so a misspelled key fails loudly instead of being ignored.
package httputil
