// Package message provides JSON response envelopes whose text fields can
// carry placeholders:
//
//	return message.WithData(http.StatusOK, "#{user_updated}", user), nil
//
// Each envelope implements HTTPStatus, so middlewares.Handle writes it with
// its own status, and ToError, so a failure message can be returned as an
// error and still be translated on the way out.
package message
