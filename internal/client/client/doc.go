// Package client talks to the authkeeper HTTP API.
//
// Every response is wrapped in the server's envelope
// {statusCode, data, message, success}. Failures come back as *APIError,
// which unwraps to the matching sentinel from package common, so callers
// can write errors.Is(err, common.ErrorUnauthorized). Transport failures
// wrap ErrUnavailable.
package client
