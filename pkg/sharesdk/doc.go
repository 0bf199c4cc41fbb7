/*
Package sharesdk provides a client SDK for the JSON surface of the fileshare
server.

# Overview

The HTML pages of the server are meant for browsers. Remote front-ends such
as a tray application or a monitoring script use the small JSON API instead:

	client := sharesdk.NewClient("http://192.168.1.20:8000")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Read server statistics (requires an admin session token)
	status, err := client.GetStatus(ctx, token)

# Errors

Non-2xx responses are returned as *APIError carrying the HTTP status code and
the error code from the response body:

	status, err := client.GetStatus(ctx, token)
	var apiErr *sharesdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// token expired, sign in again
	}
*/
package sharesdk
