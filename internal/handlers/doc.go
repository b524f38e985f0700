// Package handlers provides the HTTP API of the clipfilter server.
//
// It includes handlers for:
//   - Uploading the source clip and starting a conversion
//   - Reading the pipeline state, polled or as a server-sent event stream
//   - Serving source and result previews with Range support
//   - Ending the session and releasing previews
//   - Health checks and version information
package handlers
