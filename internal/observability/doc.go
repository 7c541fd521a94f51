// Package observability provides structured logging for the student records
// service.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - Request-scoped loggers carrying the chi request ID
//   - Structured access logging for every HTTP request
package observability
