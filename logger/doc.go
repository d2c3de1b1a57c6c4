// Package logger provides structured logging for restkit using zerolog.
//
// A Logger is cheap to derive: WithComponent, WithFields and WithError
// return new loggers that share the same output. The HTTP client tags its
// logger with component=httpclient and logs request lifecycle events at
// debug level, failures at warn level.
//
// # Usage
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "billing")
//	client, err := httpclient.New(httpclient.Options{Logger: log})
//
// Use Nop to silence a client entirely.
package logger
