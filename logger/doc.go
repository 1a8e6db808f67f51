// Package logger provides structured logging for convpipe using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields such as the converter
// name, stage index and run id.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pipe")
//	log.Debug("stage done", logger.Fields(logger.FieldConverter, "Split"))
package logger
