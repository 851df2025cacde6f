package logger

// WithFields creates a new logger with pre-set fields
func (log *SlogLogger) WithFields(fields ...any) *SlogLogger {
	if len(fields) == 0 {
		return log
	}

	return &SlogLogger{logger: log.logger.With(fields...)}
}

// WithError creates a new logger with error field
func (log *SlogLogger) WithError(err error) *SlogLogger {
	if err == nil {
		return log
	}

	return log.WithFields("error", err.Error())
}
