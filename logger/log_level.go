package logger

import (
	"os"
	"time"
)

// Log levels, ordered from most to least severe.
const (
	FATAL_LEVEL = iota
	ERROR_LEVEL
	WARN_LEVEL
	INFO_LEVEL
	DEBUG_LEVEL
)

var (
	defaultWriter     = os.Stdout
	defaultTimeFormat = time.RFC3339Nano
)
