//go:build unit

package logger_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dambileh/civitas-bus/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)

	os.Exit(m.Run())
}

func TestOutputInfo(t *testing.T) {
	var buffer bytes.Buffer

	conf := logger.Configuration{
		Level:      logger.INFO_LEVEL,
		Writer:     &buffer,
		TimeFormat: time.RFC822,
	}

	log, err := logger.New(conf)
	require.NoError(t, err, "Error init a logger")

	log.InfoWithContext(context.Background(), "Hello World")

	var response map[string]any

	require.NoError(t, json.Unmarshal(buffer.Bytes(), &response), "Error unmarshalling")

	assert.Equal(t, "INFO", response["level"])
	assert.Equal(t, "Hello World", response["msg"])
}

func TestFields(t *testing.T) {
	var buffer bytes.Buffer

	conf := logger.Configuration{
		Level:      logger.INFO_LEVEL,
		Writer:     &buffer,
		TimeFormat: time.RFC822,
	}

	log, err := logger.New(conf)
	require.NoError(t, err, "Error init a logger")

	log.Info("Hello World", "hello", "world", "first", 1)

	var response map[string]any

	require.NoError(t, json.Unmarshal(buffer.Bytes(), &response), "Error unmarshalling")

	assert.Equal(t, "world", response["hello"])
	assert.Equal(t, float64(1), response["first"])
}

func TestLevelFilter(t *testing.T) {
	var buffer bytes.Buffer

	conf := logger.Configuration{
		Level:      logger.ERROR_LEVEL,
		Writer:     &buffer,
		TimeFormat: time.RFC822,
	}

	log, err := logger.New(conf)
	require.NoError(t, err, "Error init a logger")

	log.Debug("dropped")
	log.Info("dropped as well")
	assert.Zero(t, buffer.Len())

	log.Error("kept")
	assert.NotZero(t, buffer.Len())
}

func TestInvalidLevel(t *testing.T) {
	conf := logger.Configuration{
		Level: 42,
	}

	_, err := logger.New(conf)
	require.ErrorIs(t, err, logger.ErrInvalidLogLevel)
}

func TestWithError(t *testing.T) {
	var buffer bytes.Buffer

	conf := logger.Configuration{
		Level:      logger.INFO_LEVEL,
		Writer:     &buffer,
		TimeFormat: time.RFC822,
	}

	log, err := logger.New(conf)
	require.NoError(t, err, "Error init a logger")

	log.WithError(assert.AnError).Info("Hello World")

	var response map[string]any

	require.NoError(t, json.Unmarshal(buffer.Bytes(), &response), "Error unmarshalling")

	assert.Equal(t, assert.AnError.Error(), response["error"])
}
