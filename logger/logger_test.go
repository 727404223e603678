package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/get-eventually/go-subscriber/logger"
)

func TestHelpersWithNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		logger.Debug(nil, "debug")
		logger.Info(nil, "info")
		logger.Warn(nil, "warn")
		logger.Error(nil, "error")
	})

	assert.Nil(t, logger.Fields(nil, logger.With("key", "value")))
}

func TestFields(t *testing.T) {
	recorder := new(logger.Recorder)
	l := logger.Fields(recorder, logger.With("subscription", "sub-1"))

	logger.Info(l, "started", logger.With("from", 3))
	logger.Warn(l, "dropped")

	infos := recorder.Entries("info")
	if assert.Len(t, infos, 1) {
		assert.Equal(t, "started", infos[0].Message)
		assert.Equal(t, []logger.Field{
			logger.With("subscription", "sub-1"),
			logger.With("from", 3),
		}, infos[0].Fields)
	}

	warnings := recorder.Entries("warn")
	if assert.Len(t, warnings, 1) {
		assert.Equal(t, []logger.Field{logger.With("subscription", "sub-1")}, warnings[0].Fields)
	}

	assert.Empty(t, recorder.Entries("error"))
}
