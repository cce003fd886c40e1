package logger_test

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"bbcbasic/internal/logger"
)

func TestInitLevel(t *testing.T) {
	logger.Init(false, true)
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	logger.Init(true, true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}
