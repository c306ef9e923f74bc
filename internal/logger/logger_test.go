package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit_FallsBackToWarn(t *testing.T) {
	Init("not-a-level")
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())

	Init("debug")
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
}

func TestWithComponent_AddsField(t *testing.T) {
	Init("info")
	var buf bytes.Buffer
	SetOutput(&buf)

	WithComponent("gateway").Info("hello")

	assert.Contains(t, buf.String(), `"component":"gateway"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestWithComponent_InitialisesLazily(t *testing.T) {
	Log = nil
	entry := WithComponent("session")
	assert.NotNil(t, Log)
	assert.Equal(t, "session", entry.Data["component"])
}
