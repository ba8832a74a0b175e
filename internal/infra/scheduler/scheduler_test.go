package scheduler

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := New("not a cron spec", func(context.Context) {}, testLogger())

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a cron spec")
}

func TestStartAndStop(t *testing.T) {
	s := New("0 9 * * *", func(context.Context) {}, testLogger())

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
