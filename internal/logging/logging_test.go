package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestGetLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"fatal":   logrus.FatalLevel,
		"info":    logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
		"":        logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, GetLevel(in), "level %q", in)
	}
}

func TestCombinedWriterCollectsErrors(t *testing.T) {
	var a, b bytes.Buffer
	errOne := errors.New("one")
	errTwo := errors.New("two")
	cw := NewCombinedWriter(&a, failingWriter{errOne}, &b, failingWriter{errTwo})

	n, err := cw.Write([]byte("hello"))
	assert.Equal(t, 5, n)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, errOne)
	assert.ErrorIs(t, err, errTwo)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())
}

func TestSetupWritesToFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "ptrack.log")
	closer := Setup(Params{Level: "debug", JSON: true, File: path})
	logrus.WithField("key", "pt_tracker_data").Debug("saved")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"key":"pt_tracker_data"`), string(raw))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetupFallback(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	var buf bytes.Buffer
	closer := Setup(Params{Level: "warn", Fallback: &buf})
	logrus.Info("hidden")
	logrus.Warn("shown")
	require.NoError(t, closer.Close())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
