package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeletonhq/backend/internal/logger"
)

func TestLogger(t *testing.T) {
	type testCase struct {
		name             string
		cfg              logger.Log
		shouldHaveOutPut bool
		outPutIsJSON     bool
	}

	testCases := []testCase{
		{
			name: "no logger enabled log level not set",
			cfg: logger.Log{
				LogLevel:    "",
				ServiceName: "test",
				AppName:     "test",
			},
			shouldHaveOutPut: false,
		},
		{
			name: "console enabled log level info",
			cfg: logger.Log{
				LogLevel:    "INFO",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			shouldHaveOutPut: true,
		},
		{
			name: "console enabled console writer enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			shouldHaveOutPut: true,
		},
		{
			name: "console enabled console writer disabled warning expect json",
			cfg: logger.Log{
				LogLevel:    "WARNING",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: false},
			},
			shouldHaveOutPut: true,
			outPutIsJSON:     true,
		},
		{
			name: "console enabled console writer disabled trace expect json stack",
			cfg: logger.Log{
				LogLevel:     "trace",
				ServiceName:  "test",
				AppName:      "test",
				ReportCaller: true,
				Console:      logger.Console{Enabled: true, UseConsoleWriter: false},
			},
			shouldHaveOutPut: true,
			outPutIsJSON:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := testLoggerConfig(t, tc.cfg)
			t.Logf("out: %s", out)

			switch {
			case out == "" && tc.shouldHaveOutPut:
				t.Errorf("expected console output but got none")
			case out != "" && !tc.shouldHaveOutPut:
				t.Errorf("expected no console output but got: %s", out)
			case tc.outPutIsJSON:
				for _, outLine := range strings.Split(out, "\n") {
					if outLine == "" {
						continue
					}

					var entry map[string]any
					if err := json.Unmarshal([]byte(outLine), &entry); err != nil {
						t.Errorf("expected json output but got: %s", outLine)

						continue
					}

					assert.Equal(t, "test", entry[logger.NameFieldName])
					assert.Contains(t, entry, zerolog.TimestampFieldName)
					assert.Contains(t, entry, zerolog.LevelFieldName)
					assert.Contains(t, entry, zerolog.MessageFieldName)
				}
			}
		})
	}
}

func TestInitValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logger.Log
		wantErr error
	}{
		{
			name:    "missing service name",
			cfg:     logger.Log{AppName: "test"},
			wantErr: logger.ErrServiceNameIsEmpty,
		},
		{
			name:    "missing app name",
			cfg:     logger.Log{ServiceName: "test"},
			wantErr: logger.ErrAppNameIsEmpty,
		},
		{
			name: "file enabled without filename",
			cfg: logger.Log{
				ServiceName: "test",
				AppName:     "test",
				File:        logger.LogFile{Enabled: true},
			},
			wantErr: logger.ErrFilenameIsEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logger.Init(tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := logger.Init(logger.Log{LogLevel: "verbose", ServiceName: "test", AppName: "test"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"INFO", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"Warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"critical", zerolog.FatalLevel},
		{"trace", zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := logger.ParseLevel("loud")
	assert.Error(t, err)
}

func TestFileSink(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "nested", "logs", "app.log")

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		File: logger.LogFile{
			Enabled:    true,
			Filename:   filename,
			MaxSize:    10,
			MaxBackups: 5,
		},
		Quiet: logger.DefaultQuiet(),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = logger.Close() })

	log.Info().Msg("root message")

	access := logger.Named(logger.AccessLogger)
	access.Info().Msg("quiet access message")
	access.Warn().Msg("loud access message")

	orm := logger.Named(logger.ORMLogger)
	orm.Debug().Msg("quiet sql message")

	other := logger.Named("other")
	other.Info().Msg("other message")

	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filename)
	require.NoError(t, err)

	out := string(content)
	assert.Contains(t, out, "root message")
	assert.Contains(t, out, "loud access message")
	assert.Contains(t, out, "other message")
	assert.NotContains(t, out, "quiet access message")
	assert.NotContains(t, out, "quiet sql message")

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(out, "\n", 2)[0]), &first))
	assert.Equal(t, "test", first[logger.NameFieldName])
	assert.Equal(t, "info", first[zerolog.LevelFieldName])
	assert.Equal(t, "root message", first[zerolog.MessageFieldName])
}

func TestFileSinkDirectoryFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		File: logger.LogFile{
			Enabled:  true,
			Filename: filepath.Join(blocker, "logs", "app.log"),
		},
	})
	assert.Error(t, err)
}

func alwaysErrFunc() error {
	return errors.New("a test error") //nolint:goerr113
}

func testLoggerConfig(t *testing.T, cfg logger.Log) string {
	t.Helper()
	// keep default std out
	stdout := os.Stdout
	stderr := os.Stderr

	// capture stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	err := logger.Init(cfg)
	if err != nil {
		t.Error(err)
	}

	log.Info().Msg("this info message should be seen...")
	log.Error().Err(alwaysErrFunc()).Msg("this err message should be seen...")
	log.Trace().Err(alwaysErrFunc()).Msg("this trace message should be seen...")

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// back to normal state
	_ = w.Close()
	os.Stdout = stdout // restoring the real stdout
	os.Stderr = stderr // restoring the real stderr
	out := <-outC

	return out
}
