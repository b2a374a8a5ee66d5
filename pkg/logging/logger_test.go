package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points file logging at a temp dir and starts a fresh session.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	prevDir, prevErr := logDir, initErr
	prevSession := sessionID
	logDir, initErr, initOnce = dir, nil, sync.Once{}
	sessionID, sessionIDOnce = "", sync.Once{}

	t.Cleanup(func() {
		logDir, initErr, initOnce = prevDir, prevErr, sync.Once{}
		sessionID, sessionIDOnce = prevSession, sync.Once{}
	})
	return dir
}

var entryPattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] \[([a-z-]+)\] \[([A-Z]+)\] (.*)$`)

func entries(t *testing.T, text string) [][]string {
	t.Helper()
	var out [][]string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		m := entryPattern.FindStringSubmatch(line)
		require.NotNil(t, m, "malformed entry %q", line)
		out = append(out, m[1:])
	}
	return out
}

func TestWriterLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger("binder", &buf)

	log.Debugf("reconcile: anchor %s", "k1")
	log.Infof("bound item %d", 730)
	log.Warnf("probe failed: %v", "refused")
	log.Errorf("start failed for item %d", 440)

	assert.Equal(t, [][]string{
		{"binder", "DEBUG", "reconcile: anchor k1"},
		{"binder", "INFO", "bound item 730"},
		{"binder", "WARN", "probe failed: refused"},
		{"binder", "ERROR", "start failed for item 440"},
	}, entries(t, buf.String()))
	assert.Empty(t, log.LogPath())
	assert.NoError(t, log.Close())
}

func TestNamed_SharesOutputWithOwnComponent(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger("titlepanel", &buf)
	panel := root.Named("panel")
	tracker := panel.Named("tracker")

	root.Infof("starting")
	panel.Warnf("item %d: existence probe failed", 730)
	tracker.Debugf("acquire: polling")

	got := entries(t, buf.String())
	require.Len(t, got, 3)
	assert.Equal(t, "titlepanel", got[0][0])
	assert.Equal(t, "panel", got[1][0])
	assert.Equal(t, "tracker", got[2][0])
	assert.Equal(t, root.SessionID(), tracker.SessionID())
}

func TestNamed_ConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger("binder", &buf)
	children := []*Logger{root.Named("panel"), root.Named("tracker"), root.Named("remover")}

	var wg sync.WaitGroup
	for _, child := range children {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				child.Infof("tick %d", i)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, entries(t, buf.String()), 150)
}

func TestDiscard(t *testing.T) {
	log := Discard("update")
	log.Infof("dropped %d", 1)
	log.Named("gate").Errorf("also dropped")
	assert.Empty(t, log.LogPath())
	assert.NotEmpty(t, log.SessionID())
}

func TestNewLogger_SessionFile(t *testing.T) {
	dir := isolate(t)

	first, err := NewLogger("titlepanel")
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })

	second, err := NewLogger("browser")
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	want := filepath.Join(dir, GetSessionID()+"-titlepanel.log")
	assert.Equal(t, want, first.LogPath())
	assert.Equal(t, want, second.LogPath(), "components of one run share a file")

	first.Infof("config loaded")
	first.Named("binder").Infof("bound item %d", 730)
	second.Warnf("page closed")

	raw, err := os.ReadFile(want)
	require.NoError(t, err)
	got := entries(t, string(raw))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"binder", "INFO", "bound item 730"}, got[1])
	assert.Equal(t, []string{"browser", "WARN", "page closed"}, got[2])

	info, err := os.Stat(want)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	logs, err := GetLogDirectory()
	require.NoError(t, err)
	assert.Equal(t, dir, logs)
}

func TestNewLogger_ChildCloseLeavesFileOpen(t *testing.T) {
	isolate(t)

	root, err := NewLogger("titlepanel")
	require.NoError(t, err)

	child := root.Named("tui")
	require.NoError(t, child.Close())
	root.Infof("still writing")

	require.NoError(t, root.Close())
	require.NoError(t, root.Close())

	raw, err := os.ReadFile(root.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "still writing")
}

func TestNewLogger_FallsBackWhenDirUnusable(t *testing.T) {
	dir := isolate(t)
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	logDir = filepath.Join(blocker, "logs")

	log, err := NewLogger("titlepanel")
	require.Error(t, err)
	require.NotNil(t, log, "a usable stderr logger is returned with the error")
	assert.Empty(t, log.LogPath())
	assert.NotEmpty(t, log.SessionID())
}
