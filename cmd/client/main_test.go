package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wynn-raid-parser/internal/domain"
)

const reporter = "069a79f4-44e9-4726-a5be-fca90e38aaf5"

var chatLog = strings.Join([]string{
	`"Alice, Bob, Carol, and Dave have defeated The Canyon Colossus! Total aspects collected: 3, emeralds looted: 1500, XP gained: 2.5m"`,
	``,
	`{"text":"[Guild] Alice: gg"}`,
	`"Alice, Bob, Carol, and Dave have defeated The Canyon Colossus! Total aspects collected: 3, emeralds looted: 1500, XP gained: 2.5m"`,
	`"Alice, Bob, Carol, and Dave have defeated The Frozen Halls! Total aspects collected: 3, emeralds looted: 1500, XP gained: 2.5m"`,
	`{broken`,
	`"Eve, Bob, Carol, and Dave have defeated Nest of the Grootslangs! Total aspects collected: 1, emeralds looted: 2k, XP gained: 10, SR: 5"`,
}, "\n")

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing.yml")
	logPath := writeFile(t, dir, "chat.log", chatLog)

	t.Run("json output", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"-config", cfgPath, "-format", "json", "-reporter", reporter, logPath},
			&stdout, &stderr)
		assert.Equal(t, 0, code, stderr.String())

		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 2)

		var first domain.GuildRaid
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, domain.RaidCanyonColossus, first.Type)
		assert.Equal(t, reporter, first.ReporterID.String())

		var second domain.GuildRaid
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
		assert.Equal(t, domain.RaidNestOfTheGrootslangs, second.Type)
		assert.Equal(t, int64(2000), second.Emeralds)
		assert.Equal(t, 5, second.SR)

		errOut := stderr.String()
		assert.Contains(t, errOut, "chat.log:5: unknown_raid_type")
		assert.Contains(t, errOut, "chat.log:6: invalid_line")
		assert.NotContains(t, errOut, "not_a_raid_line")
	})

	t.Run("console output", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"-config", cfgPath, "-format", "console", "-reporter", reporter, logPath},
			&stdout, &stderr)
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout.String(), "--- Guild Raids ---")
		assert.Contains(t, stdout.String(), "Total: 2")
	})

	t.Run("xlsx output", func(t *testing.T) {
		out := filepath.Join(dir, "raids.xlsx")
		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"-config", cfgPath, "-format", "xlsx", "-out", out, "-reporter", reporter, logPath},
			&stdout, &stderr)
		assert.Equal(t, 0, code)
		assert.FileExists(t, out)
	})

	t.Run("missing reporter is reported per line", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), []string{"-config", cfgPath, "-format", "json", logPath}, &stdout, &stderr)
		assert.Equal(t, 0, code)
		assert.Empty(t, strings.TrimSpace(stdout.String()))
		assert.Contains(t, stderr.String(), "chat.log:1: missing_local_player")
	})

	t.Run("unreadable file", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"-config", cfgPath, "-format", "json", "-reporter", reporter, filepath.Join(dir, "nope.log"), logPath},
			&stdout, &stderr)
		assert.Equal(t, 1, code)
		// Остальные файлы все равно обрабатываются.
		assert.Len(t, strings.Split(strings.TrimSpace(stdout.String()), "\n"), 2)
	})

	t.Run("remote server", func(t *testing.T) {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			assert.Equal(t, "/api/v1/lines", r.URL.Path)
			assert.Equal(t, reporter, r.Header.Get("X-Reporter-UUID"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ignored","reason":"not_a_raid_line"}`))
		}))
		defer ts.Close()

		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"-config", cfgPath, "-format", "json", "-reporter", reporter, "-server", ts.URL, logPath},
			&stdout, &stderr)
		assert.Equal(t, 0, code)
		assert.Empty(t, strings.TrimSpace(stdout.String()))
		assert.Empty(t, stderr.String())
		// Пустые строки на сервер не отправляются.
		assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
	})

	t.Run("list raids from server", func(t *testing.T) {
		var (
			mu    sync.Mutex
			paths []string
		)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			paths = append(paths, r.URL.RequestURI())
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/health":
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			case "/api/v1/raids":
				_, _ = w.Write([]byte(`{"count":2,"raids":[` +
					`{"id":"b","raid":{"type":"TNA","players":["A","B","C","D"],"reporterID":"` + reporter + `","aspects":1,"emeralds":2,"xp":3,"sr":0}},` +
					`{"id":"a","raid":{"type":"TCC","players":["E","F","G","H"],"reporterID":"` + reporter + `","aspects":4,"emeralds":5,"xp":6,"sr":7}}]}`))
			default:
				http.NotFound(w, r)
			}
		}))
		defer ts.Close()

		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"-config", cfgPath, "-format", "json", "-server", ts.URL, "-list", "-limit", "2"},
			&stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
		mu.Lock()
		assert.Equal(t, []string{"/health", "/api/v1/raids?limit=2"}, paths)
		mu.Unlock()

		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 2)
		var first domain.GuildRaid
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, domain.RaidNamelessAnomaly, first.Type)
	})

	t.Run("get raid by id", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/health":
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			case "/api/v1/raids/abc":
				_, _ = w.Write([]byte(`{"id":"abc","raid":{"type":"NOL","players":["A","B","C","D"],"reporterID":"` + reporter + `","aspects":1,"emeralds":2,"xp":3,"sr":0}}`))
			default:
				http.NotFound(w, r)
			}
		}))
		defer ts.Close()

		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"-config", cfgPath, "-format", "json", "-server", ts.URL, "-raid", "abc"},
			&stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
		var raid domain.GuildRaid
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout.String())), &raid))
		assert.Equal(t, domain.RaidOrphionsNexusOfLight, raid.Type)

		stdout.Reset()
		stderr.Reset()
		code = run(context.Background(),
			[]string{"-config", cfgPath, "-format", "json", "-server", ts.URL, "-raid", "missing"},
			&stdout, &stderr)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr.String(), "failed to get raid missing")
	})

	t.Run("server unavailable", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer ts.Close()

		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"-config", cfgPath, "-format", "json", "-server", ts.URL, "-list"},
			&stdout, &stderr)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr.String(), "raid server is not available")
	})

	t.Run("bad flags", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(context.Background(), []string{"-config", cfgPath}, &stdout, &stderr))
		assert.Equal(t, 2, run(context.Background(), []string{"-config", cfgPath, "-format", "xml", logPath}, &stdout, &stderr))
		assert.Equal(t, 2, run(context.Background(), []string{"-config", cfgPath, "-reporter", "nope", logPath}, &stdout, &stderr))
		assert.Equal(t, 2, run(context.Background(), []string{"-config", cfgPath, "-list"}, &stdout, &stderr))
		assert.Equal(t, 2, run(context.Background(), []string{"-config", cfgPath, "-server", "http://x", "-list", "-raid", "a"}, &stdout, &stderr))
		assert.Equal(t, 2, run(context.Background(), []string{"-config", cfgPath, "-server", "http://x", "-list", logPath}, &stdout, &stderr))
	})
}
