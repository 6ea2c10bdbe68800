package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/instance"
	"github.com/matheus3301/wppclone/internal/presence"
	"github.com/matheus3301/wppclone/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newServer(t *testing.T) (string, *chat.Service) {
	t.Helper()
	t.Setenv(instance.BaseDirEnv, t.TempDir())
	fs, err := store.OpenFile(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, err)
	svc, err := chat.NewService(context.Background(), fs, presence.NewTracker(time.Minute), bus.New(), zap.NewNop())
	require.NoError(t, err)
	srv := httptest.NewServer(api.NewRouter(svc, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv.URL, svc
}

func execute(args ...string) (string, error) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "wppctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"register"}, {"login"}, {"logout"}, {"heartbeat"}, {"users"}, {"user"},
		{"profile"}, {"contacts", "list"}, {"contacts", "add"}, {"send"},
		{"messages"}, {"chats"}, {"share"}, {"watch"},
	}

	for _, path := range commands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	serverFlag := cmd.PersistentFlags().Lookup("server")
	require.NotNil(t, serverFlag)
	assert.Equal(t, "", serverFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	t.Setenv(instance.BaseDirEnv, t.TempDir())

	_, err := execute("--format", "xml", "users")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidPhoneArgument(t *testing.T) {
	t.Setenv(instance.BaseDirEnv, t.TempDir())

	for _, args := range [][]string{
		{"register", "12a45", "Bob"},
		{"login", "123"},
		{"send", "111111", "22", "hi"},
		{"share", "abcdef"},
	} {
		_, err := execute(args...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), args)
		assert.Contains(t, err.Error(), "must be 6 digits")
	}
}

func TestUsageErrorsExitWithCommandError(t *testing.T) {
	t.Setenv(instance.BaseDirEnv, t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{"missing argument", []string{"login"}},
		{"too few arguments", []string{"send", "111111"}},
		{"extra argument", []string{"users", "extra"}},
		{"unknown command", []string{"nosuchcmd"}},
		{"unknown flag", []string{"users", "--bogus"}},
		{"unknown root flag", []string{"--bogus", "users"}},
		{"unknown subcommand flag", []string{"contacts", "list", "111111", "--bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestBareRootPrintsHelp(t *testing.T) {
	t.Setenv(instance.BaseDirEnv, t.TempDir())

	out, err := execute()
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands")
}

func TestTimeoutFlagSetsClientLimit(t *testing.T) {
	for _, d := range []time.Duration{30 * time.Second, time.Second} {
		opts := &RootOptions{Server: "127.0.0.1:1", Timeout: d}
		assert.Equal(t, d, opts.client().Timeout())
	}
	unlimited := &RootOptions{Server: "127.0.0.1:1"}
	assert.Zero(t, unlimited.client().Timeout())
}

func TestTimeoutFlagAgainstSlowServer(t *testing.T) {
	t.Setenv(instance.BaseDirEnv, t.TempDir())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	_, err := execute("--server", srv.URL, "--timeout", "50ms", "users")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute("--server", srv.URL, "--timeout", "5s", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "PHONE")
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, err := execute("--server", url, "users")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "cannot reach server")
}

func TestRegisterAndListUsers(t *testing.T) {
	url, _ := newServer(t)

	out, err := execute("--server", url, "register", "111111", "Alice", "Smith")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:    Alice Smith")
	assert.Contains(t, out, "Status:  online")

	_, err = execute("--server", url, "register", "111111", "Alice")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, chat.ErrDuplicatePhone)

	out, err = execute("--server", url, "users")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "PHONE"))
	assert.Contains(t, lines[1], "111111")
}

func TestJSONOutput(t *testing.T) {
	url, _ := newServer(t)
	_, err := execute("--server", url, "register", "111111", "Alice")
	require.NoError(t, err)

	out, err := execute("--server", url, "--format", "json", "user", "111111")
	require.NoError(t, err)
	var u store.User
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	assert.Equal(t, "Alice", u.Name)
}

func TestYAMLOutputUsesJSONKeys(t *testing.T) {
	url, _ := newServer(t)
	_, err := execute("--server", url, "register", "111111", "Alice")
	require.NoError(t, err)

	out, err := execute("--server", url, "--format", "yaml", "user", "111111")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Alice", doc["name"])
	assert.Equal(t, chat.DefaultProfilePic, doc["profilePic"])
}

func TestLoginLogoutHeartbeat(t *testing.T) {
	url, svc := newServer(t)
	_, err := execute("--server", url, "register", "111111", "Alice")
	require.NoError(t, err)

	out, err := execute("--server", url, "logout", "111111")
	require.NoError(t, err)
	assert.Equal(t, "111111 logged out\n", out)
	assert.False(t, svc.Presence().Online("111111"))

	_, err = execute("--server", url, "login", "111111")
	require.NoError(t, err)
	assert.True(t, svc.Presence().Online("111111"))

	out, err = execute("--server", url, "heartbeat", "111111")
	require.NoError(t, err)
	assert.Equal(t, "111111 is online\n", out)

	_, err = execute("--server", url, "login", "999999")
	assert.ErrorIs(t, err, chat.ErrNotFound)
}

func TestContactsCommands(t *testing.T) {
	url, _ := newServer(t)
	_, err := execute("--server", url, "register", "222222", "Bob")
	require.NoError(t, err)

	out, err := execute("--server", url, "contacts", "add", "111111", "222222", "Bobby", "B")
	require.NoError(t, err)
	assert.Equal(t, "added Bobby B (222222), registered: yes\n", out)

	_, err = execute("--server", url, "contacts", "add", "111111", "222222", "Again")
	assert.ErrorIs(t, err, chat.ErrDuplicateContact)

	out, err = execute("--server", url, "contacts", "list", "111111")
	require.NoError(t, err)
	assert.Contains(t, out, "Bobby B")
}

func TestSendMessagesAndChats(t *testing.T) {
	url, _ := newServer(t)
	_, err := execute("--server", url, "register", "111111", "Alice")
	require.NoError(t, err)
	_, err = execute("--server", url, "register", "222222", "Bob")
	require.NoError(t, err)

	out, err := execute("--server", url, "send", "111111", "222222", "hello", "there")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sent "))

	_, err = execute("--server", url, "send", "--image", "222222", "111111", "https://example.com/a.png")
	require.NoError(t, err)

	out, err = execute("--server", url, "messages", "222222", "111111")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "111111: hello there")
	assert.Contains(t, lines[1], "222222: [image] https://example.com/a.png")

	out, err = execute("--server", url, "chats", "111111")
	require.NoError(t, err)
	assert.Contains(t, out, "[image]")
	assert.Contains(t, out, "Bob")
}

func TestProfileCommand(t *testing.T) {
	url, _ := newServer(t)
	_, err := execute("--server", url, "register", "111111", "Alice")
	require.NoError(t, err)

	_, err = execute("--server", url, "profile", "111111")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute("--server", url, "profile", "111111", "--bio", "on holiday")
	require.NoError(t, err)
	assert.Contains(t, out, "Bio:     on holiday")
	assert.Contains(t, out, "Name:    Alice")
}

func TestShare(t *testing.T) {
	t.Setenv(instance.BaseDirEnv, t.TempDir())

	out, err := execute("share", "111111")
	require.NoError(t, err)
	assert.Contains(t, out, ContactURIPrefix+"111111")

	qrLines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Greater(t, len(qrLines), 10)
	for _, line := range qrLines[:len(qrLines)-1] {
		assert.True(t, strings.HasPrefix(line, "  "), line)
		assert.Empty(t, strings.Trim(line, " █▀▄"), line)
	}
}

func TestShareJSON(t *testing.T) {
	t.Setenv(instance.BaseDirEnv, t.TempDir())

	out, err := execute("--format", "json", "share", "111111")
	require.NoError(t, err)
	assert.JSONEq(t, `{"phone":"111111","uri":"wppclone:contact:111111"}`, out)
}
