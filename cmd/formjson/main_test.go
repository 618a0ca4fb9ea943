package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/formjson/internal/config"
)

const signupPage = `<!doctype html>
<html><body>
<form id="signup">
  <input name="user.name" value="ada">
  <input type="number" name="user.age" value="36">
  <input type="checkbox" name="subscribe">
  <input type="checkbox" name="terms" checked>
  <input name="tags[]" value="math">
  <input name="tags[]" value="">
</form>
</body></html>`

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	chdir(t, t.TempDir())

	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_EncodeFromStdin(t *testing.T) {
	code, stdout, stderr := runCLI(t, "a.b=1&a.c=2&tags[]=x&tags[]=y\n", "encode")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"a":{"b":"1","c":"2"},"tags":["x","y"]}`, stdout)
}

func TestRun_DefaultCommandIsEncode(t *testing.T) {
	code, stdout, stderr := runCLI(t, "name=ada")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"name":"ada"}`, stdout)
}

func TestRun_EncodeFlags(t *testing.T) {
	code, stdout, stderr := runCLI(t, "a.b=1&tags[0]=&tags[1]=z", "encode", "--ignore-deep-key")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"a.b":"1","tags[0]":"","tags[1]":"z"}`, stdout)

	code, stdout, stderr = runCLI(t, "tags[0]=&tags[1]=z", "encode", "--no-compact")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"tags":["","z"]}`, stdout)

	code, stdout, stderr = runCLI(t, "a=1", "encode", "--indent", "\t")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "{\n\t\"a\": \"1\"\n}\n", stdout)
}

func TestRun_EncodeHTML(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "signup.html")
	require.NoError(t, os.WriteFile(page, []byte(signupPage), 0o644))

	t.Run("form values", func(t *testing.T) {
		code, stdout, stderr := runCLI(t, "", "encode", "--html", page, "--selector", "#signup")
		require.Equal(t, 0, code, stderr)
		assert.JSONEq(t, `{"user":{"name":"ada","age":36},"terms":true,"tags":["math"],"subscribe":false}`, stdout)
	})

	t.Run("submitted body", func(t *testing.T) {
		body := filepath.Join(dir, "body.txt")
		require.NoError(t, os.WriteFile(body, []byte("user.name=grace&user.age=85"), 0o644))

		code, stdout, stderr := runCLI(t, "", "encode", "--html", page, "--body", body)
		require.Equal(t, 0, code, stderr)
		assert.JSONEq(t, `{"user":{"name":"grace","age":85},"subscribe":false}`, stdout)
	})

	t.Run("output file", func(t *testing.T) {
		out := filepath.Join(dir, "out.json")
		code, _, stderr := runCLI(t, "subscribe=on", "encode", "--html", page, "--body", "-", "-o", out)
		require.Equal(t, 0, code, stderr)

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.JSONEq(t, `{"subscribe":true}`, string(got))
	})
}

func TestRun_Errors(t *testing.T) {
	code, _, stderr := runCLI(t, "", "encode", "--body", "does-not-exist.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "could not be found")

	code, _, stderr = runCLI(t, "a=%zz", "encode")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Parsing error: invalid form data")

	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte("<p>no form</p>"), 0o644))
	code, _, stderr = runCLI(t, "", "encode", "--html", page)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "No element in the page matches the selector")

	// A page that cannot be read is not reported as a selector miss.
	code, _, stderr = runCLI(t, "", "encode", "--html", dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Parsing error: failed to parse html")
	assert.NotContains(t, stderr, "matches the selector")
}

func TestRun_Config(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "formjson.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("encoding:\n  ignore_deep_key: true\n"), 0o644))

	code, stdout, stderr := runCLI(t, "a.b=1", "--config", cfgPath, "encode")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"a.b":"1"}`, stdout)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("log:\n  level: loud\n"), 0o644))
	code, _, stderr = runCLI(t, "a=1", "--config", bad, "encode")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Configuration error")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, Version)
}

func testApp() *App {
	return &App{
		Config: config.NewConfig(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(newHandler(testApp()))
	defer srv.Close()

	t.Run("form post", func(t *testing.T) {
		resp, err := http.PostForm(srv.URL+"/encode", url.Values{"a.b": {"1"}, "tags[]": {"x", "y"}})
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":{"b":"1"},"tags":["x","y"]}`, string(body))
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/encode")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("not a form", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/encode", "text/plain", strings.NewReader("hello"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("malformed form", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/encode", "application/x-www-form-urlencoded", strings.NewReader("a=%zz"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandler_LogsRequests(t *testing.T) {
	var logs bytes.Buffer
	app := testApp()
	app.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	srv := httptest.NewServer(newHandler(app))
	resp, err := http.PostForm(srv.URL+"/encode", url.Values{"a": {"1"}})
	require.NoError(t, err)
	resp.Body.Close()
	srv.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, logs.String(), "level=DEBUG")
	assert.Contains(t, logs.String(), "POST")
	assert.Contains(t, logs.String(), "/encode")
}

func TestServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, testApp()) }()

	resp, err := http.PostForm("http://"+ln.Addr().String()+"/encode", url.Values{"a": {"1"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, <-done)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
