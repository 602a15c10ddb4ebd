package assets

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

// startServe runs p.Serve until the test finishes and returns the base URL.
func startServe(t *testing.T, p *Pipeline, port int) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("Serve did not stop")
		}
	})

	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

func get(url string) (int, string, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	res, err := client.Get(url)
	if err != nil {
		return 0, "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	return res.StatusCode, string(body), err
}

// waitFor polls url until it answers 200 and returns the body.
func waitFor(t *testing.T, url string) string {
	t.Helper()

	var body string
	require.Eventually(t, func() bool {
		status, b, err := get(url)
		if err != nil || status != http.StatusOK {
			return false
		}
		body = b
		return true
	}, 15*time.Second, 100*time.Millisecond)
	return body
}

func TestServe_development(t *testing.T) {
	dir := writeProject(t)
	port := freePort(t)

	p, err := New(buildconfig.Compose(buildconfig.Development, buildconfig.Options{Port: port}), WithWorkDir(dir))
	require.NoError(t, err)
	defer p.Close()

	base := startServe(t, p, port)

	page := waitFor(t, base+"/index.html")
	assert.Contains(t, page, liveReloadScript)
	assert.Contains(t, page, `src="/main.js"`)

	script := waitFor(t, base+"/main.js")
	assert.Contains(t, script, "document.body.dataset.logo")

	src := filepath.Join(dir, "src/assets/img/fresh.jpg")
	dst := filepath.Join(dir, "dist/assets/img/fresh.jpg")
	require.Eventually(t, func() bool {
		if err := os.WriteFile(src, []byte("fresh"), 0o600); err != nil {
			return false
		}
		data, err := os.ReadFile(dst)
		return err == nil && string(data) == "fresh"
	}, 15*time.Second, 200*time.Millisecond)
}

func TestServe_productionServesBuiltFiles(t *testing.T) {
	dir := writeProject(t)
	port := freePort(t)

	p, err := New(buildconfig.Compose(buildconfig.Production, buildconfig.Options{Port: port}), WithWorkDir(dir))
	require.NoError(t, err)
	defer p.Close()

	base := startServe(t, p, port)

	page := waitFor(t, base+"/index.html")
	assert.NotContains(t, page, liveReloadScript)

	scripts := glob(t, filepath.Join(dir, "dist/main.*.js"))
	require.Len(t, scripts, 1)
	onDisk := readFile(t, scripts[0])

	served := waitFor(t, base+"/"+filepath.Base(scripts[0]))
	assert.Equal(t, onDisk, served)
	assert.NotContains(t, served, "// src/index.js")
}

func TestServe_unsafeClean(t *testing.T) {
	dir := writeProject(t)

	p, err := New(buildconfig.Compose(buildconfig.Development, buildconfig.Options{OutputRoot: "..", Port: freePort(t)}), WithWorkDir(dir))
	require.NoError(t, err)

	require.ErrorIs(t, p.Serve(context.Background()), ErrUnsafeClean)
}
