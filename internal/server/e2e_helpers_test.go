//go:build !ci

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	chromeImage           = "chromedp/headless-shell:stable"
	chromeContainerPrefix = "chrome-e2e-wrap-"
)

// browser is a chromedp context attached to a headless Chrome container.
type browser struct {
	ctx  context.Context
	port int
}

// startBrowser runs Chrome in Docker and connects chromedp to it. The test
// is skipped when Docker is unavailable.
func startBrowser(t *testing.T, timeout time.Duration) *browser {
	t.Helper()
	if _, err := exec.Command("docker", "version").CombinedOutput(); err != nil {
		t.Skip("Docker not available, skipping browser test")
	}

	port, err := freeTCPPort()
	if err != nil {
		t.Fatalf("Failed to allocate Chrome port: %v", err)
	}
	if err := runChromeContainer(t, port); err != nil {
		t.Fatalf("Failed to start Chrome: %v", err)
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), fmt.Sprintf("http://localhost:%d", port))
	ctx, ctxCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(t.Logf))
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	t.Cleanup(func() {
		timeoutCancel()
		ctxCancel()
		allocCancel()
		removeContainer(t, containerName(port))
	})
	return &browser{ctx: ctx, port: port}
}

func freeTCPPort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func containerName(port int) string {
	return fmt.Sprintf("%s%d", chromeContainerPrefix, port)
}

// runChromeContainer starts headless Chrome with remote debugging on port
// and waits until it answers.
func runChromeContainer(t *testing.T, port int) error {
	t.Helper()
	name := containerName(port)
	exec.Command("docker", "rm", "-f", name).CombinedOutput()

	if _, err := exec.Command("docker", "image", "inspect", chromeImage).CombinedOutput(); err != nil {
		t.Log("Pulling headless Chrome image...")
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if out, err := exec.CommandContext(ctx, "docker", "pull", chromeImage).CombinedOutput(); err != nil {
			return fmt.Errorf("pull %s: %w: %s", chromeImage, err, out)
		}
	}

	// On Linux Chrome shares the host network; elsewhere Docker runs in a VM
	// and the container's default port is mapped instead.
	args := []string{"run", "-d", "--rm", "--memory", "512m", "--name", name}
	if runtime.GOOS == "linux" {
		args = append(args, "--network", "host", chromeImage, fmt.Sprintf("--remote-debugging-port=%d", port))
	} else {
		args = append(args, "-p", fmt.Sprintf("%d:9222", port), chromeImage)
	}
	if _, err := exec.Command("docker", args...).Output(); err != nil {
		return fmt.Errorf("docker run: %w", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	versionURL := fmt.Sprintf("http://localhost:%d/json/version", port)
	var lastErr error
	for i := 0; i < 120; i++ {
		resp, err := client.Get(versionURL)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		lastErr = err
		time.Sleep(500 * time.Millisecond)
	}
	if out, err := exec.Command("docker", "logs", "--tail", "50", name).CombinedOutput(); err == nil {
		t.Logf("Chrome container logs:\n%s", out)
	}
	removeContainer(t, name)
	return fmt.Errorf("chrome not ready after 60s: %w", lastErr)
}

func removeContainer(t *testing.T, name string) {
	out, err := exec.Command("docker", "rm", "-f", name).CombinedOutput()
	if err != nil && !strings.Contains(string(out), "No such container") {
		t.Logf("Warning: failed to remove container %s: %v (%s)", name, err, out)
	}
}

// browserURL rewrites an httptest URL so the containerized Chrome can
// reach it.
func browserURL(u string) string {
	host := "localhost"
	if runtime.GOOS != "linux" {
		host = "host.docker.internal"
	}
	u = strings.Replace(u, "127.0.0.1", host, 1)
	return strings.Replace(u, "[::1]", host, 1)
}
