//go:build !ci

package server

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageContains(text string) chromedp.Action {
	var found bool
	return chromedp.Poll(`document.querySelector('#wrap-stage') !== null && `+
		`document.querySelector('#wrap-stage').textContent.includes('`+text+`')`,
		&found, chromedp.WithPollingTimeout(10*time.Second))
}

func TestBrowserNavigatesDeck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	srv, _ := newTestServer(t, testOptions{})
	ts := startHTTP(t, srv)
	b := startBrowser(t, 60*time.Second)

	var (
		mu         sync.Mutex
		exceptions []string
	)
	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			args := make([]string, len(ev.Args))
			for i, arg := range ev.Args {
				args[i] = fmt.Sprintf("%s", arg.Value)
			}
			t.Logf("[Browser Console] %s: %s", ev.Type, strings.Join(args, " "))
		case *runtime.EventExceptionThrown:
			mu.Lock()
			exceptions = append(exceptions, ev.ExceptionDetails.Text)
			mu.Unlock()
		case *network.EventWebSocketFrameReceived:
			t.Logf("[WebSocket <-] %.120s", ev.Response.PayloadData)
		}
	})

	var hash string
	err := chromedp.Run(b.ctx,
		chromedp.Navigate(browserURL(ts.URL)+"/index.html"),
		stageContains("Welcome"),
		chromedp.KeyEvent(kb.ArrowRight),
		stageContains("Middle"),
		chromedp.Evaluate(`location.hash`, &hash),
	)
	require.NoError(t, err)
	assert.Equal(t, "#1", hash)

	var url string
	err = chromedp.Run(b.ctx,
		chromedp.Navigate(browserURL(ts.URL)+"/index.html?again#end"),
		stageContains("Finale"),
		chromedp.Evaluate(`location.href`, &url),
	)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "#2"), url)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, exceptions, "client script threw")
}
