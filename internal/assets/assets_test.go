package assets

import (
	"io/fs"
	"strings"
	"testing"
)

func TestGetClientJS(t *testing.T) {
	data, err := GetClientJS()
	if err != nil {
		t.Fatalf("GetClientJS failed: %v", err)
	}
	if !strings.Contains(string(data), "/ws?") {
		t.Error("client does not open the session socket")
	}
}

func TestGetClientCSS(t *testing.T) {
	data, err := GetClientCSS()
	if err != nil {
		t.Fatalf("GetClientCSS failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("GetClientCSS returned empty data")
	}
}

func TestClientFS(t *testing.T) {
	entries, err := fs.ReadDir(ClientFS(), ".")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 client files, got %d", len(entries))
	}
}

func TestTags(t *testing.T) {
	tags := Tags()
	if !strings.Contains(tags, ClientJSPath) || !strings.Contains(tags, ClientCSSPath) {
		t.Errorf("Tags() = %q", tags)
	}
}
