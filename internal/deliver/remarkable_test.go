package deliver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/config"
)

func TestProbe_NoDeviceReachable(t *testing.T) {
	u := NewUploader(config.DeviceConfig{Hosts: []string{"203.0.113.1"}, User: "root"})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := u.Probe(ctx); err == nil {
		t.Error("unreachable host should fail the probe")
	}
}

func TestProbe_NoHostsConfigured(t *testing.T) {
	u := NewUploader(config.DeviceConfig{User: "root"})
	if _, err := u.Probe(context.Background()); err == nil {
		t.Error("empty host list should fail the probe")
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/home/root/doc.pdf", "'/home/root/doc.pdf'"},
		{"it's", `'it'\''s'`},
		{"", "''"},
	}
	for _, tc := range tests {
		if got := shellQuote(tc.in); got != tc.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDocumentMetadata(t *testing.T) {
	data := documentMetadata("NMS_10_Mar_26")

	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta["visibleName"] != "NMS_10_Mar_26" {
		t.Errorf("visibleName %v", meta["visibleName"])
	}
	if meta["type"] != "DocumentType" {
		t.Errorf("type %v", meta["type"])
	}
	if meta["pinned"] != true {
		t.Error("document should be pinned")
	}
	if _, ok := meta["lastModified"].(string); !ok {
		t.Error("lastModified must be a string of unix millis")
	}
}
