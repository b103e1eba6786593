package dynplugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/akarpov91/SongLinkBot-Go/bot/config"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
)

const tidalScript = `package tidal

import "strings"

var idPrefix string

func Init(settings map[string]string) error {
	idPrefix = settings["id_prefix"]
	return nil
}

func Meta() map[string]interface{} {
	return map[string]interface{}{
		"name":    "tidal",
		"version": "0.1.0",
		"url":     "https://example.com/plugins/tidal",
		"platforms": []map[string]interface{}{
			{
				"key":          "tidal",
				"display_name": "Tidal",
				"order":        9,
				"url_pattern":  "https?://(listen\\.)?tidal\\.com/[^\\s.,]*",
			},
		},
	}
}

func MatchURL(key, url string) map[string]interface{} {
	if key != "tidal" || !strings.Contains(url, "tidal.com") {
		return map[string]interface{}{"matched": false}
	}
	return map[string]interface{}{"id": idPrefix + url, "matched": true}
}
`

func writeScript(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func testConfig(t *testing.T, scriptDir, extra string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	body := "BOT_TOKEN = test\nPluginScriptDir = " + scriptDir + "\n" + extra
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestManagerLoadsScriptPlatform(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "tidal.go", tidalScript)
	cfg := testConfig(t, dir, "")
	reg := registry.New()
	m := NewManager(nil)

	if err := m.Load(context.Background(), cfg, reg); err != nil {
		t.Fatalf("load: %v", err)
	}

	plat, ok := reg.Get("tidal")
	if !ok {
		t.Fatal("tidal platform not registered")
	}
	if plat.DisplayName() != "Tidal" {
		t.Errorf("display name = %q", plat.DisplayName())
	}
	if plat.Order() != 9 {
		t.Errorf("order = %d", plat.Order())
	}

	url := "https://listen.tidal.com/track/5"
	id, matched := plat.MatchURL(url)
	if !matched || id != url {
		t.Errorf("MatchURL(%q) = %q, %v", url, id, matched)
	}
	if _, matched := plat.MatchURL("https://open.spotify.com/track/1"); matched {
		t.Error("foreign url must not match")
	}

	pattern := plat.URLPattern()
	if pattern == nil || !pattern.MatchString(url) {
		t.Errorf("url pattern should match %q", url)
	}

	infos := m.PluginInfos()
	if len(infos) != 1 {
		t.Fatalf("expected 1 plugin info, got %d", len(infos))
	}
	if infos[0].Name != "tidal" || infos[0].Version != "0.1.0" {
		t.Errorf("plugin info = %+v", infos[0])
	}
}

func TestManagerAppliesScriptSettings(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "tidal.go", tidalScript)
	cfg := testConfig(t, dir, "[plugins.tidal]\nid_prefix = T:\n")
	reg := registry.New()
	m := NewManager(nil)

	if err := m.Load(context.Background(), cfg, reg); err != nil {
		t.Fatalf("load: %v", err)
	}

	plat, ok := reg.Get("tidal")
	if !ok {
		t.Fatal("tidal platform not registered")
	}
	url := "https://listen.tidal.com/track/5"
	id, matched := plat.MatchURL(url)
	if !matched || id != "T:"+url {
		t.Errorf("MatchURL with settings = %q, %v", id, matched)
	}
}

func TestManagerSkipsDisabledScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "tidal.go", tidalScript)
	cfg := testConfig(t, dir, "[plugins.tidal]\nenabled = false\n")
	reg := registry.New()
	m := NewManager(nil)

	if err := m.Load(context.Background(), cfg, reg); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, ok := reg.Get("tidal"); ok {
		t.Error("disabled script must not register platforms")
	}
	if infos := m.PluginInfos(); len(infos) != 0 {
		t.Errorf("expected no plugin infos, got %+v", infos)
	}
}

func TestManagerMissingScriptDirIsFine(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "does-not-exist"), "")
	m := NewManager(nil)

	if err := m.Load(context.Background(), cfg, registry.New()); err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
}

func TestManagerIgnoresBrokenScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.go", "package broken\n\nfunc Meta() {{{\n")
	writeScript(t, dir, "tidal.go", tidalScript)
	cfg := testConfig(t, dir, "")
	reg := registry.New()
	m := NewManager(nil)

	if err := m.Load(context.Background(), cfg, reg); err != nil {
		t.Fatalf("broken script should be skipped, not fatal: %v", err)
	}
	if _, ok := reg.Get("tidal"); !ok {
		t.Error("healthy script should still load")
	}
}

func TestManagerReloadTogglesRemovedScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "tidal.go", tidalScript)
	cfg := testConfig(t, dir, "")
	reg := registry.New()
	m := NewManager(nil)

	if err := m.Load(context.Background(), cfg, reg); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "tidal.go")); err != nil {
		t.Fatalf("remove script: %v", err)
	}
	if err := m.Reload(context.Background(), cfg, reg); err != nil {
		t.Fatalf("reload: %v", err)
	}

	plat, ok := reg.Get("tidal")
	if !ok {
		t.Fatal("platform should stay registered after its script is removed")
	}
	if _, matched := plat.MatchURL("https://listen.tidal.com/track/5"); matched {
		t.Error("removed script must stop matching")
	}
	if plat.URLPattern() != nil {
		t.Error("removed script must leave extraction")
	}

	writeScript(t, dir, "tidal.go", tidalScript)
	if err := m.Reload(context.Background(), cfg, reg); err != nil {
		t.Fatalf("second reload: %v", err)
	}
	if _, matched := plat.MatchURL("https://listen.tidal.com/track/5"); !matched {
		t.Error("restored script should match again")
	}
	if plat.URLPattern() == nil {
		t.Error("restored script should rejoin extraction")
	}
}
