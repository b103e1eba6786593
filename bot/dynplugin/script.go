package dynplugin

import (
	"context"
	"encoding/json"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"regexp"
	"sync"

	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// pluginMeta is what a script's Meta() must decode to.
type pluginMeta struct {
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	URL       string         `json:"url"`
	Platforms []platformInfo `json:"platforms"`
}

// platformInfo describes one platform a script contributes. Key is the
// platform key used by the resolution API, URLPattern a regexp source
// used to find the platform's URLs in message text.
type platformInfo struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Order       int    `json:"order"`
	URLPattern  string `json:"url_pattern"`
}

// scriptPlugin wraps a yaegi interpreter holding one evaluated script.
// The interpreter is not safe for concurrent use, so calls into it are
// serialized.
type scriptPlugin struct {
	name   string
	interp *interp.Interpreter
	logger *logpkg.Logger
	mu     sync.Mutex
}

func newScriptPlugin(name string, interpreter *interp.Interpreter, logger *logpkg.Logger) *scriptPlugin {
	return &scriptPlugin{name: name, interp: interpreter, logger: logger}
}

// loadScriptPlugin evaluates the script at path and reads its metadata.
// A script must export Meta(); it may export Init(map[string]string) error
// to pick up its settings section and MatchURL(key, url) to match URLs.
func loadScriptPlugin(ctx context.Context, path string, settings map[string]string, logger *logpkg.Logger) (*scriptPlugin, *pluginMeta, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	pkgName, err := scriptPackageName(path, src)
	if err != nil {
		return nil, nil, fmt.Errorf("parse script: %w", err)
	}
	interpreter := interp.New(interp.Options{})
	if err := interpreter.Use(stdlib.Symbols); err != nil {
		return nil, nil, err
	}
	if _, err := interpreter.Eval(string(src)); err != nil {
		return nil, nil, fmt.Errorf("eval script: %w", err)
	}
	plug := newScriptPlugin(pkgName, interpreter, logger)
	if err := plug.Init(ctx, settings); err != nil {
		return nil, nil, fmt.Errorf("init script: %w", err)
	}
	meta, err := plug.Meta(ctx)
	if err != nil {
		return nil, nil, err
	}
	return plug, meta, nil
}

// scriptPackageName reads the package clause; exported script symbols are
// resolved under that name.
func scriptPackageName(path string, src []byte) (string, error) {
	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.PackageClauseOnly)
	if err != nil {
		return "", err
	}
	return file.Name.Name, nil
}

func (p *scriptPlugin) Init(ctx context.Context, settings map[string]string) error {
	fn, ok := p.lookup("Init")
	if !ok {
		return nil
	}
	if settings == nil {
		settings = map[string]string{}
	}
	_, err := p.call(ctx, fn, settings)
	return err
}

func (p *scriptPlugin) Meta(ctx context.Context) (*pluginMeta, error) {
	fn, ok := p.lookup("Meta")
	if !ok {
		return nil, fmt.Errorf("script plugin %s missing Meta", p.name)
	}
	result, err := p.call(ctx, fn)
	if err != nil {
		return nil, err
	}
	meta := &pluginMeta{}
	if err := decodeJSON(result, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (p *scriptPlugin) MatchURL(ctx context.Context, platformKey, rawURL string) (string, bool) {
	fn, ok := p.lookup("MatchURL")
	if !ok {
		return "", false
	}
	result, err := p.call(ctx, fn, platformKey, rawURL)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("script MatchURL failed", "plugin", p.name, "error", err)
		}
		return "", false
	}
	var resp struct {
		ID      string `json:"id"`
		Matched bool   `json:"matched"`
	}
	if err := decodeJSON(result, &resp); err != nil {
		return "", false
	}
	return resp.ID, resp.Matched
}

func (p *scriptPlugin) lookup(name string) (reflect.Value, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	value, err := p.interp.Eval(fmt.Sprintf("%s.%s", p.name, name))
	if err != nil {
		return reflect.Value{}, false
	}
	return value, value.IsValid()
}

func (p *scriptPlugin) call(ctx context.Context, fn reflect.Value, args ...interface{}) (interface{}, error) {
	if !fn.IsValid() {
		return nil, fmt.Errorf("script function missing")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	inputs := make([]reflect.Value, 0, len(args))
	for _, arg := range args {
		inputs = append(inputs, reflect.ValueOf(arg))
	}
	p.mu.Lock()
	outputs := fn.Call(inputs)
	p.mu.Unlock()
	if len(outputs) == 0 {
		return nil, nil
	}
	if len(outputs) == 1 {
		// A lone return value may itself be the error (Init style).
		if err, ok := outputs[0].Interface().(error); ok {
			return nil, err
		}
		return outputs[0].Interface(), nil
	}
	result := outputs[0].Interface()
	if err := asError(outputs[1]); err != nil {
		return nil, err
	}
	return result, nil
}

func asError(value reflect.Value) error {
	if !value.IsValid() || value.IsNil() {
		return nil
	}
	if err, ok := value.Interface().(error); ok {
		return err
	}
	return fmt.Errorf("script error")
}

// decodeJSON bridges interpreter values into typed structs via a JSON
// round trip, so scripts can return plain maps.
func decodeJSON(value interface{}, out interface{}) error {
	if value == nil {
		return fmt.Errorf("script returned empty")
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// scriptPlatform adapts a script-contributed platform to the registry.
// A disabled platform stays registered but stops matching.
type scriptPlatform struct {
	mu       sync.RWMutex
	plug     *scriptPlugin
	info     platformInfo
	pattern  *regexp.Regexp
	disabled bool
}

func newScriptPlatform(plug *scriptPlugin, info platformInfo, pattern *regexp.Regexp) *scriptPlatform {
	return &scriptPlatform{plug: plug, info: info, pattern: pattern}
}

func (s *scriptPlatform) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info.Key
}

func (s *scriptPlatform) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info.DisplayName != "" {
		return s.info.DisplayName
	}
	return s.info.Key
}

func (s *scriptPlatform) Order() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info.Order
}

func (s *scriptPlatform) MatchURL(rawURL string) (string, bool) {
	s.mu.RLock()
	plug := s.plug
	key := s.info.Key
	disabled := s.disabled
	s.mu.RUnlock()
	if disabled || plug == nil {
		return "", false
	}
	return plug.MatchURL(context.Background(), key, rawURL)
}

func (s *scriptPlatform) URLPattern() *regexp.Regexp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disabled {
		return nil
	}
	return s.pattern
}

func (s *scriptPlatform) update(plug *scriptPlugin, info platformInfo, pattern *regexp.Regexp) {
	s.mu.Lock()
	s.plug = plug
	s.info = info
	s.pattern = pattern
	s.disabled = false
	s.mu.Unlock()
}

func (s *scriptPlatform) disable() {
	s.mu.Lock()
	s.disabled = true
	s.plug = nil
	s.mu.Unlock()
}
