package cmd

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"tasktree/internal/config"
	"tasktree/internal/idgen"
	"tasktree/internal/logging"
	"tasktree/internal/storage"
	"tasktree/internal/tasklist"
)

// App holds application state shared across commands.
type App struct {
	Store  storage.Store
	Config config.Store // nil falls back to config.DefaultValues
	Paths  config.Paths
	Logger *log.Logger
	Out    io.Writer
	Err    io.Writer
	JSON   bool // output in JSON format
	Color  bool // decorate text output with ANSI styles

	// Now stamps mutations. Nil means idgen.Now.
	Now func() string
	// NewID replaces the configured id generator when set.
	NewID func() string

	palette *palette
}

// setting returns a config value, falling back to the built-in default.
func (a *App) setting(key string) string {
	if a.Config == nil {
		return config.DefaultValues()[key]
	}
	return config.String(a.Config, key)
}

// intSetting is setting for integer keys.
func (a *App) intSetting(key string) int {
	if a.Config == nil {
		n, _ := strconv.Atoi(config.DefaultValues()[key])
		return n
	}
	return config.Int(a.Config, key)
}

func (a *App) logger() *log.Logger {
	if a.Logger == nil {
		a.Logger = logging.Discard()
	}
	return a.Logger
}

// generator builds an id generator that avoids every id already in s.
func (a *App) generator(s *tasklist.State) *idgen.Generator {
	items := tasklist.Flatten(s)
	taken := make(map[string]bool, len(items))
	for _, it := range items {
		taken[it.ID] = true
	}

	format, err := idgen.ParseFormat(a.setting(config.KeyIDFormat))
	if err != nil {
		a.logger().Warn("ignoring id.format", "err", err)
		format = idgen.FormatShort
	}
	length := a.intSetting(config.KeyIDLength)
	if length < idgen.MinLength || length > idgen.MaxLength {
		length = 0
	}
	return &idgen.Generator{
		Format: format,
		Prefix: idgen.NormalizePrefix(a.setting(config.KeyIDPrefix)),
		Length: length,
		Count:  len(items),
		Exists: func(id string) bool { return taken[id] },
	}
}

// editor returns a tasklist.Editor whose ids are unique within s.
func (a *App) editor(s *tasklist.State) *tasklist.Editor {
	now := a.Now
	if now == nil {
		now = idgen.Now
	}
	if a.NewID != nil {
		return tasklist.NewEditor(a.NewID, now)
	}
	return tasklist.NewEditor(a.generator(s).MustNewID, now)
}

// modify runs fn against the stored tree while holding the store lock and
// persists whatever it returns.
func (a *App) modify(ctx context.Context, fn func(ed *tasklist.Editor, s *tasklist.State) (*tasklist.State, error)) error {
	return a.Store.Modify(ctx, func(s *tasklist.State) (*tasklist.State, error) {
		return fn(a.editor(s), s)
	})
}

// defaultPriority is the priority used by add when -p is not given.
func (a *App) defaultPriority() int {
	return a.intSetting(config.KeyDefaultPriority)
}

func (a *App) printJSON(v any) error {
	return printJSONTo(a.Out, v)
}

func printJSONTo(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
