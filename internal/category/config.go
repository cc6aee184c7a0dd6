package category

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Definition is one category entry of the injected keyword table
// (configs/categories.yaml). The declaration order of the file is the
// tie-break order of the classifier.
type Definition struct {
	Name     string   `mapstructure:"name"`
	Emoji    string   `mapstructure:"emoji"`
	Keywords []string `mapstructure:"keywords"`
}

type fileSchema struct {
	Categories []Definition `mapstructure:"categories"`
}

// File loads category definitions from a YAML file and can watch it for
// changes so keyword edits apply without a restart.
type File struct {
	v   *viper.Viper
	log *slog.Logger
}

// NewFile prepares a loader for the given categories file.
func NewFile(path string, log *slog.Logger) *File {
	if log == nil {
		log = slog.Default()
	}

	v := viper.New()
	v.SetConfigFile(path)

	return &File{v: v, log: log}
}

// Load reads and validates the category table.
func (f *File) Load() ([]Definition, error) {
	if err := f.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	var schema fileSchema
	if err := f.v.Unmarshal(&schema); err != nil {
		return nil, fmt.Errorf("unmarshal categories file: %w", err)
	}

	if err := validate(schema.Categories); err != nil {
		return nil, err
	}

	return schema.Categories, nil
}

// Watch reloads the file on every change event and hands the fresh table to
// onChange. Invalid edits are logged and skipped, keeping the last good table.
func (f *File) Watch(onChange func([]Definition)) {
	f.v.OnConfigChange(func(e fsnotify.Event) {
		f.log.Info("categories file changed, reloading", slog.String("file", e.Name), slog.String("op", e.Op.String()))

		defs, err := f.Load()
		if err != nil {
			f.log.Error("reload of categories file failed, keeping previous table", slog.Any("error", err))
			return
		}

		onChange(defs)
	})
	f.v.WatchConfig()
}

func validate(defs []Definition) error {
	if len(defs) == 0 {
		return fmt.Errorf("categories file defines no categories")
	}

	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return fmt.Errorf("category with empty name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = struct{}{}

		if len(def.Keywords) == 0 {
			return fmt.Errorf("category %q has no keywords", name)
		}
	}

	return nil
}
