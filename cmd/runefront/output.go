package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/malphas-lang/runefront/internal/diag"
	"github.com/malphas-lang/runefront/internal/workspace"
)

// report renders the diagnostics of err for one file and returns an error
// naming the file.
func (a *app) report(w io.Writer, path, src string, err error) error {
	f := diag.NewFormatter(w, a.cfg.Output.Color)
	f.AddSource(path, src)
	f.FormatAll(workspace.Diagnostics(path, err))
	return errors.Errorf("%s has errors", path)
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return errors.Wrap(enc.Close(), "encode yaml")
	default:
		return errors.Errorf("unknown format %q", format)
	}
}
