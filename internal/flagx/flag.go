// Package flagx lets several independent flag sets share one command line.
// Each parser takes only its own flags out of os.Args and ignores the rest.
package flagx

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is the encoding of a config file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ConfigFile is the config file named with -c or -config.
type ConfigFile struct {
	Path   string
	Format Format
}

// FilterArgs keeps the flags listed in allowed, in order, with their values.
// Both "-name value" and "-name=value" are recognised. The next argument is
// taken as the value only when it does not start with "-". Everything else,
// positional arguments included, is dropped.
func FilterArgs(args []string, allowed []string) []string {
	keep := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		keep[f] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, _, inline := strings.Cut(args[i], "=")
		if !strings.HasPrefix(name, "-") || !keep[name] {
			continue
		}
		out = append(out, args[i])
		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// FormatOf picks the decoder for path: .yaml and .yml (any case) are YAML,
// everything else is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// LookupConfigFile finds -c/-config (single or double dash) in args. When
// the flag repeats the last one wins. The zero ConfigFile means no file
// was given.
func LookupConfigFile(args []string) ConfigFile {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to a JSON or YAML config file")
	fs.StringVar(&path, "c", "", "path to a JSON or YAML config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "--c", "-config", "--config"}))

	if path == "" {
		return ConfigFile{}
	}
	return ConfigFile{Path: path, Format: FormatOf(path)}
}

// ConfigFileFlag is LookupConfigFile over os.Args.
func ConfigFileFlag() ConfigFile {
	return LookupConfigFile(os.Args[1:])
}
