package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

var ErrUnknownKind = errors.New("config: unknown template kind")

var templates = map[string]string{
	"client":  clientTemplate,
	"targets": targetsTemplate,
}

// Kinds lists the template kinds in stable order.
func Kinds() []string {
	kinds := make([]string, 0, len(templates))
	for k := range templates {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func Template(kind string) (string, error) {
	body, ok := templates[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownKind, kind, strings.Join(Kinds(), ", "))
	}
	return body, nil
}

// WriteTemplate writes the kind's template to path. Without overwrite the
// file is created exclusively, so an existing config is never clobbered.
func WriteTemplate(path, kind string, overwrite bool) error {
	body, err := Template(kind)
	if err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

const clientTemplate = `host = "127.0.0.1"
port = 1434
read_timeout = "2s"
write_timeout = "1s"
buffer_size = 65538
cache_ttl = "30s"
cache_size = 128
breaker_failures = 3
breaker_open_for = "30s"
instances = ["SQLEXPRESS"]
`

const targetsTemplate = `[[targets]]
name = "local"
host = "127.0.0.1"
port = 1434
instances = ["SQLEXPRESS"]

[[targets]]
name = "reporting"
host = "db02.internal"
browse = true
`
