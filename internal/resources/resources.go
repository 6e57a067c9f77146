// Package resources provides the auxiliary files installed into the staged
// tree: the initial setup script, the systemd unit, and the privacy notice.
//
// The files are embedded templates rendered with the install prefix and
// product name. A resources directory can override any of them with a
// plain file of the same name, which is copied verbatim.
package resources

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
)

// Names of the bundled resources.
const (
	SetupScript = "initialsetup.sh"
	ServiceUnit = "openvpn.service"
	Privacy     = "PRIVACY.txt"
)

//go:embed files/*
var files embed.FS

// Template parameters.
type Data struct {
	Product string // Product name, also the systemd unit name.
	Version string // Product version.
	Prefix  string // Install prefix.
}

// Returns the file name the systemd unit is installed under.
func (d Data) Unit() string {
	return d.Product + ".service"
}

// Resolves resources from an optional override directory, falling back to
// the embedded templates.
type Set struct {
	Dir  string // Override directory. Empty uses only embedded files.
	Data Data
}

// Returns the content of the named resource.
func (s Set) Read(name string) ([]byte, error) {
	if s.Dir != "" {
		data, err := os.ReadFile(filepath.Join(s.Dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	raw, err := files.ReadFile("files/" + name)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s.Data); err != nil {
		return nil, fmt.Errorf("resource %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Writes the named resource to dst with the given mode, creating the
// parent directory. Returns dst.
func (s Set) WriteAs(name, dst string, mode fs.FileMode) (string, error) {
	data, err := s.Read(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(dst, data, mode); err != nil {
		return "", err
	}
	return dst, os.Chmod(dst, mode)
}

// Returns the path of the named file in the override directory, or an
// error if there is none. Used for files that have no embedded default,
// such as the OpenSSL platform script.
func (s Set) Path(name string) (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("resource %s: %w", name, fs.ErrNotExist)
	}
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("resource %s: %w", name, err)
	}
	return path, nil
}
