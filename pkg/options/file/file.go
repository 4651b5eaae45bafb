// Package file provides a filesystem-backed option provider.
//
// Each option name maps to one document under a base directory. Writes
// go through a temp file followed by a rename, so readers never observe
// a partially written value.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marmos91/attrmeta/pkg/options"
)

// Config contains filesystem provider configuration.
type Config struct {
	// Path is the directory holding option documents (required).
	Path string `mapstructure:"path"`

	// DirMode is the permission mode used when creating Path.
	// Default: 0755.
	DirMode os.FileMode `mapstructure:"dir_mode"`

	// FileMode is the permission mode for option documents.
	// Default: 0644.
	FileMode os.FileMode `mapstructure:"file_mode"`
}

// Provider stores each option as a JSON document on disk.
type Provider struct {
	cfg Config

	// mu serializes writes per provider; renames are atomic but the
	// temp file name is shared per option.
	mu sync.Mutex
}

// New creates a filesystem provider rooted at cfg.Path, creating the
// directory if needed.
func New(cfg Config) (*Provider, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file provider requires path to be set")
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	if err := os.MkdirAll(cfg.Path, cfg.DirMode); err != nil {
		return nil, fmt.Errorf("failed to create options directory: %w", err)
	}

	return &Provider{cfg: cfg}, nil
}

// Load returns the value stored under name, or options.ErrNotFound.
func (p *Provider) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := p.optionPath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, options.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read option %q: %w", name, err)
	}
	return data, nil
}

// Save stores value under name using a temp file + rename so a crash
// mid-write never leaves a truncated document behind.
func (p *Provider) Save(ctx context.Context, name string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := p.optionPath(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, p.cfg.FileMode); err != nil {
		return fmt.Errorf("failed to write option %q: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to commit option %q: %w", name, err)
	}
	return nil
}

// Delete removes the document for name. Absent documents are a no-op.
func (p *Provider) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := p.optionPath(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete option %q: %w", name, err)
	}
	return nil
}

// Close is a no-op for the filesystem provider.
func (p *Provider) Close() error {
	return nil
}

// optionPath maps an option name to its document path, rejecting names
// that would escape the base directory.
func (p *Provider) optionPath(name string) (string, error) {
	if err := options.ValidateName(name); err != nil {
		return "", err
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("option name %q contains path separators", name)
	}
	return filepath.Join(p.cfg.Path, name+".json"), nil
}
