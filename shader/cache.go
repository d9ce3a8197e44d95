// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader compiles WGSL shaders to SPIR-V and reloads them when a
// RefreshShader message names one.
//
// Shaders are looked up by name relative to a shader directory. A name
// missing from the directory falls back to the built-in shaders shipped
// with the package, so an empty directory still yields working modules.
package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/crbrz/webrender"
	"github.com/gogpu/naga"
)

//go:embed shaders/*.wgsl
var builtin embed.FS

// Ext is the file extension of shader sources.
const Ext = ".wgsl"

var (
	// ErrNotFound is returned when a shader exists neither in the
	// directory nor among the built-ins.
	ErrNotFound = errors.New("shader: not found")

	// ErrOutsideDir is returned for a path that does not name a file
	// below the shader directory.
	ErrOutsideDir = errors.New("shader: path outside shader directory")
)

// Module is one compiled shader.
type Module struct {
	// Name is the slash-separated path relative to the shader directory.
	Name string
	// Source is the WGSL text the module was compiled from.
	Source string
	// SPIRV is the compiled code as little-endian words.
	SPIRV []uint32
	// Builtin reports whether Source came from the built-in shaders.
	Builtin bool
	// Generation counts successful compilations of Name, starting at 1.
	Generation uint64
}

// Cache holds the most recent successful compilation of each shader.
// It is safe for concurrent use.
type Cache struct {
	dir string

	mu      sync.RWMutex
	modules map[string]*Module
}

// NewCache returns an empty cache reading shaders from dir. An empty dir
// uses only the built-ins.
func NewCache(dir string) *Cache {
	if dir != "" {
		dir = filepath.Clean(dir)
	}
	return &Cache{dir: dir, modules: make(map[string]*Module)}
}

// Dir returns the shader directory.
func (c *Cache) Dir() string { return c.dir }

// Name maps p to a shader name. Relative paths are taken relative to the
// shader directory; absolute paths must lie below it.
func (c *Cache) Name(p string) (string, error) {
	if filepath.IsAbs(p) {
		if c.dir == "" {
			return "", fmt.Errorf("%w: %s", ErrOutsideDir, p)
		}
		dir, err := filepath.Abs(c.dir)
		if err != nil {
			return "", fmt.Errorf("shader: %w", err)
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrOutsideDir, p)
		}
		p = rel
	}
	name := path.Clean(filepath.ToSlash(p))
	if name == "." || name == ".." || strings.HasPrefix(name, "../") || path.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDir, p)
	}
	return name, nil
}

// Reload reads and compiles the shader p names and replaces the cached
// module. On error the previous module stays in the cache.
func (c *Cache) Reload(p string) (*Module, error) {
	name, err := c.Name(p)
	if err != nil {
		return nil, err
	}
	src, isBuiltin, err := c.source(name)
	if err != nil {
		return nil, err
	}
	code, err := Compile(src)
	if err != nil {
		slogger().Warn("shader: compile failed", "name", name, "err", err)
		return nil, fmt.Errorf("shader: %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	m := &Module{Name: name, Source: src, SPIRV: code, Builtin: isBuiltin, Generation: 1}
	if prev, ok := c.modules[name]; ok {
		m.Generation = prev.Generation + 1
	}
	c.modules[name] = m
	slogger().Info("shader: reloaded", "name", name, "builtin", isBuiltin,
		"words", len(code), "generation", m.Generation)
	return m, nil
}

// Module returns the cached module for p, compiling it on first use.
func (c *Cache) Module(p string) (*Module, error) {
	name, err := c.Name(p)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	m, ok := c.modules[name]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}
	return c.Reload(name)
}

// Cached returns the module for name without compiling.
func (c *Cache) Cached(name string) (*Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[name]
	return m, ok
}

// Names returns the sorted names of all shaders in the directory and the
// built-ins.
func (c *Cache) Names() ([]string, error) {
	var names []string
	err := fs.WalkDir(builtin, "shaders", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != Ext {
			return err
		}
		names = append(names, strings.TrimPrefix(p, "shaders/"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	if c.dir != "" {
		err = filepath.WalkDir(c.dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || filepath.Ext(p) != Ext {
				return err
			}
			rel, err := filepath.Rel(c.dir, p)
			if err != nil {
				return err
			}
			names = append(names, filepath.ToSlash(rel))
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("shader: %w", err)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// LoadAll compiles every shader Names returns. It keeps going past
// failures and returns them joined.
func (c *Cache) LoadAll() error {
	names, err := c.Names()
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if _, err := c.Reload(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Cache) source(name string) (string, bool, error) {
	if c.dir != "" {
		b, err := os.ReadFile(filepath.Join(c.dir, filepath.FromSlash(name)))
		if err == nil {
			return string(b), false, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("shader: %w", err)
		}
	}
	b, err := builtin.ReadFile("shaders/" + name)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return string(b), true, nil
}

// Compile compiles WGSL source to SPIR-V words.
func Compile(src string) ([]uint32, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, err
	}
	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}

func slogger() *slog.Logger { return webrender.Logger() }
