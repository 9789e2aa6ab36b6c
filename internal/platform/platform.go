// Package platform selects the analyzer executable variant for an
// operating system. It is a pure function of its inputs and never touches
// the filesystem.
package platform

import (
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"
)

var ErrUnsupportedOS = errors.New("unsupported operating system")

// OS is the operating system classification used to pick a binary.
type OS string

const (
	Linux   OS = "linux"
	Darwin  OS = "darwin"
	Windows OS = "windows"
	Other   OS = "other"
)

// Classify maps a GOOS value to OS.
func Classify(goos string) OS {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return Darwin
	case "windows":
		return Windows
	default:
		return Other
	}
}

// Current returns the classification of the running process.
func Current() OS {
	return Classify(runtime.GOOS)
}

// Layout is the naming scheme of the analyzer binaries in the install root.
type Layout string

const (
	// LayoutVariant ships doa.linux, doa.darwin and doa.exe side by side.
	LayoutVariant Layout = "variant"
	// LayoutSingle ships doa (the host's own build) and doa.exe.
	LayoutSingle Layout = "single"
)

func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutVariant, LayoutSingle:
		return Layout(s), nil
	default:
		return "", fmt.Errorf("unknown layout %q, expected %s or %s", s, LayoutVariant, LayoutSingle)
	}
}

type Resolver struct {
	root   string
	name   string
	layout Layout
}

type Option func(*Resolver)

// WithName sets the base name of the binary, default "doa".
func WithName(name string) Option {
	return func(r *Resolver) {
		r.name = name
	}
}

// WithLayout sets the install layout, default LayoutVariant.
func WithLayout(layout Layout) Option {
	return func(r *Resolver) {
		r.layout = layout
	}
}

// New returns a resolver for binaries installed in root. An empty root
// means the current directory.
func New(root string, opts ...Option) Resolver {
	r := Resolver{
		root:   root,
		name:   "doa",
		layout: LayoutVariant,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.root == "" {
		r.root = "."
	}
	return r
}

// Binary returns the file name of the analyzer for os.
func (r Resolver) Binary(os OS) (string, error) {
	switch os {
	case Windows:
		return r.name + ".exe", nil
	case Linux, Darwin:
		if r.layout == LayoutSingle {
			return r.name, nil
		}
		return r.name + "." + string(os), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOS, os)
	}
}

// Resolve returns the path of the analyzer for os. Windows paths use
// backslash separators, all others use slashes.
func (r Resolver) Resolve(os OS) (string, error) {
	bin, err := r.Binary(os)
	if err != nil {
		return "", err
	}
	if os == Windows {
		root := strings.ReplaceAll(r.root, "/", `\`)
		root = strings.TrimRight(root, `\`)
		if root == "" && strings.HasPrefix(r.root, "/") {
			return `\` + bin, nil
		}
		return root + `\` + bin, nil
	}
	p := path.Join(r.root, bin)
	// a bare name would be looked up in $PATH by os/exec
	if !strings.Contains(p, "/") {
		p = "./" + p
	}
	return p, nil
}
