// Package render writes scanned trees as connector-drawn text or JSON.
package render

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/ui/style"
	"go.trai.ch/zerr"
)

// Format selects the output representation.
type Format string

const (
	// FormatTree draws the tree with box connectors.
	FormatTree Format = "tree"
	// FormatJSON writes the tree as an indented JSON document.
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTree, FormatJSON:
		return Format(s), nil
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidOutputFormat, "unknown format"), "format", s)
	}
}

// Options configures a Renderer.
type Options struct {
	Format Format
	// Profile is the color profile for text output. Ascii disables color.
	Profile termenv.Profile
	// ShowSize appends humanized file sizes.
	ShowSize bool
}

// Renderer writes trees to an io.Writer.
type Renderer struct {
	opts Options
}

// New creates a Renderer. An empty format means FormatTree.
func New(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatTree
	}
	return &Renderer{opts: opts}
}

// Render writes tree to w.
func (r *Renderer) Render(w io.Writer, tree *domain.TreeNode) error {
	bw := bufio.NewWriter(w)

	var err error
	if r.opts.Format == FormatJSON {
		err = writeJSON(bw, tree)
	} else {
		err = r.writeTree(bw, tree)
	}
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrRenderFailed, "cannot write output"), domain.DetailKey, err.Error())
	}
	return nil
}

// palette holds one painter per kind of label. All painters are the identity
// for the Ascii profile.
type palette struct {
	dir, link, bad, dim func(string) string
}

func newPalette(w io.Writer, profile termenv.Profile) palette {
	if profile == termenv.Ascii {
		plain := func(s string) string { return s }
		return palette{dir: plain, link: plain, bad: plain, dim: plain}
	}

	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(profile)

	return palette{
		dir:  paint(lr.NewStyle().Foreground(style.Sky).Bold(true)),
		link: paint(lr.NewStyle().Foreground(style.Iris)),
		bad:  paint(lr.NewStyle().Foreground(style.Red)),
		dim:  paint(lr.NewStyle().Foreground(style.Slate)),
	}
}

// paint adapts the variadic lipgloss Render to a single-string painter.
func paint(st lipgloss.Style) func(string) string {
	return func(s string) string { return st.Render(s) }
}

func (r *Renderer) writeTree(w *bufio.Writer, tree *domain.TreeNode) error {
	p := newPalette(w, r.opts.Profile)

	if _, err := w.WriteString(r.label(p, tree, tree.Path) + "\n"); err != nil {
		return err
	}
	return r.writeChildren(w, p, tree, "")
}

func (r *Renderer) writeChildren(w *bufio.Writer, p palette, n *domain.TreeNode, prefix string) error {
	for i, c := range n.Children {
		connector, indent := style.Branch, style.Pipe
		if i == len(n.Children)-1 {
			connector, indent = style.Last, style.Space
		}

		if _, err := w.WriteString(prefix + p.dim(connector) + r.label(p, c, c.Name) + "\n"); err != nil {
			return err
		}
		if err := r.writeChildren(w, p, c, prefix+p.dim(indent)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) label(p palette, n *domain.TreeNode, name string) string {
	switch n.Kind {
	case domain.KindDirectory:
		if n.Truncated {
			return p.dir(name) + " " + p.dim("["+style.Ellipsis+"]")
		}
		return p.dir(name)
	case domain.KindSymlink:
		return p.link(name) + " " + p.dim("[symlink]")
	case domain.KindInaccessible:
		if n.Cause == "" {
			return p.bad(name + " [inaccessible]")
		}
		return p.bad(name + " [inaccessible: " + n.Cause + "]")
	default:
		if r.opts.ShowSize && n.HasSize {
			return name + " " + p.dim("("+humanize.IBytes(uint64(max(n.Size, 0)))+")")
		}
		return name
	}
}

type jsonNode struct {
	Name      string      `json:"name"`
	Path      string      `json:"path"`
	Kind      string      `json:"kind"`
	Size      *int64      `json:"size,omitempty"`
	Truncated bool        `json:"truncated,omitempty"`
	Error     string      `json:"error,omitempty"`
	Children  []*jsonNode `json:"children"`
}

func toJSON(n *domain.TreeNode) *jsonNode {
	out := &jsonNode{
		Name:      n.Name,
		Path:      n.Path,
		Kind:      n.Kind.String(),
		Truncated: n.Truncated,
		Error:     n.Cause,
		Children:  make([]*jsonNode, 0, len(n.Children)),
	}
	if n.HasSize {
		size := n.Size
		out.Size = &size
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toJSON(c))
	}
	return out
}

func writeJSON(w io.Writer, tree *domain.TreeNode) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(toJSON(tree))
}
