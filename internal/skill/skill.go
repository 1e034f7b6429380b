// Package skill reads SKILL.md files: YAML frontmatter followed by a
// markdown body.
package skill

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

const FileName = "SKILL.md"

var ErrNotFound = errors.New("skill not found")

type Skill struct {
	Name        string
	Description string
	Title       string
	// Sections are the level-2 headings, in document order.
	Sections []string
	// Content is the file as written, frontmatter included.
	Content string
	Path    string
}

type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

var md = goldmark.New()

// Parse reads a SKILL.md document. fallbackName is used when the
// frontmatter has no name.
func Parse(data []byte, fallbackName string) (*Skill, error) {
	body, front := extractFrontmatter(data)
	s := &Skill{Name: fallbackName, Content: string(data)}
	if front != nil {
		var fm frontmatter
		if err := yaml.Unmarshal(front, &fm); err != nil {
			return nil, fmt.Errorf("parsing frontmatter: %w", err)
		}
		if fm.Name != "" {
			s.Name = fm.Name
		}
		s.Description = strings.TrimSpace(fm.Description)
	}

	doc := md.Parser().Parse(text.NewReader(body))
	var firstPara string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := nodeText(node, body)
			if node.Level == 1 && s.Title == "" {
				s.Title = title
			}
			if node.Level == 2 {
				s.Sections = append(s.Sections, title)
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if firstPara == "" {
				firstPara = nodeText(node, body)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking markdown: %w", err)
	}
	if s.Description == "" {
		s.Description = firstPara
	}
	return s, nil
}

// Load reads <root>/<name>/SKILL.md.
func Load(root, name string) (*Skill, error) {
	path := filepath.Join(root, name, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s, err := Parse(data, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// List loads every skill under root, sorted by name. A missing root is
// not an error.
func List(root string) ([]*Skill, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	var skills []*Skill
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := Load(root, e.Name())
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, nil
}

func nodeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.CodeSpan:
			for cc := t.FirstChild(); cc != nil; cc = cc.NextSibling() {
				if tt, ok := cc.(*ast.Text); ok {
					buf.Write(tt.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))
	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			return bytes.Join(lines[i+1:], []byte("\n")), bytes.Join(lines[1:i], []byte("\n"))
		}
	}
	return content, nil
}
