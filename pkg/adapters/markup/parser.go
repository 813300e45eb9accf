// Package markup reads XML documents into core.Node trees.
package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/kiln/pkg/core"
)

// ErrEmptyDocument is returned when a document has no root element.
var ErrEmptyDocument = errors.New("document has no root element")

// Parse reads a document and returns its root element.
// Attribute order is preserved; comments and processing instructions are dropped.
func Parse(r io.Reader) (*core.Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root  *core.Node
		stack []*core.Node
		texts []*strings.Builder
	)
	for {
		line, _ := dec.InputPos()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &core.Node{Name: t.Name.Local, Line: line}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				n.Attrs = append(n.Attrs, core.Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("invalid xml: multiple root elements")
				}
				root = n
			} else {
				stack[len(stack)-1].Append(n)
			}
			stack = append(stack, n)
			texts = append(texts, &strings.Builder{})

		case xml.EndElement:
			top := len(stack) - 1
			stack[top].Text = strings.TrimSpace(texts[top].String())
			stack = stack[:top]
			texts = texts[:top]

		case xml.CharData:
			if len(texts) > 0 {
				texts[len(texts)-1].Write(t)
			}
		}
	}

	if root == nil {
		return nil, ErrEmptyDocument
	}
	return root, nil
}

// ParseBytes parses an in-memory document.
func ParseBytes(data []byte) (*core.Node, error) {
	return Parse(bytes.NewReader(data))
}

// ParseFile parses the document stored at path.
func ParseFile(path string) (*core.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}
