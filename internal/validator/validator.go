// Package validator checks the structure of a metadata XML file before it is
// added to a session: well-formedness, a known root element, and the
// attributes and children each element needs to be loaded.
//
// Problems are reported as zclload.ValidationIssue values with line
// numbers. A non-nil error means the input could not be read at all.
package validator

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vvka-141/zclload/pkg/zclload"
)

// MaxIssues bounds the issues collected from one file.
const MaxIssues = 50

// rule lists the attributes and child elements an element requires.
type rule struct {
	attrs    []string
	children []string
}

// Rules are keyed by "parent>element" first, then by "element". The root
// element has an empty parent.
var zclRules = map[string]rule{
	"configurator>cluster": {children: []string{"name", "code"}},
	"zap>cluster":          {children: []string{"name", "code"}},
	"enum>cluster":         {attrs: []string{"code"}},
	"bitmap>cluster":       {attrs: []string{"code"}},
	"struct>cluster":       {attrs: []string{"code"}},
	"clusterExtension":     {attrs: []string{"code"}},
	"attribute":            {attrs: []string{"code", "side", "type"}},
	"command":              {attrs: []string{"code", "name", "source"}},
	"arg":                  {attrs: []string{"name", "type"}},
	"event":                {attrs: []string{"code", "name", "side"}},
	"field":                {attrs: []string{"name"}},
	"item":                 {attrs: []string{"name"}},
	"enum":                 {attrs: []string{"name", "type"}},
	"bitmap":               {attrs: []string{"name", "type"}},
	"struct":               {attrs: []string{"name"}},
	"atomic>type":          {attrs: []string{"id", "name"}},
	"deviceType":           {children: []string{"name", "deviceId"}},
}

var dotdotRules = map[string]rule{
	">cluster":     {attrs: []string{"id", "name"}},
	"attribute":    {attrs: []string{"id", "name", "type"}},
	"command":      {attrs: []string{"id", "name"}},
	"field":        {attrs: []string{"name", "type"}},
	"element":      {attrs: []string{"name", "mask"}},
	"library>type": {attrs: []string{"short", "id"}},
	"include":      {attrs: []string{"href"}},
}

// Validator checks metadata XML files. The zero value is not usable; call New.
type Validator struct {
	maxIssues int
}

// New returns a Validator.
func New() *Validator {
	return &Validator{maxIssues: MaxIssues}
}

// element is an open element whose required children are still missing.
type element struct {
	name    string
	line    int
	missing map[string]bool
}

// Validate implements zclload.Validator.
func (v *Validator) Validate(content []byte) ([]zclload.ValidationIssue, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return []zclload.ValidationIssue{{Message: "file is empty"}}, nil
	}

	c := &collector{max: v.maxIssues}
	dec := xml.NewDecoder(bytes.NewReader(content))
	var (
		stack []*element
		rules map[string]rule
	)

	for !c.full() {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syntax *xml.SyntaxError
			if errors.As(err, &syntax) {
				c.add(syntax.Line, "malformed XML: %s", syntax.Msg)
				return c.issues, nil
			}
			return nil, fmt.Errorf("failed to read XML: %w", err)
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			name := tok.Name.Local
			parent := ""
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				parent = top.name
				delete(top.missing, name)
			} else if rules = rootRules(name); rules == nil {
				c.add(line, "unknown root element <%s>, want <configurator>, <zap>, <cluster> or <library>", name)
				return c.issues, nil
			}

			el := &element{name: name, line: line}
			if r, ok := lookup(rules, parent, name); ok {
				c.checkAttrs(line, name, tok.Attr, r.attrs)
				if len(r.children) > 0 {
					el.missing = make(map[string]bool, len(r.children))
					for _, child := range r.children {
						el.missing[child] = true
					}
				}
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			missing := make([]string, 0, len(el.missing))
			for child := range el.missing {
				missing = append(missing, child)
			}
			sort.Strings(missing)
			for _, child := range missing {
				c.add(el.line, "<%s> is missing <%s>", el.name, child)
			}
		}
	}
	return c.issues, nil
}

func rootRules(name string) map[string]rule {
	switch name {
	case "configurator", "zap":
		return zclRules
	case "cluster", "library":
		return dotdotRules
	}
	return nil
}

func lookup(rules map[string]rule, parent, name string) (rule, bool) {
	if r, ok := rules[parent+">"+name]; ok {
		return r, true
	}
	r, ok := rules[name]
	return r, ok
}

type collector struct {
	issues []zclload.ValidationIssue
	max    int
}

func (c *collector) full() bool { return len(c.issues) >= c.max }

func (c *collector) add(line int, format string, args ...any) {
	if !c.full() {
		c.issues = append(c.issues, zclload.ValidationIssue{Line: line, Message: fmt.Sprintf(format, args...)})
	}
}

func (c *collector) checkAttrs(line int, name string, attrs []xml.Attr, required []string) {
	for _, want := range required {
		found := false
		for _, a := range attrs {
			if a.Name.Local == want && strings.TrimSpace(a.Value) != "" {
				found = true
				break
			}
		}
		if !found {
			c.add(line, "<%s> requires attribute %q", name, want)
		}
	}
}
