// Package dotdot normalizes dotdot-style metadata: a library file that
// declares the atomic type catalog and includes one file per cluster.
package dotdot

import (
	"encoding/xml"
	"fmt"
	"strings"
	"unicode"

	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/model"
)

// Library is a parsed library file.
type Library struct {
	Graph *model.Graph
	// Includes lists xi:include hrefs in declaration order, relative to the
	// library file.
	Includes []string
}

// ParseLibrary reads the atomic catalog and include list of a library file.
func ParseLibrary(path string, content []byte, ctx dialect.Context) (*Library, error) {
	var doc xmlLibrary
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, dialect.WrapXMLError(err, path)
	}
	if doc.XMLName.Local != "library" {
		return nil, &dialect.ParseError{Path: path, Message: fmt.Sprintf("unexpected root element <%s>, want <library>", doc.XMLName.Local)}
	}

	p := &parser{path: path, ctx: ctx}
	g := &model.Graph{Path: path}
	for _, t := range doc.Types {
		if t.Short == "" || t.ID == "" {
			p.fail("type", "type requires short and id")
			break
		}
		description := t.Name
		if description == "" {
			description = t.Description
		}
		g.Atomics = append(g.Atomics, model.Atomic{
			Name:        t.Short,
			ID:          p.hex("type.id", t.ID),
			Size:        p.optNum("type.size", t.Size),
			Description: description,
			IsDiscrete:  dialect.ParseBool(t.Discrete),
			IsSigned:    dialect.ParseBool(t.Signed) || strings.HasPrefix(t.Short, "int"),
			IsString:    strings.Contains(t.Short, "string"),
			IsLong:      strings.HasPrefix(t.Short, "long"),
			IsChar:      strings.Contains(t.Short, "char"),
		})
	}
	if doc.Global != nil {
		body := p.side(doc.Global, "", 0, model.SideServer, g)
		g.Globals.Attributes = body.Attributes
		g.Globals.Commands = body.Commands
	}
	if p.err != nil {
		return nil, p.err
	}

	lib := &Library{Graph: g}
	for _, inc := range doc.Includes {
		if inc.Href != "" {
			lib.Includes = append(lib.Includes, inc.Href)
		}
	}
	ctx.Log().Verbose("%s: %d atomics, %d includes", path, len(g.Atomics), len(lib.Includes))
	return lib, nil
}

// ParseCluster normalizes one <cluster> file. Inline enumerations and bitmaps
// become named types scoped to the cluster.
func ParseCluster(path string, content []byte, ctx dialect.Context) (*model.Graph, error) {
	var doc xmlCluster
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, dialect.WrapXMLError(err, path)
	}
	if doc.XMLName.Local != "cluster" {
		return nil, &dialect.ParseError{Path: path, Message: fmt.Sprintf("unexpected root element <%s>, want <cluster>", doc.XMLName.Local)}
	}
	if doc.ID == "" || doc.Name == "" {
		return nil, dialect.NewParseError(path, "cluster", "cluster requires id and name")
	}

	p := &parser{path: path, ctx: ctx}
	g := &model.Graph{Path: path}
	c := model.Cluster{
		Code:     p.hex("cluster.id", doc.ID),
		Name:     doc.Name,
		Define:   define(doc.Name) + "_CLUSTER",
		Revision: p.optNum("cluster.revision", doc.Revision),
	}
	if doc.Server != nil {
		body := p.side(doc.Server, doc.Name, c.Code, model.SideServer, g)
		c.Attributes = append(c.Attributes, body.Attributes...)
		c.Commands = append(c.Commands, body.Commands...)
	}
	if doc.Client != nil {
		body := p.side(doc.Client, doc.Name, c.Code, model.SideClient, g)
		c.Attributes = append(c.Attributes, body.Attributes...)
		c.Commands = append(c.Commands, body.Commands...)
	}
	if p.err != nil {
		return nil, p.err
	}
	g.Clusters = []model.Cluster{c}
	ctx.Log().Verbose("%s: %s", path, g.Stats())
	return g, nil
}

type parser struct {
	path string
	ctx  dialect.Context
	err  error
}

func (p *parser) fail(field, format string, args ...any) {
	if p.err == nil {
		p.err = dialect.NewParseError(p.path, field, format, args...)
	}
}

func (p *parser) hex(field, s string) int64 {
	n, err := dialect.ParseHex(s)
	if err != nil {
		p.fail(field, "%v", err)
	}
	return n
}

func (p *parser) optNum(field, s string) *int64 {
	n, err := dialect.ParseOptionalInt(s)
	if err != nil {
		p.fail(field, "%v", err)
	}
	return n
}

type sideBody struct {
	Attributes []model.Attribute
	Commands   []model.Command
}

// side maps one <server> or <client> section. Commands listed under the
// server section are sent by the client, and the other way around.
func (p *parser) side(s *xmlSide, clusterName string, clusterCode int64, side model.Side, g *model.Graph) sideBody {
	var body sideBody
	var scope []int64
	if clusterName != "" {
		scope = []int64{clusterCode}
	}

	for _, a := range s.Attributes {
		if dialect.ParseBool(a.Deprecated) {
			continue
		}
		typ := a.Type
		if name, ok := p.inlineType(dialect.SynthesizeName(identifier(clusterName), a.Name), a.Type, a.Restriction, a.Bitmap, scope, g); ok {
			typ = name
		}
		policy := ""
		if dialect.ParseBool(a.ReportRequired) {
			policy = model.ReportingMandatory
		}
		attr := model.Attribute{
			Code:            p.hex("attribute.id", a.ID),
			Name:            a.Name,
			Type:            typ,
			Side:            side,
			Define:          define(a.Name),
			Min:             a.Min,
			Max:             a.Max,
			IsWritable:      dialect.ParseBool(a.Writable),
			IsReadable:      a.Readable == "" || dialect.ParseBool(a.Readable),
			DefaultValue:    a.Default,
			IsOptional:      !dialect.ParseBool(a.Required),
			ReportingPolicy: p.ctx.AttributeReportingPolicy("", policy),
			StoragePolicy:   p.ctx.StoragePolicy(clusterName, a.Name, ""),
			IsSceneRequired: dialect.ParseBool(a.SceneRequired),
		}
		if r := a.Restriction; r != nil && r.MaxLength != nil {
			attr.MaxLength = p.optNum("restriction.maxLength", r.MaxLength.Value)
		}
		attr.MaxLength = p.ctx.DefaultStringLength(typ, attr.MaxLength, a.Name)
		body.Attributes = append(body.Attributes, attr)
	}

	source := string(model.SideClient)
	if side == model.SideClient {
		source = string(model.SideServer)
	}
	for _, c := range s.Commands {
		if dialect.ParseBool(c.Deprecated) {
			continue
		}
		cmd := model.Command{
			Code:                     p.hex("command.id", c.ID),
			Name:                     c.Name,
			Source:                   source,
			IsOptional:               !dialect.ParseBool(c.Required),
			IsDefaultResponseEnabled: true,
		}
		ids := dialect.NewFieldIDs()
		for _, f := range c.Fields {
			id, err := ids.Next(f.ID)
			if err != nil {
				p.fail("field.id", "%v", err)
			}
			if dialect.ParseBool(f.Deprecated) {
				continue
			}
			typ := f.Type
			if name, ok := p.inlineType(dialect.SynthesizeName(identifier(c.Name), f.Name), f.Type, f.Restriction, f.Bitmap, scope, g); ok {
				typ = name
			}
			cmd.Args = append(cmd.Args, model.CommandArg{
				FieldID:   id,
				Name:      f.Name,
				Type:      typ,
				IsArray:   dialect.ParseBool(f.Array),
				PresentIf: f.PresentIf,
			})
		}
		body.Commands = append(body.Commands, cmd)
	}
	return body
}

// inlineType registers an inline enumeration or bitmap under name and
// reports whether one was found.
func (p *parser) inlineType(name, storage string, r *xmlRestriction, b *xmlBitmap, scope []int64, g *model.Graph) (string, bool) {
	switch {
	case r != nil && len(r.Enumerations) > 0:
		e := model.Enum{Name: name, Type: p.ctx.FixEnumType(name, storage), ClusterCodes: scope}
		ids := dialect.NewFieldIDs()
		for _, item := range r.Enumerations {
			id, _ := ids.Next("")
			e.Items = append(e.Items, model.EnumItem{Name: item.Name, Value: p.hex("enumeration.value", item.Value), FieldID: id})
		}
		g.Enums = append(g.Enums, e)
		return name, true
	case b != nil && len(b.Elements) > 0:
		bm := model.Bitmap{Name: name, Type: strings.ToLower(storage), ClusterCodes: scope}
		ids := dialect.NewFieldIDs()
		for _, el := range b.Elements {
			mask := p.hex("element.mask", el.Mask)
			typ := el.Type
			if typ == "" {
				typ = dialect.MaskToType(mask)
			}
			id, _ := ids.Next("")
			bm.Fields = append(bm.Fields, model.BitmapField{Name: el.Name, Mask: mask, Type: typ, FieldID: id})
		}
		g.Bitmaps = append(g.Bitmaps, bm)
		return name, true
	}
	return "", false
}

// identifier strips everything but letters and digits, so "On/Off" becomes
// "OnOff" before it prefixes a synthesized type name.
func identifier(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// define converts a display name to SCREAMING_SNAKE_CASE.
func define(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
			prevLower = true
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			prevLower = false
		}
	}
	return strings.Trim(b.String(), "_")
}
