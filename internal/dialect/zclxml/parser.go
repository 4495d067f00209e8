// Package zclxml normalizes <configurator>/<zap> metadata files into the
// canonical model.
package zclxml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/model"
)

// Parse normalizes one ZCL XML file. A structurally invalid file returns a
// *dialect.ParseError and no graph.
func Parse(path string, content []byte, ctx dialect.Context) (*model.Graph, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, dialect.WrapXMLError(err, path)
	}
	switch doc.XMLName.Local {
	case "configurator", "zap":
	default:
		return nil, &dialect.ParseError{
			Path:    path,
			Message: fmt.Sprintf("unexpected root element <%s>", doc.XMLName.Local),
			Hint:    "ZCL XML files start with <configurator> or <zap>.",
		}
	}

	p := &parser{path: path, ctx: ctx}
	g := p.graph(&doc)
	if p.err != nil {
		return nil, p.err
	}
	ctx.Log().Verbose("%s: %s", path, g.Stats())
	return g, nil
}

// parser keeps the first conversion error so the mapping code can stay flat.
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

func (p *parser) num(field, s string) int64 {
	n, err := dialect.ParseInt(s)
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

func (p *parser) fieldID(ids *dialect.FieldIDs, field, explicit string) int {
	n, err := ids.Next(explicit)
	if err != nil {
		p.fail(field, "%v", err)
	}
	return n
}

func (p *parser) graph(doc *xmlDocument) *model.Graph {
	g := &model.Graph{Path: p.path}

	for _, ac := range doc.AccessControl {
		for _, op := range ac.Operations {
			g.AccessControl.Operations = append(g.AccessControl.Operations, model.AccessVocab{Name: op.Type, Description: op.Description})
		}
		for _, r := range append(append([]xmlVocab(nil), ac.Roles...), ac.Privileges...) {
			g.AccessControl.Roles = append(g.AccessControl.Roles, model.AccessVocab{
				Name: r.Type, Description: r.Description, Level: len(g.AccessControl.Roles),
			})
		}
		for _, m := range ac.Modifiers {
			g.AccessControl.Modifiers = append(g.AccessControl.Modifiers, model.AccessVocab{Name: m.Type, Description: m.Description})
		}
	}

	g.Tags = tags(doc.Tags)

	for _, d := range doc.Domains {
		g.Domains = append(g.Domains, domain(d))
	}
	for _, dt := range doc.DeviceTypes {
		g.DeviceTypes = append(g.DeviceTypes, p.deviceType(dt))
	}
	for _, gl := range doc.Globals {
		body := p.clusterBody(gl, "", nil)
		g.Globals.Commands = append(g.Globals.Commands, body.Commands...)
		g.Globals.Attributes = append(g.Globals.Attributes, body.Attributes...)
	}
	for _, c := range doc.Clusters {
		cl := p.cluster(c)
		g.Clusters = append(g.Clusters, cl)
		if defaults, ok := p.globalDefaults(c, cl); ok {
			g.GlobalAttributeDefaults = append(g.GlobalAttributeDefaults, defaults)
		}
	}
	for _, ext := range doc.ClusterExtensions {
		if ext.CodeAttr == "" {
			p.fail("clusterExtension", "missing code attribute")
			continue
		}
		body := p.clusterBody(ext, "", nil)
		g.ClusterExtensions = append(g.ClusterExtensions, model.ClusterExtension{
			Code:       p.num("clusterExtension.code", ext.CodeAttr),
			Commands:   body.Commands,
			Attributes: body.Attributes,
			Events:     body.Events,
		})
	}

	for _, a := range doc.Atomics {
		for _, t := range a.Types {
			g.Atomics = append(g.Atomics, p.atomic(t))
		}
	}
	for _, e := range doc.Enums {
		g.Enums = append(g.Enums, p.enum(e))
	}
	for _, b := range doc.Bitmaps {
		g.Bitmaps = append(g.Bitmaps, p.bitmap(b))
	}
	for _, s := range doc.Structs {
		g.Structs = append(g.Structs, p.structType(s))
	}
	for _, da := range doc.DefaultAccess {
		g.DefaultAccess = append(g.DefaultAccess, model.DefaultAccess{EntityType: da.Type, Access: access(da.Access)})
	}

	return g
}

func tags(in []xmlTag) []model.Tag {
	var out []model.Tag
	for _, t := range in {
		out = append(out, model.Tag{Name: t.Name, Description: t.Description})
	}
	return out
}

func access(in []xmlAccess) []model.Access {
	var out []model.Access
	for _, a := range in {
		out = append(out, dialect.NewAccess(a.Op, a.Role, a.Privilege, a.Modifier))
	}
	return out
}

func domain(d xmlDomain) model.Domain {
	out := model.Domain{Name: d.Name}
	if d.Spec != "" {
		out.Latest = &model.Spec{
			Code:        d.Spec,
			Description: fmt.Sprintf("Latest %s spec: %s", d.Name, d.Spec),
			Certifiable: dialect.ParseBool(d.Certifiable),
		}
	}
	for _, o := range d.Older {
		out.Older = append(out.Older, model.Spec{
			Code:        o.Spec,
			Description: fmt.Sprintf("Older %s spec %s", d.Name, o.Spec),
			Certifiable: dialect.ParseBool(o.Certifiable),
		})
	}
	return out
}

func (p *parser) deviceType(dt xmlDeviceType) model.DeviceType {
	out := model.DeviceType{
		Code:        p.num("deviceType.deviceId", dt.DeviceID),
		ProfileID:   p.num("deviceType.profileId", dt.ProfileID),
		Domain:      strings.TrimSpace(dt.Domain),
		Name:        strings.TrimSpace(dt.Name),
		Description: strings.TrimSpace(dt.TypeName),
		Class:       strings.TrimSpace(dt.Class),
		Scope:       strings.TrimSpace(dt.Scope),
		Superset:    strings.TrimSpace(dt.Superset),
	}
	for _, group := range dt.Clusters {
		for _, inc := range group.Includes {
			name := inc.Cluster
			if name == "" {
				name = strings.TrimSpace(inc.Text)
			}
			out.Clusters = append(out.Clusters, model.DeviceTypeCluster{
				ClusterName:        name,
				Client:             dialect.ParseBool(inc.Client),
				Server:             dialect.ParseBool(inc.Server),
				ClientLocked:       dialect.ParseBool(inc.ClientLocked),
				ServerLocked:       dialect.ParseBool(inc.ServerLocked),
				RequiredAttributes: trimAll(inc.RequireAttributes),
				RequiredCommands:   trimAll(inc.RequireCommands),
			})
		}
	}
	return out
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// cluster maps one cluster definition. A cluster marked removedIn is kept,
// with REMOVED_IN recorded, because device types and extensions still refer
// to it by name and code; only its removed members are dropped.
func (p *parser) cluster(c xmlCluster) model.Cluster {
	if strings.TrimSpace(c.Code) == "" || strings.TrimSpace(c.Name) == "" {
		p.fail("cluster", "cluster requires <code> and <name>")
		return model.Cluster{}
	}
	out := model.Cluster{
		Code:             p.num("cluster.code", c.Code),
		ManufacturerCode: p.optNum("cluster.manufacturerCode", c.ManufacturerCode),
		Name:             strings.TrimSpace(c.Name),
		Description:      strings.TrimSpace(c.Description),
		Define:           strings.TrimSpace(c.Define),
		Domain:           strings.TrimSpace(c.Domain.Text),
		IsSingleton:      dialect.ParseBool(c.Singleton),
		IntroducedIn:     c.IntroducedIn,
		RemovedIn:        c.RemovedIn,
		Tags:             tags(c.Tags),
	}
	if out.Domain == "" {
		out.Domain = c.Domain.Name
	}
	body := p.clusterBody(c, out.Name, out.ManufacturerCode)
	out.Commands = body.Commands
	out.Attributes = body.Attributes
	out.Events = body.Events
	return out
}

type clusterBody struct {
	Commands   []model.Command
	Attributes []model.Attribute
	Events     []model.Event
}

// clusterBody maps the members shared by clusters, extensions and globals.
// Entities marked removedIn are dropped.
func (p *parser) clusterBody(c xmlCluster, clusterName string, mfg *int64) clusterBody {
	var body clusterBody

	for _, cmd := range c.Commands {
		if cmd.RemovedIn != "" {
			continue
		}
		out := model.Command{
			Code:                     p.num("command.code", cmd.Code),
			ManufacturerCode:         dialect.InheritMfg(p.optNum("command.manufacturerCode", cmd.ManufacturerCode), mfg),
			Name:                     cmd.Name,
			Description:              strings.TrimSpace(cmd.Description),
			Source:                   cmd.Source,
			IsOptional:               dialect.ParseBool(cmd.Optional),
			MustUseTimedInvoke:       dialect.ParseBool(cmd.MustUseTimedInvoke),
			IsFabricScoped:           dialect.ParseBool(cmd.IsFabricScoped),
			IsDefaultResponseEnabled: !dialect.ParseBool(cmd.DisableDefaultResponse),
			ResponseName:             cmd.Response,
			IntroducedIn:             cmd.IntroducedIn,
			Access:                   access(cmd.Access),
		}
		ids := dialect.NewFieldIDs()
		for _, arg := range cmd.Args {
			id := p.fieldID(ids, "arg.fieldId", arg.FieldID)
			if arg.RemovedIn != "" {
				continue
			}
			out.Args = append(out.Args, model.CommandArg{
				FieldID:      id,
				Name:         arg.Name,
				Type:         arg.Type,
				Min:          arg.Min,
				Max:          arg.Max,
				MaxLength:    p.optNum("arg.length", arg.Length),
				IsArray:      dialect.ParseBool(arg.Array),
				PresentIf:    arg.PresentIf,
				IsNullable:   dialect.ParseBool(arg.IsNullable),
				IsOptional:   dialect.ParseBool(arg.Optional),
				CountArg:     arg.CountArg,
				DefaultValue: arg.Default,
				IntroducedIn: arg.IntroducedIn,
			})
		}
		body.Commands = append(body.Commands, out)
	}

	for _, ev := range c.Events {
		if ev.RemovedIn != "" {
			continue
		}
		out := model.Event{
			Code:              p.num("event.code", ev.Code),
			ManufacturerCode:  dialect.InheritMfg(p.optNum("event.manufacturerCode", ev.ManufacturerCode), mfg),
			Name:              ev.Name,
			Description:       strings.TrimSpace(ev.Description),
			Side:              ev.Side,
			Priority:          ev.Priority,
			IsOptional:        dialect.ParseBool(ev.Optional),
			IsFabricSensitive: dialect.ParseBool(ev.IsFabricSensitive),
			Access:            access(ev.Access),
		}
		ids := dialect.NewFieldIDs()
		for _, f := range ev.Fields {
			id := p.fieldID(ids, "field.id", f.ID)
			if f.RemovedIn != "" {
				continue
			}
			out.Fields = append(out.Fields, model.EventField{
				FieldID:      id,
				Name:         f.Name,
				Type:         f.Type,
				IsArray:      dialect.ParseBool(f.Array),
				IsNullable:   dialect.ParseBool(f.IsNullable),
				IsOptional:   dialect.ParseBool(f.Optional),
				IntroducedIn: f.IntroducedIn,
			})
		}
		if out.IsFabricSensitive {
			if f, ok := p.ctx.FabricIndexEventField(); ok {
				out.Fields = append(out.Fields, f)
			}
		}
		body.Events = append(body.Events, out)
	}

	for _, a := range c.Attributes {
		if a.RemovedIn != "" {
			continue
		}
		body.Attributes = append(body.Attributes, p.attributes(a, clusterName, mfg)...)
	}

	return body
}

// attributes maps one declaration, fanning out both/either sides.
func (p *parser) attributes(a xmlAttribute, clusterName string, mfg *int64) []model.Attribute {
	name := strings.TrimSpace(a.Text)
	if name == "" {
		name = strings.TrimSpace(a.Description)
	}
	typ := dialect.NormalizeType(a.Type)

	base := model.Attribute{
		Code:                   p.num("attribute.code", a.Code),
		ManufacturerCode:       dialect.InheritMfg(p.optNum("attribute.manufacturerCode", a.ManufacturerCode), mfg),
		Name:                   name,
		Type:                   typ,
		Define:                 a.Define,
		Min:                    a.Min,
		Max:                    a.Max,
		MaxLength:              p.ctx.DefaultStringLength(typ, p.optNum("attribute.length", a.Length), name),
		ReportMinInterval:      a.ReportMinInterval,
		ReportMaxInterval:      a.ReportMaxInterval,
		ReportableChange:       a.ReportableChange,
		ReportableChangeLength: p.optNum("attribute.reportableChangeLength", a.ReportableChangeLength),
		IsWritable:             dialect.ParseBool(a.Writable),
		IsReadable:             a.Readable == "" || dialect.ParseBool(a.Readable),
		DefaultValue:           a.Default,
		IsOptional:             dialect.ParseBool(a.Optional),
		ReportingPolicy:        p.ctx.AttributeReportingPolicy(a.Reportable, a.ReportingPolicy),
		StoragePolicy:          p.ctx.StoragePolicy(clusterName, name, a.EntryType),
		IsSceneRequired:        dialect.ParseBool(a.SceneRequired),
		IsNullable:             dialect.ParseBool(a.IsNullable),
		EntryType:              a.EntryType,
		MustUseTimedWrite:      dialect.ParseBool(a.MustUseTimedWrite),
		IsChangeOmitted:        dialect.ParseBool(a.ChangeOmitted),
		Persistence:            a.Persistence,
		IntroducedIn:           a.IntroducedIn,
		Access:                 access(a.Access),
	}
	if a.MinLength != "" {
		base.MinLength = p.num("attribute.minLength", a.MinLength)
	}

	var out []model.Attribute
	for _, side := range dialect.Sides(a.Side) {
		attr := base
		attr.Side = side
		out = append(out, attr)
	}
	return out
}

func (p *parser) globalDefaults(c xmlCluster, cl model.Cluster) (model.GlobalAttributeDefaults, bool) {
	if len(c.GlobalAttributes) == 0 {
		return model.GlobalAttributeDefaults{}, false
	}
	out := model.GlobalAttributeDefaults{ClusterCode: cl.Code, ManufacturerCode: cl.ManufacturerCode}
	for _, ga := range c.GlobalAttributes {
		var bitsOut []model.FeatureBit
		for _, fb := range ga.FeatureBits {
			v := strings.ToLower(strings.TrimSpace(fb.Value))
			bitsOut = append(bitsOut, model.FeatureBit{
				Tag:   fb.Tag,
				Bit:   int(p.num("featureBit.bit", fb.Bit)),
				Value: v == "1" || v == "true",
			})
		}
		for _, side := range dialect.Sides(ga.Side) {
			out.Attributes = append(out.Attributes, model.GlobalAttributeDefault{
				Code:        p.num("globalAttribute.code", ga.Code),
				Side:        side,
				Value:       ga.Value,
				FeatureBits: bitsOut,
			})
		}
	}
	return out, true
}

func (p *parser) atomic(t xmlAtomicType) model.Atomic {
	return model.Atomic{
		Name:        t.Name,
		ID:          p.num("atomic.id", t.ID),
		Size:        p.optNum("atomic.size", t.Size),
		Description: t.Description,
		IsDiscrete:  dialect.ParseBool(t.Discrete),
		IsSigned:    dialect.ParseBool(t.Signed),
		IsString:    dialect.ParseBool(t.String),
		IsLong:      dialect.ParseBool(t.Long),
		IsChar:      dialect.ParseBool(t.Char),
	}
}

func (p *parser) clusterCodes(refs []xmlClusterRef) []int64 {
	var out []int64
	for _, r := range refs {
		out = append(out, p.num("cluster.code", r.Code))
	}
	return out
}

func (p *parser) enum(e xmlEnum) model.Enum {
	out := model.Enum{
		Name:         e.Name,
		Type:         p.ctx.FixEnumType(e.Name, e.Type),
		ClusterCodes: p.clusterCodes(e.Clusters),
	}
	ids := dialect.NewFieldIDs()
	for _, item := range e.Items {
		out.Items = append(out.Items, model.EnumItem{
			Name:    item.Name,
			Value:   p.num("item.value", item.Value),
			FieldID: p.fieldID(ids, "item.fieldId", item.FieldID),
		})
	}
	return out
}

func (p *parser) bitmap(b xmlBitmap) model.Bitmap {
	out := model.Bitmap{
		Name:         b.Name,
		Type:         strings.ToLower(b.Type),
		ClusterCodes: p.clusterCodes(b.Clusters),
	}
	ids := dialect.NewFieldIDs()
	for _, f := range b.Fields {
		mask := p.num("field.mask", f.Mask)
		typ := f.Type
		if typ == "" {
			typ = dialect.MaskToType(mask)
		}
		out.Fields = append(out.Fields, model.BitmapField{
			Name:    f.Name,
			Mask:    mask,
			Type:    typ,
			FieldID: p.fieldID(ids, "field.fieldId", f.FieldID),
		})
	}
	return out
}

func (p *parser) structType(s xmlStruct) model.Struct {
	out := model.Struct{
		Name:           s.Name,
		ClusterCodes:   p.clusterCodes(s.Clusters),
		IsFabricScoped: dialect.ParseBool(s.IsFabricScoped),
	}
	ids := dialect.NewFieldIDs()
	for _, item := range s.Items {
		out.Items = append(out.Items, model.StructItem{
			FieldID:           p.fieldID(ids, "item.fieldId", item.FieldID),
			Name:              item.Name,
			Type:              dialect.NormalizeType(item.Type),
			MaxLength:         p.optNum("item.length", item.Length),
			IsWritable:        dialect.ParseBool(item.Writable),
			IsArray:           dialect.ParseBool(item.Array),
			IsEnum:            dialect.ParseBool(item.Enum),
			IsNullable:        dialect.ParseBool(item.IsNullable),
			IsOptional:        dialect.ParseBool(item.Optional),
			IsFabricSensitive: dialect.ParseBool(item.IsFabricSensitive),
		})
	}
	if out.IsFabricScoped {
		if item, ok := p.ctx.FabricIndexStructItem(); ok {
			out.Items = append(out.Items, item)
		}
	}
	return out
}
