package dialect

import (
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
	"strings"

	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// FabricHandling controls automatic fabric index fields.
type FabricHandling struct {
	AutomaticallyCreateFields bool   `json:"automaticallyCreateFields"`
	IndexFieldID              int    `json:"indexFieldId"`
	IndexFieldName            string `json:"indexFieldName"`
	IndexType                 string `json:"indexType"`
}

// Context carries the package-level settings a manifest contributes to the
// normalization of its sub-files.
type Context struct {
	Category                           string
	DefaultReportingPolicy             string
	Strings                            zclload.StringPolicy
	Fabric                             FabricHandling
	ListsUseAttributeAccessInterface   bool
	AttributeAccessInterfaceAttributes map[string][]string
	Logger                             zclload.Logger
}

// DefaultContext is used for standalone files loaded outside a manifest.
func DefaultContext(logger zclload.Logger) Context {
	return Context{
		DefaultReportingPolicy: model.DefaultReportingPolicy,
		Strings:                zclload.DefaultStringPolicy(),
		Logger:                 logger,
	}
}

// Log returns the context logger, or a null logger.
func (c Context) Log() zclload.Logger {
	if c.Logger == nil {
		return logging.NewNullLogger()
	}
	return c.Logger
}

var reportingPolicies = []string{
	model.ReportingMandatory,
	model.ReportingOptional,
	model.ReportingSuggested,
	model.ReportingProhibited,
}

// ResolveReportingPolicy matches s case-insensitively against the known policies.
func ResolveReportingPolicy(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, p := range reportingPolicies {
		if strings.EqualFold(p, s) {
			return p, true
		}
	}
	return "", false
}

// PackageReportingPolicy computes a manifest's default policy.
// defaultReportable is the legacy tri-state flag; defaultPolicy overrides it.
func PackageReportingPolicy(defaultReportable *bool, defaultPolicy string) string {
	policy := model.DefaultReportingPolicy
	if defaultReportable != nil {
		if *defaultReportable {
			policy = model.ReportingSuggested
		} else {
			policy = model.ReportingOptional
		}
	}
	if defaultPolicy != "" {
		if p, ok := ResolveReportingPolicy(defaultPolicy); ok {
			policy = p
		}
	}
	return policy
}

// AttributeReportingPolicy applies the precedence reportable flag, explicit
// policy, package default.
func (c Context) AttributeReportingPolicy(reportable, explicit string) string {
	switch strings.TrimSpace(reportable) {
	case "true":
		return model.ReportingSuggested
	case "false":
		return model.ReportingOptional
	}
	if explicit != "" {
		if p, ok := ResolveReportingPolicy(explicit); ok {
			return p
		}
		c.Log().Warn("unknown reporting policy %q, using package default", explicit)
	}
	if c.DefaultReportingPolicy == "" {
		return model.DefaultReportingPolicy
	}
	return c.DefaultReportingPolicy
}

// StoragePolicy decides whether an attribute is served by an access interface.
func (c Context) StoragePolicy(clusterName, attrName, entryType string) string {
	if c.ListsUseAttributeAccessInterface && entryType != "" {
		return model.StorageAttributeAccessInterface
	}
	for _, name := range c.AttributeAccessInterfaceAttributes[clusterName] {
		if name == attrName {
			return model.StorageAttributeAccessInterface
		}
	}
	return model.StorageAny
}

// DefaultStringLength fills in a max length for string attributes that omit
// one. Other types are returned unchanged.
func (c Context) DefaultStringLength(typ string, maxLength *int64, owner string) *int64 {
	if maxLength != nil && *maxLength != 0 {
		return maxLength
	}
	policy := c.Strings
	if policy.Short == 0 {
		policy = zclload.DefaultStringPolicy()
	}

	switch strings.ToLower(typ) {
	case "long_octet_string", "long_char_string":
		n := int64(policy.RelaxedLong)
		if c.Category != "" && c.Category == policy.ConstrainedCategory {
			n = int64(policy.ConstrainedLong)
		}
		c.Log().Warn("long string max length not set for %s, defaulting to %d", owner, n)
		return &n
	case "octet_string", "char_string":
		n := int64(policy.Short)
		return &n
	}
	return maxLength
}

// FieldIDs assigns field identifiers in declaration order. An item without an
// explicit id takes one more than the previous item's id.
type FieldIDs struct {
	last int
}

// NewFieldIDs starts a counter for one child collection.
func NewFieldIDs() *FieldIDs {
	return &FieldIDs{last: -1}
}

// Next advances the counter. It must be called for dropped items too.
func (f *FieldIDs) Next(explicit string) (int, error) {
	if strings.TrimSpace(explicit) == "" {
		f.last++
		return f.last, nil
	}
	n, err := ParseInt(explicit)
	if err != nil {
		return 0, err
	}
	f.last = int(n)
	return f.last, nil
}

// ParseInt accepts 0x-prefixed hex or decimal.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	var (
		n   uint64
		err error
	)
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		n, err = strconv.ParseUint(digits[2:], 16, 64)
	} else {
		n, err = strconv.ParseUint(digits, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if neg {
		return -int64(n), nil
	}
	return int64(n), nil
}

// ParseHex parses hex with or without a 0x prefix.
func ParseHex(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex number %q", s)
	}
	return int64(n), nil
}

// ParseOptionalInt returns nil for an empty string.
func ParseOptionalInt(s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, err := ParseInt(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ParseBool is true only for "true" (any case).
func ParseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// Sides expands a declared side. both and either fan out to client and server.
func Sides(side string) []model.Side {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "both", "either":
		return []model.Side{model.SideClient, model.SideServer}
	case "client":
		return []model.Side{model.SideClient}
	default:
		return []model.Side{model.SideServer}
	}
}

// NormalizeType lowercases all-uppercase type names such as INT8U.
func NormalizeType(typ string) string {
	if len(typ) > 1 && strings.ToUpper(typ) == typ {
		return strings.ToLower(typ)
	}
	return typ
}

var digitsRe = regexp.MustCompile(`\d+`)

// FixEnumType rewrites an enum declared with an int or bitmap storage type
// as enum<bits>. The returned type is always lowercase.
func (c Context) FixEnumType(name, typ string) string {
	lower := strings.ToLower(typ)
	if strings.Contains(lower, "int") || strings.Contains(lower, "bitmap") {
		fixed := "enum" + strings.Join(digitsRe.FindAllString(lower, -1), "")
		c.Log().Warn("type contradiction in enum %s with type %s, using %s", name, typ, fixed)
		return fixed
	}
	return lower
}

// NewAccess builds an access triple; privilege takes precedence over role.
func NewAccess(op, role, privilege, modifier string) model.Access {
	if privilege != "" {
		role = privilege
	}
	return model.Access{Op: op, Role: role, Modifier: modifier}
}

// SynthesizeName names an inline enum or bitmap after its owner.
func SynthesizeName(owner, name string) string {
	return owner + name
}

// InheritMfg returns explicit when set, else the owning cluster's code.
func InheritMfg(explicit, cluster *int64) *int64 {
	if explicit != nil {
		return explicit
	}
	return cluster
}

// MaskToType picks a storage type for a bitmap field from its mask width.
func MaskToType(mask int64) string {
	switch n := bits.OnesCount64(uint64(mask)); {
	case n <= 1:
		return "bool"
	case n <= 8:
		return "enum8"
	case n <= 16:
		return "enum16"
	default:
		return "enum32"
	}
}

// FabricIndexEventField returns the automatic index field for a
// fabric-sensitive event, or false when disabled.
func (c Context) FabricIndexEventField() (model.EventField, bool) {
	if !c.Fabric.AutomaticallyCreateFields {
		return model.EventField{}, false
	}
	return model.EventField{
		FieldID: c.Fabric.IndexFieldID,
		Name:    c.Fabric.IndexFieldName,
		Type:    c.Fabric.IndexType,
	}, true
}

// FabricIndexStructItem returns the automatic index item for a
// fabric-scoped struct, or false when disabled.
func (c Context) FabricIndexStructItem() (model.StructItem, bool) {
	if !c.Fabric.AutomaticallyCreateFields {
		return model.StructItem{}, false
	}
	return model.StructItem{
		FieldID: c.Fabric.IndexFieldID,
		Name:    c.Fabric.IndexFieldName,
		Type:    c.Fabric.IndexType,
	}, true
}
