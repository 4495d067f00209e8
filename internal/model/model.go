// Package model defines the canonical, dialect-independent object graph
// produced by the dialect normalizers and consumed by the batch loader.
//
// Values are built once by a normalizer and treated as read-only afterwards.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Side of a cluster an attribute, command or event belongs to.
type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
)

// Reporting policies.
const (
	ReportingMandatory  = "mandatory"
	ReportingOptional   = "optional"
	ReportingSuggested  = "suggested"
	ReportingProhibited = "prohibited"

	DefaultReportingPolicy = ReportingOptional
)

// Storage policies.
const (
	StorageAny                      = "any"
	StorageAttributeAccessInterface = "attributeAccessInterface"
)

// Discriminator category names.
const (
	CategoryArray  = "ARRAY"
	CategoryBitmap = "BITMAP"
	CategoryEnum   = "ENUM"
	CategoryNumber = "NUMBER"
	CategoryString = "STRING"
	CategoryStruct = "STRUCT"
)

// DefaultDiscriminators is used when a manifest does not list ZCLDataTypes.
var DefaultDiscriminators = []string{
	CategoryArray, CategoryBitmap, CategoryEnum, CategoryNumber, CategoryString, CategoryStruct,
}

// Access is one (operation, role, modifier) triple. Empty fields are unset.
type Access struct {
	Op       string
	Role     string
	Modifier string
}

// AccessVocab is an operation, role or modifier declaration.
type AccessVocab struct {
	Name        string
	Description string
	Level       int
}

// AccessControl holds the access vocabulary declared by a file.
type AccessControl struct {
	Operations []AccessVocab
	Roles      []AccessVocab
	Modifiers  []AccessVocab
}

// Empty reports whether no vocabulary was declared.
func (a AccessControl) Empty() bool {
	return len(a.Operations) == 0 && len(a.Roles) == 0 && len(a.Modifiers) == 0
}

// DefaultAccess is the access list applied to an entity type.
type DefaultAccess struct {
	EntityType string
	Access     []Access
}

// Tag is a name/description pair, optionally scoped to a cluster.
type Tag struct {
	Name        string
	Description string
}

// Spec is a versioned specification reference.
type Spec struct {
	Code        string
	Description string
	Certifiable bool
}

// Domain groups clusters under a latest spec and optional older specs.
type Domain struct {
	Name   string
	Latest *Spec
	Older  []Spec
}

// Cluster is a full cluster definition.
type Cluster struct {
	Code             int64
	ManufacturerCode *int64
	Name             string
	Description      string
	Define           string
	Domain           string
	IsSingleton      bool
	Revision         *int64
	IntroducedIn     string
	RemovedIn        string
	Tags             []Tag
	Commands         []Command
	Attributes       []Attribute
	Events           []Event
}

// ClusterExtension adds commands, attributes and events to a cluster
// defined elsewhere, identified only by its code.
type ClusterExtension struct {
	Code       int64
	Commands   []Command
	Attributes []Attribute
	Events     []Event
}

// Globals are cluster-less commands and attributes.
type Globals struct {
	Commands   []Command
	Attributes []Attribute
}

// Command belongs to a cluster or is global.
type Command struct {
	Code                     int64
	ManufacturerCode         *int64
	Name                     string
	Description              string
	Source                   string
	IsOptional               bool
	MustUseTimedInvoke       bool
	IsFabricScoped           bool
	IsDefaultResponseEnabled bool
	ResponseName             string
	IntroducedIn             string
	Access                   []Access
	Args                     []CommandArg
}

// CommandArg is an ordered command field.
type CommandArg struct {
	FieldID      int
	Name         string
	Type         string
	Min          string
	Max          string
	MaxLength    *int64
	IsArray      bool
	PresentIf    string
	IsNullable   bool
	IsOptional   bool
	CountArg     string
	DefaultValue string
	IntroducedIn string
}

// Event belongs to a cluster.
type Event struct {
	Code              int64
	ManufacturerCode  *int64
	Name              string
	Description       string
	Side              string
	Priority          string
	IsOptional        bool
	IsFabricSensitive bool
	Access            []Access
	Fields            []EventField
}

// EventField is an ordered event field.
type EventField struct {
	FieldID      int
	Name         string
	Type         string
	IsArray      bool
	IsNullable   bool
	IsOptional   bool
	IntroducedIn string
}

// Attribute is always single-sided in the canonical graph.
type Attribute struct {
	Code                   int64
	ManufacturerCode       *int64
	Name                   string
	Type                   string
	Side                   Side
	Define                 string
	Min                    string
	Max                    string
	MinLength              int64
	MaxLength              *int64
	ReportMinInterval      string
	ReportMaxInterval      string
	ReportableChange       string
	ReportableChangeLength *int64
	IsWritable             bool
	IsReadable             bool
	DefaultValue           string
	IsOptional             bool
	ReportingPolicy        string
	StoragePolicy          string
	IsSceneRequired        bool
	IsNullable             bool
	EntryType              string
	MustUseTimedWrite      bool
	IsChangeOmitted        bool
	Persistence            string
	IntroducedIn           string
	Access                 []Access
}

// GlobalAttributeDefaults overrides global attribute values for one cluster.
type GlobalAttributeDefaults struct {
	ClusterCode      int64
	ManufacturerCode *int64
	Attributes       []GlobalAttributeDefault
}

// GlobalAttributeDefault is a per-side default for one global attribute.
type GlobalAttributeDefault struct {
	Code        int64
	Side        Side
	Value       string
	FeatureBits []FeatureBit
}

// FeatureBit is a per-feature sub-value of a global attribute default.
type FeatureBit struct {
	Tag   string
	Bit   int
	Value bool
}

// DeviceType names required clusters, attributes and commands by name.
type DeviceType struct {
	Code        int64
	ProfileID   int64
	Domain      string
	Name        string
	Description string
	Class       string
	Scope       string
	Superset    string
	Clusters    []DeviceTypeCluster
}

// DeviceTypeCluster is one include entry of a device type.
type DeviceTypeCluster struct {
	ClusterName        string
	Client             bool
	Server             bool
	ClientLocked       bool
	ServerLocked       bool
	RequiredAttributes []string
	RequiredCommands   []string
}

// Atomic is an entry of the atomic type catalog.
type Atomic struct {
	Name        string
	ID          int64
	Size        *int64
	Description string
	IsDiscrete  bool
	IsSigned    bool
	IsString    bool
	IsLong      bool
	IsChar      bool
}

// Category classifies an atomic into its discriminator category by name.
func (a Atomic) Category() string {
	return CategoryForAtomicName(a.Name)
}

// CategoryForAtomicName applies the name-based atomic classification.
func CategoryForAtomicName(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "bitmap"):
		return CategoryBitmap
	case strings.Contains(n, "enum"):
		return CategoryEnum
	case strings.Contains(n, "string"):
		return CategoryString
	case strings.Contains(n, "struct"):
		return CategoryStruct
	default:
		return CategoryNumber
	}
}

// NumberSigned is the signedness rule for number atomics: int8s and int16
// are signed, int8u, uint8 and non-integer types are not.
func NumberSigned(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "int") && !strings.HasSuffix(n, "u") && !strings.HasPrefix(n, "uint")
}

// IsStringAtomic reports whether an atomic gets a STRING specialization row.
func (a Atomic) IsStringAtomic() bool {
	return a.IsString || strings.Contains(strings.ToLower(a.Name), "string")
}

// Enum is a named enumeration.
type Enum struct {
	Name         string
	Type         string
	ClusterCodes []int64
	Items        []EnumItem
}

// EnumItem is one enumeration value.
type EnumItem struct {
	Name    string
	Value   int64
	FieldID int
}

// Bitmap is a named bitmap.
type Bitmap struct {
	Name         string
	Type         string
	ClusterCodes []int64
	Fields       []BitmapField
}

// BitmapField is one bitmap mask.
type BitmapField struct {
	Name    string
	Mask    int64
	Type    string
	FieldID int
}

// Struct is a named structure.
type Struct struct {
	Name           string
	ClusterCodes   []int64
	IsFabricScoped bool
	Items          []StructItem
}

// StructItem is one structure field.
type StructItem struct {
	FieldID           int
	Name              string
	Type              string
	MaxLength         *int64
	IsWritable        bool
	IsArray           bool
	IsEnum            bool
	IsNullable        bool
	IsOptional        bool
	IsFabricSensitive bool
}

// Graph is the canonical content of one metadata file.
type Graph struct {
	Path                    string
	AccessControl           AccessControl
	Tags                    []Tag
	Domains                 []Domain
	DeviceTypes             []DeviceType
	Globals                 Globals
	Clusters                []Cluster
	Atomics                 []Atomic
	Enums                   []Enum
	Bitmaps                 []Bitmap
	Structs                 []Struct
	DefaultAccess           []DefaultAccess
	GlobalAttributeDefaults []GlobalAttributeDefaults
	ClusterExtensions       []ClusterExtension
}

// IsTypeFile reports whether the graph only declares shared data types.
func (g *Graph) IsTypeFile() bool {
	return len(g.Clusters) == 0 && len(g.ClusterExtensions) == 0 && len(g.DeviceTypes) == 0 &&
		(len(g.Atomics) > 0 || len(g.Enums) > 0 || len(g.Bitmaps) > 0 || len(g.Structs) > 0)
}

// Stats summarizes a graph for logging.
func (g *Graph) Stats() string {
	return fmt.Sprintf("%d clusters, %d extensions, %d device types, %d atomics, %d enums, %d bitmaps, %d structs",
		len(g.Clusters), len(g.ClusterExtensions), len(g.DeviceTypes),
		len(g.Atomics), len(g.Enums), len(g.Bitmaps), len(g.Structs))
}

// TypeKey identifies a declared data type within one file: its
// case-folded name plus the sorted cluster codes it is scoped to.
func TypeKey(name string, clusterCodes []int64) string {
	key := strings.ToUpper(name)
	if len(clusterCodes) == 0 {
		return key
	}
	codes := append([]int64(nil), clusterCodes...)
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = fmt.Sprintf("%#04x", c)
	}
	return key + "@" + strings.Join(parts, ",")
}

// Package option categories written by the loader itself. Manifests add
// their own categories through options, feature flags and defaults.
const (
	OptionManufacturerCodes = "manufacturerCodes"
	OptionProfileCodes      = "profileCodes"
	OptionUI                = "ui"
)

// PackageOption is one code/label pair in a package option category.
type PackageOption struct {
	Code  string
	Label string
}
