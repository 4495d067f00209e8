package zclxml

import "encoding/xml"

// Raw document shape shared by <configurator> and <zap> roots.

type xmlDocument struct {
	XMLName           xml.Name
	AccessControl     []xmlAccessControl `xml:"accessControl"`
	Tags              []xmlTag           `xml:"tag"`
	Domains           []xmlDomain        `xml:"domain"`
	DeviceTypes       []xmlDeviceType    `xml:"deviceType"`
	Globals           []xmlCluster       `xml:"global"`
	Clusters          []xmlCluster       `xml:"cluster"`
	ClusterExtensions []xmlCluster       `xml:"clusterExtension"`
	Atomics           []xmlAtomic        `xml:"atomic"`
	Enums             []xmlEnum          `xml:"enum"`
	Bitmaps           []xmlBitmap        `xml:"bitmap"`
	Structs           []xmlStruct        `xml:"struct"`
	DefaultAccess     []xmlDefaultAccess `xml:"defaultAccess"`
}

type xmlVocab struct {
	Type        string `xml:"type,attr"`
	Description string `xml:"description,attr"`
}

type xmlAccessControl struct {
	Operations []xmlVocab `xml:"operation"`
	Roles      []xmlVocab `xml:"role"`
	Privileges []xmlVocab `xml:"privilege"`
	Modifiers  []xmlVocab `xml:"modifier"`
}

type xmlAccess struct {
	Op        string `xml:"op,attr"`
	Role      string `xml:"role,attr"`
	Privilege string `xml:"privilege,attr"`
	Modifier  string `xml:"modifier,attr"`
}

type xmlDefaultAccess struct {
	Type   string      `xml:"type,attr"`
	Access []xmlAccess `xml:"access"`
}

type xmlTag struct {
	Name        string `xml:"name,attr"`
	Description string `xml:"description,attr"`
}

type xmlOlderSpec struct {
	Spec        string `xml:"spec,attr"`
	Certifiable string `xml:"certifiable,attr"`
}

type xmlDomain struct {
	Name        string         `xml:"name,attr"`
	Spec        string         `xml:"spec,attr"`
	Certifiable string         `xml:"certifiable,attr"`
	Older       []xmlOlderSpec `xml:"older"`
}

type xmlText struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

type xmlCluster struct {
	Code             string `xml:"code"`
	CodeAttr         string `xml:"code,attr"`
	ManufacturerCode string `xml:"manufacturerCode,attr"`
	Singleton        string `xml:"singleton,attr"`
	IntroducedIn     string `xml:"introducedIn,attr"`
	RemovedIn        string `xml:"removedIn,attr"`

	Name        string  `xml:"name"`
	Description string  `xml:"description"`
	Define      string  `xml:"define"`
	Domain      xmlText `xml:"domain"`

	Tags             []xmlTag             `xml:"tag"`
	Commands         []xmlCommand         `xml:"command"`
	Attributes       []xmlAttribute       `xml:"attribute"`
	Events           []xmlEvent           `xml:"event"`
	GlobalAttributes []xmlGlobalAttribute `xml:"globalAttribute"`
}

type xmlCommand struct {
	Code                   string `xml:"code,attr"`
	ManufacturerCode       string `xml:"manufacturerCode,attr"`
	Name                   string `xml:"name,attr"`
	Source                 string `xml:"source,attr"`
	Optional               string `xml:"optional,attr"`
	MustUseTimedInvoke     string `xml:"mustUseTimedInvoke,attr"`
	IsFabricScoped         string `xml:"isFabricScoped,attr"`
	Response               string `xml:"response,attr"`
	DisableDefaultResponse string `xml:"disableDefaultResponse,attr"`
	IntroducedIn           string `xml:"introducedIn,attr"`
	RemovedIn              string `xml:"removedIn,attr"`

	Description string      `xml:"description"`
	Access      []xmlAccess `xml:"access"`
	Args        []xmlArg    `xml:"arg"`
}

type xmlArg struct {
	FieldID      string `xml:"fieldId,attr"`
	Name         string `xml:"name,attr"`
	Type         string `xml:"type,attr"`
	Min          string `xml:"min,attr"`
	Max          string `xml:"max,attr"`
	Length       string `xml:"length,attr"`
	Array        string `xml:"array,attr"`
	PresentIf    string `xml:"presentIf,attr"`
	IsNullable   string `xml:"isNullable,attr"`
	Optional     string `xml:"optional,attr"`
	CountArg     string `xml:"countArg,attr"`
	Default      string `xml:"default,attr"`
	IntroducedIn string `xml:"introducedIn,attr"`
	RemovedIn    string `xml:"removedIn,attr"`
}

type xmlEvent struct {
	Code              string `xml:"code,attr"`
	ManufacturerCode  string `xml:"manufacturerCode,attr"`
	Name              string `xml:"name,attr"`
	Side              string `xml:"side,attr"`
	Priority          string `xml:"priority,attr"`
	Optional          string `xml:"optional,attr"`
	IsFabricSensitive string `xml:"isFabricSensitive,attr"`
	RemovedIn         string `xml:"removedIn,attr"`

	Description string          `xml:"description"`
	Access      []xmlAccess     `xml:"access"`
	Fields      []xmlEventField `xml:"field"`
}

type xmlEventField struct {
	ID           string `xml:"id,attr"`
	Name         string `xml:"name,attr"`
	Type         string `xml:"type,attr"`
	Array        string `xml:"array,attr"`
	IsNullable   string `xml:"isNullable,attr"`
	Optional     string `xml:"optional,attr"`
	IntroducedIn string `xml:"introducedIn,attr"`
	RemovedIn    string `xml:"removedIn,attr"`
}

type xmlAttribute struct {
	Code                   string `xml:"code,attr"`
	ManufacturerCode       string `xml:"manufacturerCode,attr"`
	Type                   string `xml:"type,attr"`
	Side                   string `xml:"side,attr"`
	Define                 string `xml:"define,attr"`
	Min                    string `xml:"min,attr"`
	Max                    string `xml:"max,attr"`
	Length                 string `xml:"length,attr"`
	MinLength              string `xml:"minLength,attr"`
	ReportMinInterval      string `xml:"reportMinInterval,attr"`
	ReportMaxInterval      string `xml:"reportMaxInterval,attr"`
	ReportableChange       string `xml:"reportableChange,attr"`
	ReportableChangeLength string `xml:"reportableChangeLength,attr"`
	Writable               string `xml:"writable,attr"`
	Readable               string `xml:"readable,attr"`
	Default                string `xml:"default,attr"`
	Optional               string `xml:"optional,attr"`
	Reportable             string `xml:"reportable,attr"`
	ReportingPolicy        string `xml:"reportingPolicy,attr"`
	SceneRequired          string `xml:"sceneRequired,attr"`
	IsNullable             string `xml:"isNullable,attr"`
	EntryType              string `xml:"entryType,attr"`
	MustUseTimedWrite      string `xml:"mustUseTimedWrite,attr"`
	ChangeOmitted          string `xml:"changeOmitted,attr"`
	Persistence            string `xml:"persistence,attr"`
	IntroducedIn           string `xml:"introducedIn,attr"`
	RemovedIn              string `xml:"removedIn,attr"`

	Text        string      `xml:",chardata"`
	Description string      `xml:"description"`
	Access      []xmlAccess `xml:"access"`
}

type xmlFeatureBit struct {
	Tag   string `xml:"tag,attr"`
	Bit   string `xml:"bit,attr"`
	Value string `xml:",chardata"`
}

type xmlGlobalAttribute struct {
	Side        string          `xml:"side,attr"`
	Code        string          `xml:"code,attr"`
	Value       string          `xml:"value,attr"`
	FeatureBits []xmlFeatureBit `xml:"featureBit"`
}

type xmlInclude struct {
	Cluster           string   `xml:"cluster,attr"`
	Client            string   `xml:"client,attr"`
	Server            string   `xml:"server,attr"`
	ClientLocked      string   `xml:"clientLocked,attr"`
	ServerLocked      string   `xml:"serverLocked,attr"`
	Text              string   `xml:",chardata"`
	RequireAttributes []string `xml:"requireAttribute"`
	RequireCommands   []string `xml:"requireCommand"`
}

type xmlDeviceClusters struct {
	Includes []xmlInclude `xml:"include"`
}

type xmlDeviceType struct {
	Name      string              `xml:"name"`
	Domain    string              `xml:"domain"`
	TypeName  string              `xml:"typeName"`
	ProfileID string              `xml:"profileId"`
	DeviceID  string              `xml:"deviceId"`
	Class     string              `xml:"class"`
	Scope     string              `xml:"scope"`
	Superset  string              `xml:"superset"`
	Clusters  []xmlDeviceClusters `xml:"clusters"`
}

type xmlAtomicType struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Size        string `xml:"size,attr"`
	Description string `xml:"description,attr"`
	Discrete    string `xml:"discrete,attr"`
	Signed      string `xml:"signed,attr"`
	String      string `xml:"string,attr"`
	Long        string `xml:"long,attr"`
	Char        string `xml:"char,attr"`
}

type xmlAtomic struct {
	Types []xmlAtomicType `xml:"type"`
}

type xmlClusterRef struct {
	Code string `xml:"code,attr"`
}

type xmlEnumItem struct {
	Name    string `xml:"name,attr"`
	Value   string `xml:"value,attr"`
	FieldID string `xml:"fieldId,attr"`
}

type xmlEnum struct {
	Name     string          `xml:"name,attr"`
	Type     string          `xml:"type,attr"`
	Clusters []xmlClusterRef `xml:"cluster"`
	Items    []xmlEnumItem   `xml:"item"`
}

type xmlBitmapField struct {
	Name    string `xml:"name,attr"`
	Mask    string `xml:"mask,attr"`
	Type    string `xml:"type,attr"`
	FieldID string `xml:"fieldId,attr"`
}

type xmlBitmap struct {
	Name     string           `xml:"name,attr"`
	Type     string           `xml:"type,attr"`
	Clusters []xmlClusterRef  `xml:"cluster"`
	Fields   []xmlBitmapField `xml:"field"`
}

type xmlStructItem struct {
	FieldID           string `xml:"fieldId,attr"`
	Name              string `xml:"name,attr"`
	Type              string `xml:"type,attr"`
	Length            string `xml:"length,attr"`
	Writable          string `xml:"writable,attr"`
	Array             string `xml:"array,attr"`
	Enum              string `xml:"enum,attr"`
	IsNullable        string `xml:"isNullable,attr"`
	Optional          string `xml:"optional,attr"`
	IsFabricSensitive string `xml:"isFabricSensitive,attr"`
}

type xmlStruct struct {
	Name           string          `xml:"name,attr"`
	IsFabricScoped string          `xml:"isFabricScoped,attr"`
	Clusters       []xmlClusterRef `xml:"cluster"`
	Items          []xmlStructItem `xml:"item"`
}
