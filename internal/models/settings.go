package models

// PathSettings is implemented by LineSettings and AreaSettings.
type PathSettings interface {
	pathSettings()
}

// LineSettings describes a line feature. Subtypes and SegmentSettings are keyed
// by the index of the segment that ends the annotated edge.
type LineSettings struct {
	Type            string         `json:"type" yaml:"type" msgpack:"type"`
	ID              string         `json:"id,omitempty" yaml:"id,omitempty" msgpack:"id,omitempty"`
	Size            float64        `json:"size,omitempty" yaml:"size,omitempty" msgpack:"size,omitempty"` // 0 means unset
	Subtypes        map[int]string `json:"subtypes,omitempty" yaml:"subtypes,omitempty" msgpack:"subtypes,omitempty"`
	SegmentSettings map[int]string `json:"segmentSettings,omitempty" yaml:"segment_settings,omitempty" msgpack:"segmentSettings,omitempty"`
}

// PointSettings describes a point symbol.
type PointSettings struct {
	Type string `json:"type" yaml:"type" msgpack:"type"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
}

// AreaSettings describes an area. Every area is outlined by a border line.
type AreaSettings struct {
	Type         string       `json:"type" yaml:"type" msgpack:"type"`
	Invisible    bool         `json:"invisible,omitempty" yaml:"invisible,omitempty" msgpack:"invisible,omitempty"`
	LineSettings LineSettings `json:"lineSettings" yaml:"line" msgpack:"lineSettings"`
}

// ScrapSettings holds the options written on a scrap header.
type ScrapSettings struct {
	Scale        string  `json:"scale,omitempty" yaml:"scale,omitempty" msgpack:"scale,omitempty"`
	Projection   string  `json:"projection,omitempty" yaml:"projection,omitempty" msgpack:"projection,omitempty"`
	Author       string  `json:"author,omitempty" yaml:"author,omitempty" msgpack:"author,omitempty"`
	Copyright    string  `json:"copyright,omitempty" yaml:"copyright,omitempty" msgpack:"copyright,omitempty"`
	StationNames string  `json:"stationNames,omitempty" yaml:"station_names,omitempty" msgpack:"stationNames,omitempty"`
	Map          FlagMap `json:"map,omitempty" yaml:"map,omitempty" msgpack:"map,omitempty"`
}

func (LineSettings) pathSettings() {}
func (AreaSettings) pathSettings() {}
