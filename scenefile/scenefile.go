// Package scenefile decodes the non-glTF scene-description JSON format
// referenced in §6: a flat registry of meshes/textures plus a list of
// placed entities. It mirrors the input JSON as typed Go values; resolving
// ref_mesh/ref_texture against the registers and driving any downstream
// coordinate transform is an external collaborator's job, not this
// package's (§6).
//
// Reference: scottlawsonbc-raytrace/gltf/gltf.go's approach of a direct,
// mostly-exported JSON struct mirror with minimal custom marshaling.
package scenefile

import "encoding/json"

// Scene is the root of a scene-description document.
type Scene struct {
	MeshRegister    map[string]string `json:"mesh_register,omitempty"`
	TextureRegister map[string]string `json:"texture_register,omitempty"`
	Entities        []Entity          `json:"entity_list,omitempty"`
}

// EntityKind distinguishes the three entity shapes §6 defines.
type EntityKind string

const (
	EntityGeneric    EntityKind = "generic"
	EntityMarkerline EntityKind = "markerline"
	EntityText       EntityKind = "text"
)

// Entity is one placed object in a Scene. Kind selects which of Generic,
// Markerline, or Text is populated; an empty Kind defaults to Generic
// per §6 ("generic (default)").
type Entity struct {
	Kind EntityKind

	Generic    *GenericEntity
	Markerline *MarkerlineEntity
	Text       *TextEntity
}

// GenericEntity places a registered mesh with a transform and a bag of
// shader parameters.
type GenericEntity struct {
	Transform  Transform          `json:"transform"`
	RefMesh    string             `json:"ref_mesh"`
	Properties map[string]Param   `json:"properties,omitempty"`
}

// MarkerlineEntity draws a polyline.
type MarkerlineEntity struct {
	Points    []Point3 `json:"points"`
	LineWidth float64  `json:"line_width"`
	Color     [3]float64 `json:"color"`
	Opacity   float64  `json:"opacity"`
}

// TextEntity places one or more text labels sharing a font style.
type TextEntity struct {
	Entries    []TextEntry `json:"entries"`
	FontStyle  string      `json:"font_style,omitempty"`
	FontWeight string      `json:"font_weight,omitempty"`
	FontSize   float64     `json:"font_size,omitempty"`
	FontFamily string      `json:"font_family,omitempty"`
	Color      [3]float64  `json:"color"`
}

// TextEntry is one label within a TextEntity.
type TextEntry struct {
	Text       string     `json:"text"`
	Position   Point3     `json:"position"`
	FontStyle  string     `json:"font_style,omitempty"`
	FontWeight string     `json:"font_weight,omitempty"`
	FontSize   *float64   `json:"font_size,omitempty"`
	FontFamily string     `json:"font_family,omitempty"`
	Color      *[3]float64 `json:"color,omitempty"`
}

// Point3 is a position expressed either as Cartesian xyz or as
// longitude/latitude/height, per §6's "points: cartesian|cartographic".
type Point3 struct {
	Cartesian    *[3]float64   `json:"cartesian,omitempty"`
	Cartographic *Cartographic `json:"cartographic,omitempty"`
}

// Cartographic is a longitude/latitude/height geodetic coordinate.
type Cartographic struct {
	Lon    float64
	Lat    float64
	Height float64
}

func (c Cartographic) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{c.Lon, c.Lat, c.Height})
}

func (c *Cartographic) UnmarshalJSON(data []byte) error {
	var a [3]float64
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	c.Lon, c.Lat, c.Height = a[0], a[1], a[2]
	return nil
}

// Transform is either an explicit column-major 4x4 matrix or a
// cartographic placement, per §6.
type Transform struct {
	Matrix       *[16]float64  `json:"matrix,omitempty"`
	Cartographic *Cartographic `json:"cartographic,omitempty"`
}

// ParamKind distinguishes a Param's payload.
type ParamKind int

const (
	ParamFloat ParamKind = iota
	ParamVec3
	ParamTexture
)

// Param is one shader-parameter value: a float, a vec3, or a reference
// into the texture register (§6's "PARAM is float, vec3, or
// {type:\"tex-2d\", ref_texture: id}").
type Param struct {
	Kind       ParamKind
	Float      float64
	Vec3       [3]float64
	RefTexture string
}

type paramTextureJSON struct {
	Type       string `json:"type"`
	RefTexture string `json:"ref_texture"`
}

func (p Param) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ParamFloat:
		return json.Marshal(p.Float)
	case ParamVec3:
		return json.Marshal(p.Vec3)
	case ParamTexture:
		return json.Marshal(paramTextureJSON{Type: "tex-2d", RefTexture: p.RefTexture})
	default:
		return json.Marshal(nil)
	}
}

func (p *Param) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*p = Param{Kind: ParamFloat, Float: f}
		return nil
	}

	var v [3]float64
	if err := json.Unmarshal(data, &v); err == nil {
		*p = Param{Kind: ParamVec3, Vec3: v}
		return nil
	}

	var tex paramTextureJSON
	if err := json.Unmarshal(data, &tex); err == nil && tex.Type == "tex-2d" {
		*p = Param{Kind: ParamTexture, RefTexture: tex.RefTexture}
		return nil
	}

	return &json.UnmarshalTypeError{Value: string(data), Type: nil}
}

type entityEnvelope struct {
	Kind EntityKind `json:"kind,omitempty"`

	Transform  *Transform       `json:"transform,omitempty"`
	RefMesh    string           `json:"ref_mesh,omitempty"`
	Properties map[string]Param `json:"properties,omitempty"`

	Points    []Point3    `json:"points,omitempty"`
	LineWidth float64     `json:"line_width,omitempty"`
	Opacity   float64     `json:"opacity,omitempty"`

	Entries    []TextEntry `json:"entries,omitempty"`
	FontStyle  string      `json:"font_style,omitempty"`
	FontWeight string      `json:"font_weight,omitempty"`
	FontSize   float64     `json:"font_size,omitempty"`
	FontFamily string      `json:"font_family,omitempty"`

	Color [3]float64 `json:"color,omitempty"`
}

// UnmarshalJSON dispatches on an explicit "kind" field, defaulting to
// generic when absent.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var env entityEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	kind := env.Kind
	if kind == "" {
		kind = EntityGeneric
	}
	e.Kind = kind

	switch kind {
	case EntityMarkerline:
		e.Markerline = &MarkerlineEntity{
			Points:    env.Points,
			LineWidth: env.LineWidth,
			Color:     env.Color,
			Opacity:   env.Opacity,
		}
	case EntityText:
		fontSize := env.FontSize
		if fontSize == 0 {
			fontSize = 16
		}
		fontFamily := env.FontFamily
		if fontFamily == "" {
			fontFamily = "sans-serif"
		}
		e.Text = &TextEntity{
			Entries:    env.Entries,
			FontStyle:  env.FontStyle,
			FontWeight: env.FontWeight,
			FontSize:   fontSize,
			FontFamily: fontFamily,
			Color:      env.Color,
		}
	default:
		transform := Transform{}
		if env.Transform != nil {
			transform = *env.Transform
		}
		e.Generic = &GenericEntity{
			Transform:  transform,
			RefMesh:    env.RefMesh,
			Properties: env.Properties,
		}
	}
	return nil
}

// MarshalJSON re-flattens whichever entity payload is populated back into
// the envelope shape, tagging it with an explicit "kind".
func (e Entity) MarshalJSON() ([]byte, error) {
	env := entityEnvelope{Kind: e.Kind}
	switch {
	case e.Markerline != nil:
		env.Kind = EntityMarkerline
		env.Points = e.Markerline.Points
		env.LineWidth = e.Markerline.LineWidth
		env.Color = e.Markerline.Color
		env.Opacity = e.Markerline.Opacity
	case e.Text != nil:
		env.Kind = EntityText
		env.Entries = e.Text.Entries
		env.FontStyle = e.Text.FontStyle
		env.FontWeight = e.Text.FontWeight
		env.FontSize = e.Text.FontSize
		env.FontFamily = e.Text.FontFamily
		env.Color = e.Text.Color
	case e.Generic != nil:
		env.Kind = EntityGeneric
		env.Transform = &e.Generic.Transform
		env.RefMesh = e.Generic.RefMesh
		env.Properties = e.Generic.Properties
	}
	return json.Marshal(env)
}

// Parse decodes a scene-description document from raw JSON bytes.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
