package styled

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	yaml "gopkg.in/yaml.v3"
)

// ErrDecode is returned for malformed styled tree documents.
var ErrDecode = errors.New("malformed styled tree")

// Decode reads a styled tree from YAML:
//
//	kind: document
//	children:
//	  - kind: p
//	    style: {margin: [8, 0], break_inside: avoid}
//	    children:
//	      - kind: "#text"
//	        text: Hello
//
// Unknown keys are rejected. Kinds outside the known set are accepted, the
// layout engine decides what to do with them.
func Decode(r io.Reader) (*Node, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var root Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &root, nil
}

// DecodeFile reads a styled tree from the file at path.
func DecodeFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open styled tree: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

type nodeDoc struct {
	Kind     Kind    `yaml:"kind"`
	Style    Style   `yaml:"style"`
	Text     string  `yaml:"text"`
	Children []*Node `yaml:"children"`
}

// UnmarshalYAML implements yaml.Unmarshaler. Style values not mentioned in
// the document keep their defaults.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value, "kind", "style", "text", "children"); err != nil {
		return err
	}
	doc := nodeDoc{Style: DefaultStyle()}
	if err := value.Decode(&doc); err != nil {
		return err
	}
	if doc.Kind == "" {
		return fmt.Errorf("%w: line %d: node without kind", ErrDecode, value.Line)
	}
	*n = Node{Kind: doc.Kind, Style: doc.Style, Text: doc.Text, Children: doc.Children}
	return nil
}

type styleDoc struct {
	Display        Display        `yaml:"display"`
	Margin         Edges          `yaml:"margin"`
	Padding        Edges          `yaml:"padding"`
	Border         Edges          `yaml:"border"`
	Width          float64        `yaml:"width"`
	Height         float64        `yaml:"height"`
	FontSize       float64        `yaml:"font_size"`
	LineHeight     float64        `yaml:"line_height"`
	BreakInside    BreakInside    `yaml:"break_inside"`
	FlexDirection  FlexDirection  `yaml:"flex_direction"`
	FlexGrow       float64        `yaml:"flex_grow"`
	FlexShrink     float64        `yaml:"flex_shrink"`
	BorderCollapse BorderCollapse `yaml:"border_collapse"`
	BorderSpacing  float64        `yaml:"border_spacing"`
}

// UnmarshalYAML implements yaml.Unmarshaler, decoding over the current value.
func (s *Style) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value, "display", "margin", "padding", "border", "width", "height",
		"font_size", "line_height", "break_inside", "flex_direction", "flex_grow", "flex_shrink",
		"border_collapse", "border_spacing"); err != nil {
		return err
	}
	doc := styleDoc(*s)
	if err := value.Decode(&doc); err != nil {
		return err
	}
	if doc.Padding.Negative() || doc.Border.Negative() {
		return fmt.Errorf("%w: line %d: negative padding or border", ErrDecode, value.Line)
	}
	*s = Style(doc)
	return nil
}

// UnmarshalYAML accepts a scalar or a CSS shorthand list of 1 to 4 values.
func (e *Edges) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*e = Uniform(v)
		return nil
	case yaml.SequenceNode:
		var vals []float64
		if err := value.Decode(&vals); err != nil {
			return err
		}
		switch len(vals) {
		case 1:
			*e = Uniform(vals[0])
		case 2:
			*e = Edges{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			*e = Edges{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
		case 4:
			*e = Edges{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		default:
			return fmt.Errorf("%w: line %d: edges take 1 to 4 values, got %d", ErrDecode, value.Line, len(vals))
		}
		return nil
	case yaml.MappingNode:
		if err := checkKeys(value, "top", "right", "bottom", "left"); err != nil {
			return err
		}
		var m struct {
			Top    float64 `yaml:"top"`
			Right  float64 `yaml:"right"`
			Bottom float64 `yaml:"bottom"`
			Left   float64 `yaml:"left"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		*e = Edges{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
		return nil
	}
	return fmt.Errorf("%w: line %d: unexpected edges value", ErrDecode, value.Line)
}

// checkKeys rejects mapping keys outside allowed. yaml.Node.Decode does not
// inherit KnownFields from the outer decoder, so custom unmarshalers check
// on their own.
func checkKeys(value *yaml.Node, allowed ...string) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: mapping expected", ErrDecode, value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("%w: line %d: unknown field %q", ErrDecode, value.Content[i].Line, key)
		}
	}
	return nil
}
