package schemas

import (
	"encoding/json"
	"fmt"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// NodeType is the JSON type of a schema node.
type NodeType string

// Node types used by the unit schemas.
const (
	TypeString NodeType = "string"
	TypeArray  NodeType = "array"
	TypeObject NodeType = "object"
)

// hexColorPattern accepts #RGB and #RRGGBB colors.
const hexColorPattern = `^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`

// Node describes the expected shape of one value.
type Node struct {
	Type      NodeType
	MaxLength int
	Pattern   string

	MinItems int
	MaxItems int
	Items    *Node

	Properties []Property
}

// Property is a named member of an object node.
type Property struct {
	Name     string
	Required bool
	Node     *Node
}

// Schema is the fixed shape every record of a unit type must satisfy.
type Schema struct {
	Unit types.UnitType
	Root *Node
}

func str(maxLen int) *Node {
	return &Node{Type: TypeString, MaxLength: maxLen}
}

func color() *Node {
	return &Node{Type: TypeString, Pattern: hexColorPattern}
}

func list(minItems, maxItems int, items *Node) *Node {
	return &Node{Type: TypeArray, MinItems: minItems, MaxItems: maxItems, Items: items}
}

func object(props ...Property) *Node {
	return &Node{Type: TypeObject, Properties: props}
}

func req(name string, n *Node) Property {
	return Property{Name: name, Required: true, Node: n}
}

func opt(name string, n *Node) Property {
	return Property{Name: name, Node: n}
}

var table = map[types.UnitType]*Node{
	types.UnitFoundation: object(
		req("siteName", str(60)),
		req("tagline", str(120)),
		req("description", str(500)),
		req("theme", object(
			req("colors", object(
				req("primary", color()),
				req("secondary", color()),
				req("accent", color()),
			)),
			req("fonts", object(
				req("heading", str(60)),
				req("body", str(60)),
			)),
		)),
		req("seo", object(
			req("title", str(60)),
			req("description", str(160)),
			opt("keywords", list(0, 10, str(40))),
		)),
		req("hero", object(
			req("headline", str(80)),
			opt("subheadline", str(200)),
			req("ctaText", str(30)),
		)),
	),
	types.UnitAbout: object(
		req("title", str(80)),
		req("content", list(1, 5, str(1000))),
		opt("mission", str(300)),
		opt("vision", str(300)),
	),
	types.UnitValues: object(
		req("title", str(80)),
		req("items", list(2, 8, object(
			req("title", str(60)),
			req("description", str(300)),
		))),
	),
	types.UnitFeatures: object(
		req("title", str(80)),
		opt("subtitle", str(200)),
		req("items", list(3, 8, object(
			req("title", str(60)),
			req("description", str(300)),
			opt("icon", str(40)),
		))),
	),
	types.UnitServices: object(
		req("title", str(80)),
		req("items", list(1, 10, object(
			req("name", str(80)),
			req("description", str(400)),
			opt("price", str(40)),
		))),
	),
	types.UnitTeam: object(
		req("title", str(80)),
		req("members", list(1, 12, object(
			req("name", str(80)),
			req("role", str(80)),
			opt("bio", str(400)),
		))),
	),
	types.UnitTestimonials: object(
		req("title", str(80)),
		req("items", list(2, 6, object(
			req("quote", str(400)),
			req("author", str(80)),
			opt("location", str(80)),
		))),
	),
	types.UnitContact: object(
		req("title", str(80)),
		req("email", str(120)),
		opt("phone", str(40)),
		opt("address", str(300)),
		opt("hours", list(0, 7, str(80))),
		opt("description", str(300)),
	),
}

// For returns the schema of a unit type.
func For(unit types.UnitType) (*Schema, error) {
	root, ok := table[unit]
	if !ok {
		return nil, &UnknownUnitError{Unit: unit}
	}
	return &Schema{Unit: unit, Root: root}, nil
}

// Lookup finds the node at a dotted path such as "seo.description" or
// "items[].title". It returns nil when the path does not exist.
func (s *Schema) Lookup(path string) *Node {
	return lookup(s.Root, path)
}

// JSONSchema renders the schema as a draft-07 JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	doc := render(s.Root)
	doc["$schema"] = "http://json-schema.org/draft-07/schema#"
	doc["title"] = s.Unit.String()
	return doc
}

// JSONSchemaText renders the schema as indented JSON. Output is stable
// because encoding/json sorts map keys.
func (s *Schema) JSONSchemaText() string {
	data, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		// Only maps, slices, strings and ints are rendered.
		panic(fmt.Sprintf("render schema %s: %v", s.Unit, err))
	}
	return string(data)
}

func render(n *Node) map[string]any {
	out := map[string]any{"type": string(n.Type)}
	switch n.Type {
	case TypeString:
		if n.MaxLength > 0 {
			out["maxLength"] = n.MaxLength
		}
		if n.Pattern != "" {
			out["pattern"] = n.Pattern
		}
	case TypeArray:
		if n.MinItems > 0 {
			out["minItems"] = n.MinItems
		}
		if n.MaxItems > 0 {
			out["maxItems"] = n.MaxItems
		}
		if n.Items != nil {
			out["items"] = render(n.Items)
		}
	case TypeObject:
		props := make(map[string]any, len(n.Properties))
		var required []string
		for _, p := range n.Properties {
			props[p.Name] = render(p.Node)
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out["properties"] = props
		if len(required) > 0 {
			out["required"] = required
		}
	}
	return out
}

func lookup(n *Node, path string) *Node {
	if path == "" {
		return n
	}
	head, rest := splitPath(path)
	if head == "[]" {
		if n.Type != TypeArray || n.Items == nil {
			return nil
		}
		return lookup(n.Items, rest)
	}
	if n.Type != TypeObject {
		return nil
	}
	for _, p := range n.Properties {
		if p.Name == head {
			return lookup(p.Node, rest)
		}
	}
	return nil
}

// splitPath splits "items[].title" into "items" and "[].title", and
// "[].title" into "[]" and "title".
func splitPath(path string) (head, rest string) {
	if len(path) >= 2 && path[:2] == "[]" {
		rest = path[2:]
		if len(rest) > 0 && rest[0] == '.' {
			rest = rest[1:]
		}
		return "[]", rest
	}
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '.':
			return path[:i], path[i+1:]
		case '[':
			return path[:i], path[i:]
		}
	}
	return path, ""
}
