package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the serialization used for a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromLocation picks a format from the location's extension. Anything
// other than .yaml/.yml is treated as JSON.
func FormatFromLocation(location string) Format {
	trimmed := location
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	switch strings.ToLower(path.Ext(trimmed)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a JSON document.
func Decode(data []byte) (Document, error) {
	return DecodeFormat(data, FormatJSON)
}

// DecodeFormat parses a document in the given format. YAML input is converted
// to JSON first so both formats share one decoding path.
func DecodeFormat(data []byte, format Format) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, &DecodeError{Err: errors.New("document is empty")}
	}
	switch format {
	case FormatJSON, "":
		return decodeDocument(data)
	case FormatYAML:
		converted, err := yamlToJSON(data)
		if err != nil {
			return Document{}, &DecodeError{Err: err}
		}
		return decodeDocument(converted)
	default:
		return Document{}, &DecodeError{Err: fmt.Errorf("unsupported format %q", format)}
	}
}

// Encode writes the document as two-space indented JSON.
func Encode(doc Document) ([]byte, error) {
	return EncodeFormat(doc, FormatJSON)
}

// EncodeFormat writes the document in the given format.
func EncodeFormat(doc Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("profile: encode: %w", err)
	}

	switch format {
	case FormatJSON, "":
		return buf.Bytes(), nil
	case FormatYAML:
		out, err := jsonToYAML(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("profile: encode yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("profile: encode: unsupported format %q", format)
	}
}

// yamlToJSON converts through yaml.Node rather than map[string]any so mapping
// order survives inside opaque blobs.
func yamlToJSON(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	var buf bytes.Buffer
	if err := writeNodeJSON(&buf, &node); err != nil {
		return nil, fmt.Errorf("yaml is not representable as json: %w", err)
	}
	return buf.Bytes(), nil
}

func writeNodeJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNodeJSON(buf, node.Content[0])
	case yaml.AliasNode:
		return writeNodeJSON(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			encoded, err := marshalNoEscape(key.Value)
			if err != nil {
				return err
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			if err := writeNodeJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		if isPlainNumber(node) {
			buf.WriteString(node.Value)
			return nil
		}
		var value any
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		encoded, err := marshalNoEscape(value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		buf.Write(encoded)
		return nil
	default:
		return fmt.Errorf("line %d: unsupported yaml node", node.Line)
	}
}

// isPlainNumber reports an unquoted scalar spelled as a JSON number. Those are
// copied literally so 1.50 stays 1.50 and out-of-range values still pass.
func isPlainNumber(node *yaml.Node) bool {
	if node.Style&(yaml.TaggedStyle|yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		return false
	}
	if node.Tag != "" && node.Tag != "!!int" && node.Tag != "!!float" && node.Tag != "!!str" {
		return false
	}
	v := node.Value
	if v == "" || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
		return false
	}
	var num json.Number
	return json.Unmarshal([]byte(v), &num) == nil
}

// jsonToYAML re-reads the JSON as a yaml.Node so the key order survives, then
// switches flow collections to block style.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(node *yaml.Node) {
	if node.Kind == yaml.MappingNode || node.Kind == yaml.SequenceNode {
		node.Style &^= yaml.FlowStyle
	}
	for _, child := range node.Content {
		blockStyle(child)
	}
}
