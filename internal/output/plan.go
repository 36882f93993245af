package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hurou927/db-join-path/internal/joins"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatSQL  = "sql"
)

// Writer renders join plans.
type Writer struct {
	w      io.Writer
	format string
}

// NewWriter creates a new plan writer for the given format.
func NewWriter(w io.Writer, format string) (*Writer, error) {
	switch format {
	case FormatText, FormatJSON, FormatYAML, FormatSQL:
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml, sql)", format)
	}
	return &Writer{w: w, format: format}, nil
}

// WritePlan writes p. Text and SQL follow execution order; JSON and YAML keep
// discovery order.
func (pw *Writer) WritePlan(p *joins.Plan) error {
	switch pw.format {
	case FormatJSON:
		return pw.writeJSON(p)
	case FormatYAML:
		return pw.writeYAML(p)
	case FormatSQL:
		return pw.writeSQL(p)
	default:
		return pw.writeText(p)
	}
}

func (pw *Writer) writeText(p *joins.Plan) error {
	ordered, err := p.ExecutionOrder()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(pw.w, "from %s (%d joins)\n", p.From, len(ordered)); err != nil {
		return err
	}
	for i, j := range ordered {
		if _, err := fmt.Fprintf(pw.w, "  %d. %s on %s\n", i+1, j.Resource, strings.Join(j.On(), ", ")); err != nil {
			return err
		}
	}
	return nil
}

func (pw *Writer) writeSQL(p *joins.Plan) error {
	ordered, err := p.ExecutionOrder()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(pw.w, "FROM %s\n", p.From); err != nil {
		return err
	}
	for _, j := range ordered {
		if _, err := fmt.Fprintf(pw.w, "JOIN %s ON %s\n", j.Resource, strings.Join(j.On(), " AND ")); err != nil {
			return err
		}
	}
	return nil
}

type jsonJoin struct {
	Resource string   `json:"resource"`
	On       []string `json:"on"`
}

type jsonPlan struct {
	From  string     `json:"from"`
	Joins []jsonJoin `json:"joins"`
}

func (pw *Writer) writeJSON(p *joins.Plan) error {
	out := jsonPlan{From: p.From, Joins: []jsonJoin{}}
	for _, j := range p.Joins() {
		out.Joins = append(out.Joins, jsonJoin{Resource: j.Resource, On: j.On()})
	}
	enc := json.NewEncoder(pw.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeYAML emits joins as a mapping keyed by resource name, built from nodes
// so that discovery order survives.
func (pw *Writer) writeYAML(p *joins.Plan) error {
	joinsNode := &yaml.Node{Kind: yaml.MappingNode}
	for _, j := range p.Joins() {
		on := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range j.On() {
			on.Content = append(on.Content, scalar(c))
		}
		entry := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("on"), on}}
		joinsNode.Content = append(joinsNode.Content, scalar(j.Resource), entry)
	}
	if len(joinsNode.Content) == 0 {
		joinsNode.Style = yaml.FlowStyle
	}

	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalar("from"), scalar(p.From),
		scalar("joins"), joinsNode,
	}}

	enc := yaml.NewEncoder(pw.w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// WriteField writes a single field name followed by a newline.
func (pw *Writer) WriteField(name string) error {
	switch pw.format {
	case FormatJSON:
		return json.NewEncoder(pw.w).Encode(map[string]string{"field": name})
	case FormatYAML:
		enc := yaml.NewEncoder(pw.w)
		if err := enc.Encode(map[string]string{"field": name}); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(pw.w, name)
		return err
	}
}
