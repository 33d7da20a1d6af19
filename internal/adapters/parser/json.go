package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/ports"
)

// maxDepth ограничивает вложенность компонентов, чтобы не уйти в бесконечную рекурсию на мусоре.
const maxDepth = 64

// ErrEmptyComponent возвращается для пустого ввода.
var ErrEmptyComponent = errors.New("empty chat component")

// component - JSON-представление текстового компонента чата.
type component struct {
	Text       *string         `json:"text"`
	Extra      json.RawMessage `json:"extra"`
	HoverEvent *hoverEvent     `json:"hoverEvent"`
	// Начиная с 1.21.5 ключ пишется в snake_case.
	HoverEventSnake *hoverEvent `json:"hover_event"`
}

type hoverEvent struct {
	Action   string          `json:"action"`
	Value    json.RawMessage `json:"value"`
	Contents json.RawMessage `json:"contents"`
}

// JsonParser реализует интерфейс Parser для текстовых компонентов чата в формате JSON.
type JsonParser struct{}

// NewJsonParser создает новый экземпляр JsonParser.
func NewJsonParser() ports.Parser {
	return &JsonParser{}
}

// Parse преобразует JSON компонента в дерево StyledTextNode.
// Поддерживаются строка, массив (первый элемент - корень, остальные - его дочерние узлы) и объект.
func (p *JsonParser) Parse(data []byte) (*domain.StyledTextNode, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyComponent
	}
	node, err := parseComponent(data, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chat component: %w", err)
	}
	return &node, nil
}

func parseComponent(data json.RawMessage, depth int) (domain.StyledTextNode, error) {
	if depth > maxDepth {
		return domain.StyledTextNode{}, fmt.Errorf("component nesting exceeds %d levels", maxDepth)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return domain.StyledTextNode{}, ErrEmptyComponent
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return domain.StyledTextNode{}, fmt.Errorf("failed to unmarshal json: %w", err)
		}
		return domain.StyledTextNode{Text: s}, nil
	case '[':
		children, err := parseList(data, depth)
		if err != nil {
			return domain.StyledTextNode{}, err
		}
		if len(children) == 0 {
			return domain.StyledTextNode{}, nil
		}
		root := children[0]
		root.Children = append(root.Children, children[1:]...)
		return root, nil
	case '{':
		var c component
		if err := json.Unmarshal(data, &c); err != nil {
			return domain.StyledTextNode{}, fmt.Errorf("failed to unmarshal json: %w", err)
		}
		return c.toNode(depth)
	}
	return domain.StyledTextNode{}, fmt.Errorf("unexpected component json %q", truncate(string(data), 32))
}

func parseList(data json.RawMessage, depth int) ([]domain.StyledTextNode, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	nodes := make([]domain.StyledTextNode, 0, len(raw))
	for _, item := range raw {
		n, err := parseComponent(item, depth+1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (c component) toNode(depth int) (domain.StyledTextNode, error) {
	var node domain.StyledTextNode
	if c.Text != nil {
		node.Text = *c.Text
	}

	if len(c.Extra) > 0 && !bytes.Equal(bytes.TrimSpace(c.Extra), []byte("null")) {
		children, err := parseList(c.Extra, depth)
		if err != nil {
			return domain.StyledTextNode{}, err
		}
		node.Children = children
	}

	he := c.HoverEvent
	if he == nil {
		he = c.HoverEventSnake
	}
	if he != nil {
		hover, err := he.toAnnotation(depth)
		if err != nil {
			return domain.StyledTextNode{}, err
		}
		node.Hover = hover
	}
	return node, nil
}

// toAnnotation превращает подсказку в плоский текст. Нетекстовые подсказки (show_item, show_entity)
// сохраняются только с действием.
func (h hoverEvent) toAnnotation(depth int) (*domain.HoverAnnotation, error) {
	annotation := &domain.HoverAnnotation{Action: h.Action}
	if h.Action != "" && h.Action != "show_text" {
		return annotation, nil
	}

	payload := h.Contents
	if len(payload) == 0 {
		payload = h.Value
	}
	if len(payload) == 0 {
		return annotation, nil
	}

	hoverNode, err := parseComponent(payload, depth+1)
	if err != nil {
		return nil, fmt.Errorf("invalid hover text: %w", err)
	}
	annotation.Text = plainText(hoverNode)
	return annotation, nil
}

func plainText(n domain.StyledTextNode) string {
	var b strings.Builder
	var walk func(domain.StyledTextNode)
	walk = func(n domain.StyledTextNode) {
		b.WriteString(n.Text)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
