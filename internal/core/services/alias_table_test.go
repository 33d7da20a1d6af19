package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wynn-raid-parser/internal/domain"
)

func TestAliasTable(t *testing.T) {
	t.Run("Consume на пустой таблице возвращает ник", func(t *testing.T) {
		table := NewAliasTable()
		assert.Equal(t, "Nicky", table.Consume("Nicky"))
		assert.Equal(t, "", table.Consume(""))
		assert.Equal(t, 0, table.Len())
	})

	t.Run("Consume извлекает имена в порядке LIFO", func(t *testing.T) {
		table := NewAliasTable()
		table.Register("Nicky", "A")
		table.Register("Nicky", "B")
		assert.Equal(t, 2, table.Len())

		assert.Equal(t, "B", table.Consume("Nicky"))
		assert.Equal(t, "A", table.Consume("Nicky"))
		// Стек исчерпан - возвращается сам ник.
		assert.Equal(t, "Nicky", table.Consume("Nicky"))
		assert.Equal(t, 0, table.Len())
	})

	t.Run("разные ники не влияют друг на друга", func(t *testing.T) {
		table := NewAliasTable()
		table.Register("One", "RealOne")
		table.Register("Two", "RealTwo")

		assert.Equal(t, "RealTwo", table.Consume("Two"))
		assert.Equal(t, "Three", table.Consume("Three"))
		assert.Equal(t, "RealOne", table.Consume("One"))
	})
}

func hover(text string) *domain.HoverAnnotation {
	return &domain.HoverAnnotation{Action: "show_text", Text: text}
}

func TestBuildAliasTable(t *testing.T) {
	t.Run("дерево без подсказок дает пустую таблицу", func(t *testing.T) {
		root := &domain.StyledTextNode{
			Text:     "Hello ",
			Children: []domain.StyledTextNode{{Text: "world"}},
		}
		assert.Equal(t, 0, BuildAliasTable(root).Len())
		assert.Equal(t, 0, BuildAliasTable(nil).Len())
	})

	t.Run("посторонние подсказки игнорируются", func(t *testing.T) {
		root := &domain.StyledTextNode{
			Children: []domain.StyledTextNode{
				{Text: "Bob", Hover: hover("Click to message Bob")},
				{Text: "Eve", Hover: hover("Eve's REAL USERNAME IS X")},
			},
		}
		assert.Equal(t, 0, BuildAliasTable(root).Len())
	})

	t.Run("подсказка с кодами форматирования", func(t *testing.T) {
		root := &domain.StyledTextNode{
			Children: []domain.StyledTextNode{
				{Text: "Nicky", Hover: hover("§fNicky§7's real username is §fRealPlayer99")},
			},
		}
		table := BuildAliasTable(root)
		assert.Equal(t, "RealPlayer99", table.Consume("Nicky"))
	})

	t.Run("притяжательная форма без s", func(t *testing.T) {
		root := &domain.StyledTextNode{Hover: hover("James' real username is JRealName")}
		table := BuildAliasTable(root)
		assert.Equal(t, "JRealName", table.Consume("James"))
	})

	t.Run("потомки регистрируются раньше родителя", func(t *testing.T) {
		// Родитель и вложенный потомок раскрывают один и тот же ник.
		// Потомок регистрируется первым, поэтому Consume сначала вернет имя родителя.
		root := &domain.StyledTextNode{
			Children: []domain.StyledTextNode{
				{
					Text:  "Nicky",
					Hover: hover("Nicky's real username is Outer"),
					Children: []domain.StyledTextNode{
						{Text: "", Hover: hover("Nicky's real username is Inner")},
					},
				},
			},
		}
		table := BuildAliasTable(root)
		assert.Equal(t, "Outer", table.Consume("Nicky"))
		assert.Equal(t, "Inner", table.Consume("Nicky"))
	})

	t.Run("братья регистрируются слева направо", func(t *testing.T) {
		root := &domain.StyledTextNode{
			Children: []domain.StyledTextNode{
				{Text: "Nicky", Hover: hover("Nicky's real username is First")},
				{Text: ", "},
				{Text: "Nicky", Hover: hover("Nicky's real username is Second")},
			},
		}
		table := BuildAliasTable(root)
		assert.Equal(t, "Second", table.Consume("Nicky"))
		assert.Equal(t, "First", table.Consume("Nicky"))
	})

	t.Run("обход не изменяет дерево", func(t *testing.T) {
		root := &domain.StyledTextNode{
			Children: []domain.StyledTextNode{
				{Text: "Nicky", Hover: hover("Nicky's real username is RealPlayer99")},
			},
		}
		BuildAliasTable(root)
		assert.Equal(t, "Nicky's real username is RealPlayer99", root.Children[0].HoverText())
		assert.Equal(t, "Nicky", root.Children[0].Text)
	})
}

func TestFlattenAndStripFormatting(t *testing.T) {
	root := &domain.StyledTextNode{
		Text: "§bA",
		Children: []domain.StyledTextNode{
			{Text: "B", Children: []domain.StyledTextNode{{Text: "C"}}},
			{Text: "§3D"},
		},
	}
	assert.Equal(t, "§bABC§3D", Flatten(root))
	assert.Equal(t, "ABCD", StripFormatting(Flatten(root)))
	assert.Equal(t, "", Flatten(nil))
	assert.Equal(t, "plain", StripFormatting("plain"))
}
