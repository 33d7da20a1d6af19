package services

import (
	"regexp"
	"strings"

	"wynn-raid-parser/internal/domain"
)

// aliasHoverRegexp распознает подсказку вида "Nick's real username is Name".
// Связующие слова чувствительны к регистру.
var aliasHoverRegexp = regexp.MustCompile(`^(.+?)'s? real username is (.+)$`)

// formattingCodeRegexp - коды форматирования Minecraft: символ § и следующий за ним символ.
var formattingCodeRegexp = regexp.MustCompile(`§.`)

// StripFormatting удаляет коды форматирования из текста.
func StripFormatting(s string) string {
	if !strings.Contains(s, "§") {
		return s
	}
	return formattingCodeRegexp.ReplaceAllString(s, "")
}

// Flatten склеивает текст узла и всех его потомков в порядке обхода.
func Flatten(node *domain.StyledTextNode) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	flattenInto(&b, node)
	return b.String()
}

func flattenInto(b *strings.Builder, node *domain.StyledTextNode) {
	b.WriteString(node.Text)
	for i := range node.Children {
		flattenInto(b, &node.Children[i])
	}
}

// BuildAliasTable обходит дерево в глубину и регистрирует все найденные псевдонимы.
// Подсказка узла проверяется только после того, как обработаны все его потомки.
func BuildAliasTable(root *domain.StyledTextNode) *AliasTable {
	table := NewAliasTable()
	if root != nil {
		collectAliases(root, table)
	}
	return table
}

func collectAliases(node *domain.StyledTextNode, table *AliasTable) {
	for i := range node.Children {
		collectAliases(&node.Children[i], table)
	}
	if nickname, username, ok := parseAliasHover(node.HoverText()); ok {
		table.Register(nickname, username)
	}
}

func parseAliasHover(hover string) (nickname, username string, ok bool) {
	if hover == "" {
		return "", "", false
	}
	m := aliasHoverRegexp.FindStringSubmatch(strings.TrimSpace(StripFormatting(hover)))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
