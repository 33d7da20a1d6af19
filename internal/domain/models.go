package domain

import "github.com/google/uuid"

// HoverAnnotation представляет всплывающую подсказку, прикрепленную к фрагменту чата.
type HoverAnnotation struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

// StyledTextNode представляет один фрагмент строки чата.
// Дочерние узлы (siblings) идут после текста самого фрагмента.
type StyledTextNode struct {
	Text     string           `json:"text"`
	Hover    *HoverAnnotation `json:"hover,omitempty"`
	Children []StyledTextNode `json:"children,omitempty"`
}

// HoverText возвращает текст подсказки или пустую строку, если ее нет.
func (n StyledTextNode) HoverText() string {
	if n.Hover == nil {
		return ""
	}
	return n.Hover.Text
}

// RaidCompletionCapture содержит "сырые" именованные группы из строки о завершении рейда.
type RaidCompletionCapture struct {
	Raid     string
	Players  [4]string
	Aspects  string
	Emeralds string
	XP       string
	// SR пуст, если поле отсутствовало в строке.
	SR    string
	HasSR bool
}

// GuildRaid - итоговое событие о завершенном гильдейском рейде.
// Значение передается копией, поэтому после создания его нельзя изменить извне.
type GuildRaid struct {
	Type       RaidType  `json:"type"`
	Players    [4]string `json:"players"`
	ReporterID uuid.UUID `json:"reporterID"`
	Aspects    int64     `json:"aspects"`
	Emeralds   int64     `json:"emeralds"`
	XP         int64     `json:"xp"`
	SR         int       `json:"sr"`
}
