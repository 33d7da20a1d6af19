package services

// AliasTable сопоставляет отображаемый ник со стеком настоящих имен игроков.
// Живет в пределах обработки одной строки чата.
type AliasTable struct {
	aliases map[string][]string
}

// NewAliasTable создает пустую таблицу.
func NewAliasTable() *AliasTable {
	return &AliasTable{aliases: make(map[string][]string)}
}

// Register добавляет username в конец последовательности для nickname.
func (t *AliasTable) Register(nickname, username string) {
	t.aliases[nickname] = append(t.aliases[nickname], username)
}

// Consume извлекает последнее зарегистрированное имя для nickname.
// Если имен не осталось, возвращает сам nickname.
func (t *AliasTable) Consume(nickname string) string {
	names := t.aliases[nickname]
	if len(names) == 0 {
		return nickname
	}
	last := names[len(names)-1]
	if len(names) == 1 {
		delete(t.aliases, nickname)
	} else {
		t.aliases[nickname] = names[:len(names)-1]
	}
	return last
}

// Len возвращает количество еще не извлеченных имен.
func (t *AliasTable) Len() int {
	n := 0
	for _, names := range t.aliases {
		n += len(names)
	}
	return n
}
