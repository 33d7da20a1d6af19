package domain

import "fmt"

// RaidType - закрытое перечисление известных гильдейских рейдов.
type RaidType int

const (
	// RaidUnrecognized возвращается для любого неизвестного названия рейда.
	RaidUnrecognized RaidType = iota
	RaidNestOfTheGrootslangs
	RaidOrphionsNexusOfLight
	RaidCanyonColossus
	RaidNamelessAnomaly
)

// KnownRaidTypes перечисляет все распознаваемые рейды в порядке объявления.
var KnownRaidTypes = []RaidType{
	RaidNestOfTheGrootslangs,
	RaidOrphionsNexusOfLight,
	RaidCanyonColossus,
	RaidNamelessAnomaly,
}

var raidCodes = map[RaidType]string{
	RaidNestOfTheGrootslangs: "NOTG",
	RaidOrphionsNexusOfLight: "NOL",
	RaidCanyonColossus:       "TCC",
	RaidNamelessAnomaly:      "TNA",
}

var raidDisplayNames = map[RaidType]string{
	RaidNestOfTheGrootslangs: "Nest of the Grootslangs",
	RaidOrphionsNexusOfLight: "Orphion's Nexus of Light",
	RaidCanyonColossus:       "The Canyon Colossus",
	RaidNamelessAnomaly:      "The Nameless Anomaly",
}

var raidsByDisplayName = func() map[string]RaidType {
	m := make(map[string]RaidType, len(raidDisplayNames))
	for t, name := range raidDisplayNames {
		m[name] = t
	}
	return m
}()

// ClassifyRaid ищет рейд по точному отображаемому имени (с учетом регистра).
// Для неизвестного имени возвращает RaidUnrecognized и false.
func ClassifyRaid(name string) (RaidType, bool) {
	t, ok := raidsByDisplayName[name]
	if !ok {
		return RaidUnrecognized, false
	}
	return t, true
}

// Known сообщает, является ли значение одним из распознаваемых рейдов.
func (t RaidType) Known() bool {
	_, ok := raidCodes[t]
	return ok
}

// Code возвращает короткий код рейда, например "TCC".
func (t RaidType) Code() string {
	if code, ok := raidCodes[t]; ok {
		return code
	}
	return "UNKNOWN"
}

// DisplayName возвращает название рейда в том виде, в каком оно приходит в чат.
func (t RaidType) DisplayName() string {
	return raidDisplayNames[t]
}

func (t RaidType) String() string {
	return t.Code()
}

// MarshalText сериализует рейд в его короткий код.
func (t RaidType) MarshalText() ([]byte, error) {
	if !t.Known() {
		return nil, fmt.Errorf("cannot marshal unrecognized raid type %d", int(t))
	}
	return []byte(t.Code()), nil
}

// UnmarshalText разбирает короткий код рейда.
func (t *RaidType) UnmarshalText(text []byte) error {
	for rt, code := range raidCodes {
		if code == string(text) {
			*t = rt
			return nil
		}
	}
	return fmt.Errorf("unknown raid code %q", string(text))
}
