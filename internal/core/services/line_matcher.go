package services

import (
	"regexp"

	"wynn-raid-parser/internal/domain"
)

// raidCompletionRegexp описывает строку о завершении гильдейского рейда целиком.
var raidCompletionRegexp = regexp.MustCompile(
	`^(?P<player1>.+?), (?P<player2>.+?), (?P<player3>.+?), and (?P<player4>.+?) have defeated (?P<raid>.+?)! ` +
		`Total aspects collected: (?P<aspects>[0-9][0-9.,]*[kKmM]?), ` +
		`emeralds looted: (?P<emeralds>[0-9][0-9.,]*[kKmM]?), ` +
		`XP gained: (?P<xp>[0-9][0-9.,]*[kKmM]?)` +
		`(?:, SR: (?P<sr>[0-9]+))?$`,
)

var (
	groupPlayer1  = raidCompletionRegexp.SubexpIndex("player1")
	groupPlayer2  = raidCompletionRegexp.SubexpIndex("player2")
	groupPlayer3  = raidCompletionRegexp.SubexpIndex("player3")
	groupPlayer4  = raidCompletionRegexp.SubexpIndex("player4")
	groupRaid     = raidCompletionRegexp.SubexpIndex("raid")
	groupAspects  = raidCompletionRegexp.SubexpIndex("aspects")
	groupEmeralds = raidCompletionRegexp.SubexpIndex("emeralds")
	groupXP       = raidCompletionRegexp.SubexpIndex("xp")
	groupSR       = raidCompletionRegexp.SubexpIndex("sr")
)

// MatchRaidLine сопоставляет плоский текст строки с шаблоном завершения рейда.
// Возвращает false, если строка не совпала целиком.
func MatchRaidLine(plain string) (domain.RaidCompletionCapture, bool) {
	idx := raidCompletionRegexp.FindStringSubmatchIndex(plain)
	if idx == nil {
		return domain.RaidCompletionCapture{}, false
	}

	group := func(i int) string {
		if idx[2*i] < 0 {
			return ""
		}
		return plain[idx[2*i]:idx[2*i+1]]
	}

	return domain.RaidCompletionCapture{
		Raid:     group(groupRaid),
		Players:  [4]string{group(groupPlayer1), group(groupPlayer2), group(groupPlayer3), group(groupPlayer4)},
		Aspects:  group(groupAspects),
		Emeralds: group(groupEmeralds),
		XP:       group(groupXP),
		SR:       group(groupSR),
		HasSR:    idx[2*groupSR] >= 0,
	}, true
}
