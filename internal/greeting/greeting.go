// Package greeting builds time-of-day greetings with the clock read out in kanji.
package greeting

import (
	"fmt"
	"time"
)

const kanjiDigits = "零一二三四五六七八九"

// Kanji converts 0-99 to kanji numerals, e.g. 0 -> 零, 10 -> 十, 23 -> 二十三.
// Values outside the range are formatted as Arabic numerals.
func Kanji(n int) string {
	if n < 0 || n >= 100 {
		return fmt.Sprint(n)
	}
	digits := []rune(kanjiDigits)
	tens, ones := n/10, n%10

	var s []rune
	if tens >= 2 {
		s = append(s, digits[tens])
	}
	if tens >= 1 {
		s = append(s, '十')
	}
	if tens == 0 || ones != 0 {
		s = append(s, digits[ones])
	}
	return string(s)
}

// Text returns the greeting for now, which must already be in the desired time zone.
// roll picks the message kind: 1-4 a salutation, 0 an additional message,
// so callers passing rand.IntN(5) get salutations 80% of the time.
func Text(now time.Time, roll int) string {
	status := fmt.Sprintf("%s時%s分。", Kanji(now.Hour()), Kanji(now.Minute()))
	if roll != 0 {
		return status + salutation(now.Hour())
	}
	return status + additional(now.Hour())
}

func salutation(hour int) string {
	switch {
	case 5 <= hour && hour < 10:
		return "おはよう。"
	case 10 <= hour && hour < 18:
		return "こんにちは。"
	case 18 <= hour && hour < 23:
		return "こんばんは。"
	default:
		return "おやすみなさい。"
	}
}

func additional(hour int) string {
	switch {
	case 5 <= hour && hour < 9:
		return "早起きは三文の得。"
	case 9 <= hour && hour < 11:
		return "そろそろおでかけ。"
	case 11 <= hour && hour < 13:
		return "昼食の時間。"
	case 13 <= hour && hour < 16:
		return "三時のおやつ、忘れずに。"
	case 16 <= hour && hour < 19:
		return "お疲れ様。"
	case 19 <= hour && hour < 23:
		return "明日も頑張って。"
	default:
		return "良い子は寝る時間。"
	}
}
