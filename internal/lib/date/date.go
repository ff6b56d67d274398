// Package date содержит арифметику календарных дат. Сроки подписок —
// календарные даты без времени суток, поэтому сравнения "истекает сегодня"
// и "просрочено на N дней" считаются по датам, а не по разнице таймстемпов,
// чтобы исключить дрожание на границах часовых поясов.
package date

import "time"

// Today возвращает сегодняшнюю календарную дату в UTC (полночь).
func Today() time.Time {
	return Truncate(time.Now().UTC())
}

// Truncate отбрасывает время суток, оставляя календарную дату.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween возвращает количество полных календарных дней от from до to.
// Отрицательный результат означает, что to раньше from.
func DaysBetween(from, to time.Time) int {
	return int(Truncate(to).Sub(Truncate(from)).Hours() / 24)
}
