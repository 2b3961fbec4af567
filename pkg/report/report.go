// Package report собирает отчёт о найденных и ненайденных каналах и режет его на страницы
// для отправки сообщениями.
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ytg_go/models"
	"ytg_go/pkg/telegram"
	"ytg_go/pkg/youtube"
)

const (
	// DefaultMaxLength: предел длины сообщения Telegram.
	DefaultMaxLength = 4096

	FoundHeader    = "Найденные каналы в Telegram"
	NotFoundHeader = "Не найденные каналы в Telegram"

	// Placeholder подставляется вместо пустого списка.
	Placeholder = "Не найдено"

	// pageNumberReserve: номер страницы, под который резервируется место в заголовке.
	pageNumberReserve = 9999
)

// Report — готовые к отправке страницы двух потоков.
type Report struct {
	Found    []string
	NotFound []string
}

type Formatter struct {
	MaxLength int
}

// New возвращает форматтер с заданным пределом длины страницы; 0 и меньше — предел по умолчанию.
func New(maxLength int) Formatter {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return Formatter{MaxLength: maxLength}
}

// Format формирует отчёт; каждая страница не длиннее f.MaxLength символов.
func (f Formatter) Format(matched []models.Channel, unmatched []models.Subscription) Report {
	return Report{
		Found:    SplitIntoPages(FoundHeader, FoundBody(matched), f.MaxLength),
		NotFound: SplitIntoPages(NotFoundHeader, NotFoundBody(unmatched), f.MaxLength),
	}
}

// Sanitize убирает символы, ломающие разметку ссылок.
func Sanitize(name string) string {
	return strings.NewReplacer("[", "", "]", "", "*", "").Replace(name)
}

// FoundBody группирует каналы по Telegram-каналу в порядке первого появления:
// одна строка на каждый Telegram-канал.
func FoundBody(matched []models.Channel) string {
	if len(matched) == 0 {
		return Placeholder
	}
	var order []string
	groups := make(map[string][]string)
	for _, ch := range matched {
		seg := telegram.ChannelSegment(ch.DestinationURL)
		if _, ok := groups[seg]; !ok {
			order = append(order, seg)
		}
		groups[seg] = append(groups[seg], link(ch.Name, ch.SourceURL))
	}

	lines := make([]string, 0, len(order))
	for _, seg := range order {
		lines = append(lines, fmt.Sprintf("%s - [@%s](https://%s%s)",
			strings.Join(groups[seg], ", "), seg, telegram.LinkMarker, seg))
	}
	return strings.Join(lines, "\n")
}

// NotFoundBody — по строке на каждую подписку без Telegram-канала.
func NotFoundBody(unmatched []models.Subscription) string {
	if len(unmatched) == 0 {
		return Placeholder
	}
	lines := make([]string, 0, len(unmatched))
	for _, sub := range unmatched {
		lines = append(lines, link(sub.Title, youtube.ChannelURL(sub.ChannelID)))
	}
	return strings.Join(lines, "\n")
}

func link(name, url string) string {
	return "[" + Sanitize(name) + "](" + url + ")"
}

// PageHeader — заголовок страницы с номером n.
func PageHeader(header string, n int) string {
	return fmt.Sprintf("%s #[%d]:\n", header, n)
}

// SplitIntoPages жадно упаковывает строки body в страницы не длиннее maxLen символов
// вместе с заголовком. Строки сохраняют перевод строки, поэтому склейка содержимого
// страниц без заголовков даёт исходный body. Строка длиннее доступного места
// уходит целиком на отдельную страницу.
func SplitIntoPages(header, body string, maxLen int) []string {
	limit := maxLen - utf8.RuneCountInString(PageHeader(header, pageNumberReserve))
	if limit < 1 {
		limit = 1
	}

	var (
		contents []string
		current  strings.Builder
		size     int
	)
	seal := func() {
		if size > 0 {
			contents = append(contents, current.String())
			current.Reset()
			size = 0
		}
	}
	for _, line := range strings.SplitAfter(body, "\n") {
		if line == "" {
			continue
		}
		n := utf8.RuneCountInString(line)
		if size > 0 && size+n > limit {
			seal()
		}
		current.WriteString(line)
		size += n
		if size > limit {
			// Слишком длинная строка: отдельной страницей
			seal()
		}
	}
	seal()
	if len(contents) == 0 {
		contents = []string{""}
	}

	pages := make([]string, len(contents))
	for i, c := range contents {
		pages[i] = PageHeader(header, i+1) + c
	}
	return pages
}
