package report

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"ytg_go/models"
)

// content отрезает заголовок страницы.
func content(t *testing.T, page string) string {
	t.Helper()
	parts := strings.SplitN(page, "\n", 2)
	if len(parts) != 2 {
		t.Fatalf("страница без заголовка: %q", page)
	}
	return parts[1]
}

// TestSanitize проверяет удаление символов разметки.
func TestSanitize(t *testing.T) {
	if got := Sanitize("Foo[Bar]*Baz"); got != "FooBarBaz" {
		t.Fatalf("ожидалось FooBarBaz, получено %q", got)
	}
}

// TestFoundBodyGroupsByDestination: каналы с одним Telegram-каналом в одной строке.
func TestFoundBodyGroupsByDestination(t *testing.T) {
	matched := []models.Channel{
		{Name: "A*", SourceURL: "https://www.youtube.com/channel/1", DestinationURL: "https://t.me/chanA"},
		{Name: "B", SourceURL: "https://www.youtube.com/channel/2", DestinationURL: "https://t.me/chanB"},
		{Name: "[C]", SourceURL: "https://www.youtube.com/channel/3", DestinationURL: "t.me/chanA/"},
	}
	want := "[A](https://www.youtube.com/channel/1), [C](https://www.youtube.com/channel/3) - [@chanA](https://t.me/chanA)\n" +
		"[B](https://www.youtube.com/channel/2) - [@chanB](https://t.me/chanB)"
	if got := FoundBody(matched); got != want {
		t.Fatalf("неверный текст:\n%s\nожидалось:\n%s", got, want)
	}
}

// TestNotFoundBody: строка на подписку с каноническим адресом.
func TestNotFoundBody(t *testing.T) {
	got := NotFoundBody([]models.Subscription{{Title: "X]", ChannelID: "9"}, {Title: "Y", ChannelID: "8"}})
	want := "[X](https://www.youtube.com/channel/9)\n[Y](https://www.youtube.com/channel/8)"
	if got != want {
		t.Fatalf("получено %q, ожидалось %q", got, want)
	}
}

// TestFormatPlaceholder: пустые потоки дают по одной странице с заглушкой;
// нулевой предел заменяется на DefaultMaxLength.
func TestFormatPlaceholder(t *testing.T) {
	f := New(0)
	if f.MaxLength != DefaultMaxLength {
		t.Fatalf("предел %d, ожидалось %d", f.MaxLength, DefaultMaxLength)
	}
	r := f.Format(nil, nil)
	if len(r.Found) != 1 || r.Found[0] != FoundHeader+" #[1]:\n"+Placeholder {
		t.Fatalf("неверная страница найденных: %q", r.Found)
	}
	if len(r.NotFound) != 1 || r.NotFound[0] != NotFoundHeader+" #[1]:\n"+Placeholder {
		t.Fatalf("неверная страница ненайденных: %q", r.NotFound)
	}
}

// TestSplitIntoPagesReproducesBody: 10 000 символов текста из коротких строк.
func TestSplitIntoPagesReproducesBody(t *testing.T) {
	var b strings.Builder
	for i := 0; b.Len() < 10000; i++ {
		fmt.Fprintf(&b, "строка номер %d\n", i)
	}
	body := b.String()

	pages := SplitIntoPages("Found", body, DefaultMaxLength)
	if len(pages) < 2 {
		t.Fatalf("ожидалось несколько страниц, получено %d", len(pages))
	}
	var joined strings.Builder
	for i, p := range pages {
		if n := utf8.RuneCountInString(p); n > DefaultMaxLength {
			t.Fatalf("страница %d длиннее предела: %d", i+1, n)
		}
		if !strings.HasPrefix(p, fmt.Sprintf("Found #[%d]:\n", i+1)) {
			t.Fatalf("неверный заголовок страницы %d: %q", i+1, p[:20])
		}
		joined.WriteString(content(t, p))
	}
	if joined.String() != body {
		t.Fatalf("склейка страниц не совпадает с исходным текстом")
	}
}

// TestSplitIntoPagesOversizedLine: длинная строка не режется и идёт отдельной страницей.
func TestSplitIntoPagesOversizedLine(t *testing.T) {
	long := strings.Repeat("x", 150)
	body := "a\n" + long + "\nb"
	pages := SplitIntoPages("H", body, 100)
	if len(pages) != 3 {
		t.Fatalf("ожидалось 3 страницы, получено %d: %q", len(pages), pages)
	}
	if content(t, pages[0]) != "a\n" || content(t, pages[1]) != long+"\n" || content(t, pages[2]) != "b" {
		t.Fatalf("неверное разбиение: %q", pages)
	}
}

// TestSplitIntoPagesExactFit: строки, точно заполняющие лимит, остаются на одной странице.
func TestSplitIntoPagesExactFit(t *testing.T) {
	limit := 100 - utf8.RuneCountInString(PageHeader("H", 9999))
	line := strings.Repeat("я", limit/2-1) + "\n"
	body := line + line
	pages := SplitIntoPages("H", body, 100)
	if len(pages) != 1 || content(t, pages[0]) != body {
		t.Fatalf("ожидалась одна страница, получено %q", pages)
	}
}

// TestFormatterNumbersStreamsIndependently: нумерация потоков начинается с 1.
func TestFormatterNumbersStreamsIndependently(t *testing.T) {
	var matched []models.Channel
	for i := 0; i < 40; i++ {
		matched = append(matched, models.Channel{
			Name:           fmt.Sprintf("channel %d", i),
			SourceURL:      fmt.Sprintf("https://www.youtube.com/channel/%d", i),
			DestinationURL: fmt.Sprintf("https://t.me/c%d", i),
		})
	}
	r := New(300).Format(matched, []models.Subscription{{Title: "z", ChannelID: "z"}})
	if len(r.Found) < 2 {
		t.Fatalf("ожидалось несколько страниц найденных, получено %d", len(r.Found))
	}
	if !strings.HasPrefix(r.NotFound[0], NotFoundHeader+" #[1]:\n") {
		t.Fatalf("поток ненайденных должен начинаться с первой страницы: %q", r.NotFound[0])
	}
	last := r.Found[len(r.Found)-1]
	if !strings.HasPrefix(last, fmt.Sprintf("%s #[%d]:\n", FoundHeader, len(r.Found))) {
		t.Fatalf("неверный номер последней страницы: %q", last)
	}
}
