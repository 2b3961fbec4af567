package lemnos

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return New(Config{
		BaseURL:        url,
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
	}, zap.NewNop())
}

// TestLookupLinks проверяет параметры запроса и разбор ссылок.
func TestLookupLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("part") != "about" || q.Get("id") != "UC2" {
			t.Errorf("неверные параметры запроса: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"items":[{"id":"UC2","about":{"links":[{"url":"https://x.me/a"},{"url":"https://t.me/chanB"}]}}]}`)
	}))
	defer srv.Close()

	about := newTestClient(srv.URL).LookupLinks(context.Background(), "UC2")
	if about == nil || len(about.Links.Items) != 2 {
		t.Fatalf("ожидались две ссылки, получено %+v", about)
	}
}

// TestLookupLinksEmptyItems проверяет, что пустой items даёт nil без ошибки.
func TestLookupLinksEmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	if about := newTestClient(srv.URL).LookupLinks(context.Background(), "UC2"); about != nil {
		t.Fatalf("ожидался nil, получено %+v", about)
	}
}

// TestLookupLinksRetriesServerErrors проверяет повтор после временной ошибки.
func TestLookupLinksRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"items":[{"about":{"links":[]}}]}`)
	}))
	defer srv.Close()

	if about := newTestClient(srv.URL).LookupLinks(context.Background(), "UC2"); about == nil {
		t.Fatalf("после повтора ожидался результат")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("ожидалось 2 запроса, было %d", calls)
	}
}

// TestLookupLinksNoRetryOnClientError проверяет, что 4xx не повторяется и даёт nil.
func TestLookupLinksNoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if about := newTestClient(srv.URL).LookupLinks(context.Background(), "UC2"); about != nil {
		t.Fatalf("ожидался nil")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("ожидался один запрос, было %d", calls)
	}
}

// TestLookupLinksMalformedJSON проверяет мягкую обработку битого ответа.
func TestLookupLinksMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[`)
	}))
	defer srv.Close()

	if about := newTestClient(srv.URL).LookupLinks(context.Background(), "UC2"); about != nil {
		t.Fatalf("ожидался nil")
	}
}

// TestLookupByHandle проверяет построение канонической ссылки по handle.
func TestLookupByHandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("handle") != "@name" {
			t.Errorf("неверный handle: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"items":[{"id":"UCxyz"}]}`)
	}))
	defer srv.Close()

	got := newTestClient(srv.URL).LookupByHandle(context.Background(), "name")
	if got != "https://www.youtube.com/channel/UCxyz" {
		t.Fatalf("неверная ссылка: %q", got)
	}
}

// TestLookupName проверяет получение названия канала из раздела community.
func TestLookupName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("part") == "community" {
			fmt.Fprint(w, `{"items":[{"community":[{"channelName":"Канал"}]}]}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"community":[]}]}`)
	}))
	defer srv.Close()

	if got := newTestClient(srv.URL).LookupName(context.Background(), "UC1"); got != "Канал" {
		t.Fatalf("ожидалось название «Канал», получено %q", got)
	}
}
