package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ytg_go/internal/chatlock"
	"ytg_go/internal/chatstate"
	"ytg_go/models"
	"ytg_go/pkg/report"
	"ytg_go/pkg/resolver"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type fakeProvider struct {
	exchangeErr error
	subs        []models.Subscription
	listErr     error
	block       chan struct{}
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}

func (f *fakeProvider) Exchange(context.Context, string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "t"}, nil
}

func (f *fakeProvider) ListSubscriptions(context.Context, *oauth2.Token) ([]models.Subscription, error) {
	if f.block != nil {
		<-f.block
	}
	return f.subs, f.listErr
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, subs []models.Subscription) (*resolver.Result, error) {
	return &resolver.Result{Unmatched: subs}, nil
}

type sent struct {
	chatID int64
	label  string
	pages  []string
}

type recordingDelivery struct {
	mu    sync.Mutex
	texts []string
	pages []sent
}

func (d *recordingDelivery) SendText(_ context.Context, _ int64, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts = append(d.texts, text)
	return nil
}

func (d *recordingDelivery) SendPages(_ context.Context, chatID int64, label string, pages []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages = append(d.pages, sent{chatID: chatID, label: label, pages: pages})
}

func setup(t *testing.T, p *fakeProvider) (*Service, *chatstate.Machine, *recordingDelivery, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	machine := chatstate.NewMachine(chatstate.NewMemoryStore(time.Hour))
	delivery := &recordingDelivery{}
	svc := NewService(context.Background(), machine, p, fakeResolver{}, delivery,
		report.New(report.DefaultMaxLength), chatlock.New(zap.NewNop()), zap.NewNop())
	r := gin.New()
	SetupRoutes(r, svc, zap.NewNop())
	return svc, machine, delivery, r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// TestCallbackDeliversReport: успешный редирект приводит к отправке обоих потоков отчёта.
func TestCallbackDeliversReport(t *testing.T) {
	p := &fakeProvider{subs: []models.Subscription{{Title: "A", ChannelID: "1"}}}
	svc, machine, delivery, r := setup(t, p)

	authURL, err := svc.AuthURL(context.Background(), 77)
	if err != nil {
		t.Fatalf("ссылка авторизации: %v", err)
	}
	state := authURL[strings.Index(authURL, "state=")+len("state="):]

	w := get(r, "/oauth2callback?code=c&state="+state)
	if w.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получен %d: %s", w.Code, w.Body.String())
	}
	svc.Wait()

	if len(delivery.pages) != 2 {
		t.Fatalf("ожидалось два потока страниц, получено %d", len(delivery.pages))
	}
	if delivery.pages[0].label != report.FoundHeader || delivery.pages[0].chatID != 77 {
		t.Fatalf("первым идёт поток найденных для чата 77: %+v", delivery.pages[0])
	}
	if !strings.Contains(delivery.pages[1].pages[0], "[A](https://www.youtube.com/channel/1)") {
		t.Fatalf("в ненайденных должен быть канал A: %q", delivery.pages[1].pages)
	}

	// Токен одноразовый
	if _, err := machine.ConsumeToken(context.Background(), state); !errors.Is(err, chatstate.ErrTokenNotFound) {
		t.Fatalf("токен должен быть израсходован")
	}
	if w := get(r, "/oauth2callback?code=c&state="+state); w.Code != http.StatusBadRequest {
		t.Fatalf("повторный редирект должен отклоняться, получен %d", w.Code)
	}
}

// TestCallbackRejectsBadRequests: без кода, с ошибкой Google или неизвестным state.
func TestCallbackRejectsBadRequests(t *testing.T) {
	_, _, delivery, r := setup(t, &fakeProvider{})
	for _, path := range []string{
		"/oauth2callback?state=x",
		"/oauth2callback?error=access_denied",
		"/oauth2callback?code=c&state=unknown",
	} {
		if w := get(r, path); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: ожидался 400, получен %d", path, w.Code)
		}
	}
	if len(delivery.pages) != 0 {
		t.Fatalf("отчёт не должен отправляться")
	}
}

// TestCallbackExchangeFailure: ошибка обмена кода не запускает поиск.
func TestCallbackExchangeFailure(t *testing.T) {
	svc, _, delivery, r := setup(t, &fakeProvider{exchangeErr: errors.New("invalid_grant")})
	url, _ := svc.AuthURL(context.Background(), 1)
	state := url[strings.Index(url, "state=")+len("state="):]
	if w := get(r, "/oauth2callback?code=c&state="+state); w.Code != http.StatusBadRequest {
		t.Fatalf("ожидался 400, получен %d", w.Code)
	}
	svc.Wait()
	if len(delivery.pages) != 0 {
		t.Fatalf("отчёт не должен отправляться")
	}
}

// TestCallbackBusyChat: второй поиск из того же чата не запускается, пока идёт первый.
func TestCallbackBusyChat(t *testing.T) {
	p := &fakeProvider{block: make(chan struct{})}
	svc, _, delivery, r := setup(t, p)

	first, _ := svc.AuthURL(context.Background(), 5)
	second, _ := svc.AuthURL(context.Background(), 5)
	stateOf := func(u string) string { return u[strings.Index(u, "state=")+len("state="):] }

	if w := get(r, "/oauth2callback?code=c&state="+stateOf(first)); w.Code != http.StatusOK {
		t.Fatalf("первый поиск: %d", w.Code)
	}
	if w := get(r, "/oauth2callback?code=c&state="+stateOf(second)); !strings.Contains(w.Body.String(), "уже выполняется") {
		t.Fatalf("второй поиск должен отклоняться: %s", w.Body.String())
	}
	close(p.block)
	svc.Wait()
	if len(delivery.pages) != 2 {
		t.Fatalf("должен пройти только первый поиск, получено потоков %d", len(delivery.pages))
	}
}
