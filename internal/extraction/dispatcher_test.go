package extraction

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pagebind/pagebind/internal/assets"
)

type submission struct {
	docName string
	page    int
	body    string
}

// fakeService records every extraction submission it receives and can
// be told to fail specific pages.
type fakeService struct {
	mu       sync.Mutex
	received []submission
	failPage int
}

func (s *fakeService) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page_number"))
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		data, _ := io.ReadAll(f)
		_ = f.Close()
		s.mu.Lock()
		s.received = append(s.received, submission{
			docName: r.URL.Query().Get("pdf_name"),
			page:    page,
			body:    string(data),
		})
		s.mu.Unlock()
		if page == s.failPage {
			http.Error(w, "ocr exploded", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	})
}

func (s *fakeService) pages() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.received))
	for _, r := range s.received {
		out = append(out, r.page)
	}
	sort.Ints(out)
	return out
}

func TestDispatchNumbersPagesByRequestOrder(t *testing.T) {
	store, err := assets.New(t.TempDir())
	if err != nil {
		t.Fatalf("assets.New: %v", err)
	}
	svc := &fakeService{}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	names := make([]string, 0, 3)
	for _, body := range []string{"first", "second", "third"} {
		name, err := store.Save("images", ".png", strings.NewReader(body))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		names = append(names, name)
	}

	d := NewDispatcher(store, NewClient(srv.URL, time.Second), 2, nil)
	d.Dispatch(context.Background(), names, "pdf-1-aa.pdf")

	got := svc.pages()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("expected pages [1 2 3], got %v", got)
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, r := range svc.received {
		if r.docName != "pdf-1-aa.pdf" {
			t.Fatalf("submission tagged with %q", r.docName)
		}
		want := map[int]string{1: "first", 2: "second", 3: "third"}[r.page]
		if r.body != want {
			t.Fatalf("page %d carried %q, want %q", r.page, r.body, want)
		}
	}
}

func TestDispatchSkipsMissingAssetWithoutBlockingOthers(t *testing.T) {
	store, err := assets.New(t.TempDir())
	if err != nil {
		t.Fatalf("assets.New: %v", err)
	}
	svc := &fakeService{}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	first, err := store.Save("images", ".png", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	third, err := store.Save("images", ".png", strings.NewReader("third"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	names := []string{first, "images-0-gone.png", third}

	d := NewDispatcher(store, NewClient(srv.URL, time.Second), 1, nil)
	d.Dispatch(context.Background(), names, "doc.pdf")

	got := svc.pages()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected pages [1 3], got %v", got)
	}
}

func TestDispatchFailedSubmissionIsSwallowed(t *testing.T) {
	store, err := assets.New(t.TempDir())
	if err != nil {
		t.Fatalf("assets.New: %v", err)
	}
	svc := &fakeService{failPage: 2}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	var names []string
	for _, body := range []string{"a", "b", "c"} {
		name, err := store.Save("images", ".png", strings.NewReader(body))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		names = append(names, name)
	}

	d := NewDispatcher(store, NewClient(srv.URL, time.Second), 3, nil)
	// Must return normally even though page 2 fails server-side.
	d.Dispatch(context.Background(), names, "doc.pdf")

	got := svc.pages()
	if len(got) != 3 {
		t.Fatalf("all pages should have been submitted, got %v", got)
	}
}
