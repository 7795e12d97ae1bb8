package tutor

import (
	"context"
	"testing"
	"time"

	appcfg "github.com/gyansetu/core/internal/config"
	"github.com/gyansetu/core/internal/models"
	"github.com/gyansetu/core/internal/modules/cache"
	"github.com/gyansetu/core/internal/pkg/llm"
	"go.uber.org/zap"
)

type fakeCache struct {
	entries map[string]cache.Entry
	lookups int
	stores  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]cache.Entry)}
}

func (f *fakeCache) Lookup(_ context.Context, prompt, grade string) (*cache.Entry, bool, error) {
	f.lookups++
	e, ok := f.entries[cache.Key(prompt, grade)]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

func (f *fakeCache) Store(_ context.Context, prompt, grade string, entry cache.Entry) error {
	f.stores++
	key := cache.Key(prompt, grade)
	if _, ok := f.entries[key]; !ok {
		f.entries[key] = entry
	}
	return nil
}

type fakeProfiles struct {
	profile *models.StudentProfileModel
	gets    int
}

func (f *fakeProfiles) Get(string) (*models.StudentProfileModel, error) {
	f.gets++
	return f.profile, nil
}

// fakeInvoker answers router calls with a fixed label and generation calls
// with a canned response, counting each separately. Router calls are the
// single-token classification requests.
type fakeInvoker struct {
	routerLabel string
	routerCalls int
	genCalls    int
}

func (f *fakeInvoker) invoke(_ context.Context, provider *appcfg.AIProvider, req llm.Request) (*llm.Response, error) {
	if req.MaxOutputTokens == 8 {
		f.routerCalls++
		return &llm.Response{Text: f.routerLabel, Model: provider.DefaultModel}, nil
	}
	f.genCalls++
	return &llm.Response{Text: "generated answer", TokensUsed: 42, Model: provider.DefaultModel}, nil
}

func newSolveService(fc *fakeCache, fp *fakeProfiles, fi *fakeInvoker) *Service {
	cfg := &appcfg.AppConfig{}
	cfg.Tutor.HistoryWindow = 15
	cfg.AI.Providers = []appcfg.AIProvider{
		{ID: "gemini", Type: "gemini", APIKey: "test-key", DefaultModel: "gemini-2.0-flash", Enabled: true},
	}
	return &Service{
		cfg:      cfg,
		cache:    fc,
		profiles: fp,
		logger:   zap.NewNop(),
		hitDelay: func() time.Duration { return 0 },
		invoke:   fi.invoke,
	}
}

func TestSolveGenericWriteThrough(t *testing.T) {
	fc := newFakeCache()
	fi := &fakeInvoker{routerLabel: "EASY"}
	svc := newSolveService(fc, &fakeProfiles{}, fi)
	req := SolveRequest{Prompt: "what is 2+2", Grade: "5"}

	first, err := svc.Solve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Metadata.CacheHit {
		t.Error("first call must not be a cache hit")
	}
	if !first.Metadata.RouterTriggered || first.Metadata.Complexity != ComplexityEasy {
		t.Errorf("metadata = %+v, want router run with EASY", first.Metadata)
	}
	if fi.routerCalls != 1 || fi.genCalls != 1 {
		t.Errorf("router/gen calls = %d/%d, want 1/1", fi.routerCalls, fi.genCalls)
	}
	if fc.stores != 1 {
		t.Errorf("stores = %d, want the answer written through", fc.stores)
	}

	second, err := svc.Solve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Metadata.CacheHit {
		t.Fatal("second identical call must hit the cache")
	}
	if second.Text != first.Text || second.TokensUsed != first.TokensUsed {
		t.Errorf("cached result %+v differs from original %+v", second, first)
	}
	if fi.genCalls != 1 {
		t.Errorf("gen calls = %d, want 1 (cache hit must not regenerate)", fi.genCalls)
	}
	if second.Metadata.ModelUsed != "cache" {
		t.Errorf("modelUsed = %q, want cache", second.Metadata.ModelUsed)
	}
}

func TestSolveProfilePathNeverTouchesCache(t *testing.T) {
	fc := newFakeCache()
	fp := &fakeProfiles{profile: &models.StudentProfileModel{
		StudentID: "s1", Name: "Riya", Grade: "7",
		LanguagePreference: models.LangGujarati,
		TonePreference:     models.ToneFriendly,
	}}
	fi := &fakeInvoker{routerLabel: "EASY"}
	svc := newSolveService(fc, fp, fi)

	got, err := svc.Solve(context.Background(), SolveRequest{
		StudentID: "s1", Prompt: "what is 2+2", Grade: "7", HasProfile: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Metadata.Path != pathPersonalized {
		t.Errorf("path = %q, want personalized", got.Metadata.Path)
	}
	if fc.lookups != 0 || fc.stores != 0 {
		t.Errorf("cache touched %d lookups / %d stores, personalized answers must bypass it", fc.lookups, fc.stores)
	}
	if fi.routerCalls != 0 {
		t.Errorf("router ran %d times on the personalized path, want 0", fi.routerCalls)
	}
}

func TestSolveSharedContextIgnoresProfile(t *testing.T) {
	fc := newFakeCache()
	fp := &fakeProfiles{profile: &models.StudentProfileModel{StudentID: "s1"}}
	fi := &fakeInvoker{routerLabel: "HARD"}
	svc := newSolveService(fc, fp, fi)

	got, err := svc.Solve(context.Background(), SolveRequest{
		StudentID: "s1", Prompt: "explain photosynthesis", HasProfile: true, Shared: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Metadata.Path != pathGeneric {
		t.Errorf("path = %q, shared contexts must stay generic", got.Metadata.Path)
	}
	if fp.gets != 0 {
		t.Errorf("profile read %d times in a shared context, want 0", fp.gets)
	}
	if fc.lookups != 1 || fc.stores != 1 {
		t.Errorf("cache lookups/stores = %d/%d, want 1/1", fc.lookups, fc.stores)
	}
}

func TestSolveImageSkipsClassifierAndCache(t *testing.T) {
	fc := newFakeCache()
	fi := &fakeInvoker{routerLabel: "EASY"}
	svc := newSolveService(fc, &fakeProfiles{}, fi)

	got, err := svc.Solve(context.Background(), SolveRequest{
		Prompt: "solve the problem in this photo",
		Image:  &ImagePayload{Data: []byte{0xff, 0xd8}, MimeType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fi.routerCalls != 0 {
		t.Errorf("router ran %d times for an image request, want 0", fi.routerCalls)
	}
	if got.Metadata.RouterTriggered || got.Metadata.Complexity != ComplexityHard {
		t.Errorf("metadata = %+v, want HARD without the router", got.Metadata)
	}
	if fc.lookups != 0 || fc.stores != 0 {
		t.Errorf("cache touched for an image request (%d lookups / %d stores)", fc.lookups, fc.stores)
	}
}

func TestSolveNoProviderConfigured(t *testing.T) {
	svc := newSolveService(newFakeCache(), &fakeProfiles{}, &fakeInvoker{})
	svc.cfg.AI.Providers = nil

	if _, err := svc.Solve(context.Background(), SolveRequest{Prompt: "q"}); err != llm.ErrNoProvider {
		t.Fatalf("got %v, want ErrNoProvider", err)
	}
}
