package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func TestSanitizeAndStrip(t *testing.T) {
	got := sanitizeText(htmlStrip("<p>Bitcoin</p><p>is a  <a href=\"x\">peer-to-peer</a>\ncurrency</p>"), 0)
	if got != "Bitcoin is a peer-to-peer currency" {
		t.Fatalf("unexpected stripped text: %q", got)
	}
	if sanitizeText("abcdef", 3) != "abc" {
		t.Fatalf("expected truncation")
	}
	if htmlStrip("   ") != "" {
		t.Fatalf("expected empty string")
	}
}

func newTestBinance(rt roundTripFunc) *BinanceProvider {
	p := NewBinanceProvider(testTracer())
	p.client = &http.Client{Transport: rt}
	p.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return p
}

func TestBinanceGetQuote(t *testing.T) {
	var gotURL string
	p := newTestBinance(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return newResponse(http.StatusOK, `{"symbol":"BTCUSDT","price":"97000.50000000"}`), nil
	})

	q, err := p.GetQuote(context.Background(), "btcusdt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Symbol != "BTCUSDT" || q.Price != 97000.5 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.AsOf.IsZero() {
		t.Fatalf("expected as-of timestamp")
	}
	if !strings.HasSuffix(gotURL, "/api/v3/ticker/price?symbol=BTCUSDT") {
		t.Fatalf("unexpected url: %s", gotURL)
	}
}

func TestBinanceRetriesTransientFailures(t *testing.T) {
	calls := 0
	p := newTestBinance(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		if calls == 2 {
			return newResponse(http.StatusTooManyRequests, `{"code":-1003}`), nil
		}
		return newResponse(http.StatusOK, `{"symbol":"ETHUSDT","price":"3100"}`), nil
	})

	q, err := p.GetQuote(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 || q.Price != 3100 {
		t.Fatalf("expected success on third try, calls=%d quote=%+v", calls, q)
	}
}

func TestBinanceGivesUpAfterMaxTries(t *testing.T) {
	calls := 0
	p := newTestBinance(func(req *http.Request) (*http.Response, error) {
		calls++
		return newResponse(http.StatusBadGateway, "bad gateway"), nil
	})

	if _, err := p.GetQuote(context.Background(), "BTCUSDT"); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestBinanceUnknownSymbolIsPermanent(t *testing.T) {
	calls := 0
	p := newTestBinance(func(req *http.Request) (*http.Response, error) {
		calls++
		return newResponse(http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`), nil
	})

	_, err := p.GetQuote(context.Background(), "NOPEUSDT")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retries, got %d calls", calls)
	}
}

func TestBinanceRejectsNonPositivePrice(t *testing.T) {
	p := newTestBinance(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"symbol":"BTCUSDT","price":"0.00000000"}`), nil
	})
	if _, err := p.GetQuote(context.Background(), "BTCUSDT"); err == nil {
		t.Fatalf("expected error for zero price")
	}
}

func TestCoinGeckoGetDescription(t *testing.T) {
	p := NewCoinGeckoProvider(testTracer(), "demo-key")
	var gotKey, gotPath string
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotKey = req.Header.Get("x-cg-demo-api-key")
		gotPath = req.URL.Path
		return newResponse(http.StatusOK, `{"id":"bitcoin","description":{"en":"Bitcoin is the first <a href=\"https://bitcoin.org\">decentralized</a> currency.","de":"..."}}`), nil
	})}

	desc, err := p.GetDescription(context.Background(), "Bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc != "Bitcoin is the first decentralized currency." {
		t.Fatalf("unexpected description: %q", desc)
	}
	if gotKey != "demo-key" {
		t.Fatalf("expected demo key header, got %q", gotKey)
	}
	if gotPath != "/api/v3/coins/bitcoin" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestCoinGeckoDescriptionEmptyAndMissing(t *testing.T) {
	p := NewCoinGeckoProvider(testTracer(), "")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("x-cg-demo-api-key") != "" {
			t.Fatalf("did not expect api key header")
		}
		if strings.Contains(req.URL.Path, "unknown") {
			return newResponse(http.StatusNotFound, `{"error":"coin not found"}`), nil
		}
		return newResponse(http.StatusOK, `{"id":"dogecoin","description":{"en":""}}`), nil
	})}

	desc, err := p.GetDescription(context.Background(), "dogecoin")
	if err != nil || desc != "" {
		t.Fatalf("expected empty description, got %q err=%v", desc, err)
	}
	if _, err := p.GetDescription(context.Background(), "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewsAPISearch(t *testing.T) {
	if NewNewsAPIProvider(testTracer(), "") != nil {
		t.Fatalf("expected nil provider without key")
	}

	p := NewNewsAPIProvider(testTracer(), "news-key")
	var gotKey, gotQuery string
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotKey = req.Header.Get("X-Api-Key")
		gotQuery = req.URL.RawQuery
		return newResponse(http.StatusOK, `{"status":"ok","totalResults":2,"articles":[
			{"title":"Bitcoin rallies","description":"<b>Strong</b> inflows","url":"https://n.example/1","publishedAt":"2026-02-13T10:00:00Z"},
			{"title":"Miners sell","description":null,"url":"https://n.example/2","publishedAt":"2026-02-13T09:00:00Z"}]}`), nil
	})}

	items, err := p.Search(context.Background(), "Bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Bitcoin rallies" || items[0].Summary != "Strong inflows" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Summary != "" {
		t.Fatalf("expected empty summary for null description, got %q", items[1].Summary)
	}
	if gotKey != "news-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	for _, want := range []string{"q=Bitcoin", "sortBy=publishedAt", "pageSize=20"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("expected %s in query %s", want, gotQuery)
		}
	}
}

func TestNewsAPIErrorStatus(t *testing.T) {
	p := NewNewsAPIProvider(testTracer(), "bad-key")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`), nil
	})}
	if _, err := p.Search(context.Background(), "Bitcoin"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGoogleNewsSearch(t *testing.T) {
	p := NewGoogleNewsProvider(testTracer())
	var gotQuery string
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotQuery = req.URL.Query().Get("q")
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Google News</title>`)
		b.WriteString(`<item><title>Older story</title><link>https://n.example/old</link><description>&lt;a href="x"&gt;old&lt;/a&gt;</description><pubDate>Thu, 12 Feb 2026 10:00:00 GMT</pubDate></item>`)
		b.WriteString(`<item><title>Ethereum upgrade ships</title><link>https://n.example/new</link><description>new</description><pubDate>Fri, 13 Feb 2026 10:00:00 GMT</pubDate></item>`)
		for i := 0; i < 25; i++ {
			b.WriteString(`<item><title>Filler</title><pubDate>Mon, 02 Feb 2026 10:00:00 GMT</pubDate></item>`)
		}
		b.WriteString(`<item><title></title></item></channel></rss>`)
		return newResponse(http.StatusOK, b.String()), nil
	})}

	items, err := p.Search(context.Background(), "Ethereum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "Ethereum" {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if len(items) != MaxNewsItems {
		t.Fatalf("expected %d items, got %d", MaxNewsItems, len(items))
	}
	if items[0].Title != "Ethereum upgrade ships" || items[1].Title != "Older story" {
		t.Fatalf("expected most recent first, got %q then %q", items[0].Title, items[1].Title)
	}
	if items[1].Summary != "old" {
		t.Fatalf("expected html stripped summary, got %q", items[1].Summary)
	}
}

func TestGoogleNewsHTTPError(t *testing.T) {
	p := NewGoogleNewsProvider(testTracer())
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusServiceUnavailable, "unavailable"), nil
	})}
	if _, err := p.Search(context.Background(), "Bitcoin"); err == nil {
		t.Fatalf("expected error")
	}
}
