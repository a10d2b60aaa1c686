package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type countingWaiter struct{ n int }

func (w *countingWaiter) Wait(context.Context) error {
	w.n++
	return nil
}

func TestRequest_GetDecodesResultAndEscapesQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"aptos":{"usd":8.5}}`)
	}))
	defer srv.Close()

	limiter := &countingWaiter{}
	c, err := NewInstrumentedClient(WithBaseURL(srv.URL), WithLimiter(limiter))
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	var out map[string]map[string]float64
	_, err = c.NewRequest().
		SetQueryParam("ids", "aptos,usd-coin").
		SetQueryParam("vs_currencies", "usd").
		SetResult(&out).
		Get(context.Background(), "/simple/price")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if out["aptos"]["usd"] != 8.5 {
		t.Errorf("unexpected decode result %v", out)
	}
	if gotQuery != "ids=aptos%2Cusd-coin&vs_currencies=usd" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if limiter.n != 1 {
		t.Errorf("expected limiter to be consulted once, got %d", limiter.n)
	}
}

func TestRequest_PostJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	var echo map[string]string
	_, err = c.NewRequest().SetBody(map[string]string{"k": "v"}).SetResult(&echo).Post(context.Background(), "echo")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if echo["k"] != "v" {
		t.Errorf("unexpected echo %v", echo)
	}
}

func TestRequest_ErrorHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error_code":"resource_not_found"}`)
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	sentinel := errors.New("not found")
	resp, err := c.NewRequest(WithResponseErrorHandler(func(status int, body []byte) error {
		if status == http.StatusNotFound {
			return sentinel
		}
		return nil
	})).Get(context.Background(), "/x")

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Error("expected response to be returned with handler error")
	}
	if IsTransportError(err) {
		t.Error("handler errors are not transport errors")
	}
}

func TestRequest_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(url))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.NewRequest().Get(context.Background(), "/")
	if !IsTransportError(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}
