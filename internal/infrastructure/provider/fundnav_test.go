package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-service/internal/infrastructure/memcache"
)

const fundNAVBody = `{
	"meta":{"scheme_name":"Parag Parikh Flexi Cap Fund - Direct Growth","scheme_code":122639},
	"data":[
		{"date":"29-08-2026","nav":"81.7723"},
		{"date":"28-08-2026","nav":"81.2411"}
	],
	"status":"SUCCESS"
}`

func Test_FundNAV_Resolve(t *testing.T) {
	t.Parallel()
	var gotPath string
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		return jsonResponse(200, fundNAVBody), nil
	})
	p := &FundNAV{BaseURL: "https://nav.example.com", Client: testClient(rt)}

	q, ok := p.Resolve(context.Background(), "122639")
	require.True(t, ok)
	require.Equal(t, "/mf/122639", gotPath)
	require.Equal(t, 81.7723, q.Price)
	require.Equal(t, 81.2411, q.PrevClose)
	require.Equal(t, "MF", q.Exchange)
	require.Equal(t, "Parag Parikh Flexi Cap Fund - Direct Growth", q.DisplayName)
}

func Test_FundNAV_SingleNAVMirrorsPrev(t *testing.T) {
	t.Parallel()
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"meta":{"scheme_name":"New Fund"},"data":[{"date":"29-08-2026","nav":"10.0000"}]}`), nil
	})
	p := &FundNAV{BaseURL: "https://nav.example.com", Client: testClient(rt)}

	q, ok := p.Resolve(context.Background(), "999999")
	require.True(t, ok)
	require.Equal(t, q.Price, q.PrevClose)
}

func Test_FundNAV_EmptyDataIsMiss(t *testing.T) {
	t.Parallel()
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"meta":{},"data":[],"status":"SUCCESS"}`), nil
	})
	p := &FundNAV{BaseURL: "https://nav.example.com", Client: testClient(rt)}

	_, ok := p.Resolve(context.Background(), "000000")
	require.False(t, ok)
}

func Test_FundNAV_CachesLookups(t *testing.T) {
	t.Parallel()
	var calls int
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(200, fundNAVBody), nil
	})
	p := &FundNAV{
		BaseURL:  "https://nav.example.com",
		Client:   testClient(rt),
		Cache:    memcache.New(),
		CacheTTL: time.Minute,
	}

	_, ok := p.Resolve(context.Background(), "122639")
	require.True(t, ok)
	_, ok = p.Resolve(context.Background(), "122639")
	require.True(t, ok)
	require.Equal(t, 1, calls)
}

func Test_FundNAV_ResolveBatchSettlesAll(t *testing.T) {
	t.Parallel()
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path == "/mf/122639" {
			return jsonResponse(200, fundNAVBody), nil
		}
		return jsonResponse(404, "not found"), nil
	})
	p := &FundNAV{BaseURL: "https://nav.example.com", Client: testClient(rt)}

	out := p.ResolveBatch(context.Background(), []string{"122639", "404404"})
	require.Len(t, out, 1)
	require.Equal(t, 81.7723, out["122639"].Price)
}
