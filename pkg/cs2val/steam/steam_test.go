package steam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL}), srv
}

func TestInventory_Pagination(t *testing.T) {
	var calls int32
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		switch n {
		case 1:
			if got := r.URL.Query().Get("start_assetid"); got != "" {
				t.Errorf("first page carried cursor %q", got)
			}
			fmt.Fprint(w, `{
				"assets":[{"classid":"c1","instanceid":"i1"}],
				"descriptions":[{"classid":"c1","instanceid":"i1","market_hash_name":"AK-47 | Redline (Field-Tested)","marketable":1}],
				"more_items":1,
				"last_assetid":"a99"
			}`)
		case 2:
			if got := r.URL.Query().Get("start_assetid"); got != "a99" {
				t.Errorf("second page cursor = %q, want a99", got)
			}
			fmt.Fprint(w, `{
				"assets":[{"classid":"c2","instanceid":"i2"}],
				"descriptions":[{"classid":"c2","instanceid":"i2","market_hash_name":"Sticker Capsule","marketable":0}]
			}`)
		default:
			t.Error("unexpected third page request")
		}
	})

	assets, err := c.Inventory(context.Background(), "76561198000000001")
	if err != nil {
		t.Fatalf("Inventory() failed: %v", err)
	}
	want := []types.Asset{
		{Name: "AK-47 | Redline (Field-Tested)", Marketable: true},
		{Name: "Sticker Capsule", Marketable: false},
	}
	if len(assets) != len(want) {
		t.Fatalf("Inventory() = %+v, want %+v", assets, want)
	}
	for i := range want {
		if assets[i] != want[i] {
			t.Errorf("asset[%d] = %+v, want %+v", i, assets[i], want[i])
		}
	}
	if calls != 2 {
		t.Errorf("server saw %d requests, want 2", calls)
	}
}

func TestInventory_MissingCursorEndsPagination(t *testing.T) {
	var calls int32
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		// Claims more items but supplies no cursor.
		fmt.Fprint(w, `{
			"assets":[{"classid":"c1","instanceid":"i1"}],
			"descriptions":[{"classid":"c1","instanceid":"i1","market_name":"Fallback Name","marketable":1}],
			"more_items":1
		}`)
	})

	assets, err := c.Inventory(context.Background(), "76561198000000001")
	if err != nil {
		t.Fatalf("Inventory() failed: %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "Fallback Name" {
		t.Errorf("Inventory() = %+v", assets)
	}
	if calls != 1 {
		t.Errorf("server saw %d requests, want 1", calls)
	}
}

func TestInventory_DropsUnusableEntries(t *testing.T) {
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"assets":[
				{"classid":"c1","instanceid":"i1"},
				{"classid":"orphan","instanceid":"i0"},
				{"classid":"c3","instanceid":"i3"}
			],
			"descriptions":[
				{"classid":"c1","instanceid":"i1","market_hash_name":"Named","market_name":"Ignored","marketable":1},
				{"classid":"c3","instanceid":"i3","market_hash_name":"","market_name":""}
			]
		}`)
	})

	assets, err := c.Inventory(context.Background(), "76561198000000001")
	if err != nil {
		t.Fatalf("Inventory() failed: %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "Named" {
		t.Errorf("Inventory() = %+v, want single asset Named", assets)
	}
}

func TestInventory_PrivateIsAccessError(t *testing.T) {
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.Inventory(context.Background(), "76561198000000001")
	var accessErr *types.AccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("Inventory() = %v, want AccessError", err)
	}
}

func TestInventory_ServerErrorIsTransportError(t *testing.T) {
	var calls int32
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Inventory(context.Background(), "76561198000000001")
	var transportErr *types.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Inventory() = %v, want TransportError", err)
	}
	if calls != 1 {
		t.Errorf("server saw %d requests, want no retries", calls)
	}
}

func TestResolveVanity(t *testing.T) {
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><profile><steamID64>76561198012345678</steamID64></profile>`)
	})

	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"numeric id passes through", "76561198000000001", "76561198000000001", false},
		{"vanity resolves via profile xml", "gaben", "76561198012345678", false},
		{"slashes trimmed", "/gaben/", "76561198012345678", false},
		{"short numerics still resolve", "12345", "76561198012345678", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.ResolveVanity(context.Background(), tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ResolveVanity(%q) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ResolveVanity(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestResolveVanity_NoMatch(t *testing.T) {
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><response><error>not found</error></response>`)
	})
	if _, err := c.ResolveVanity(context.Background(), "nobody"); err == nil {
		t.Fatal("ResolveVanity() succeeded, want error")
	}
}
