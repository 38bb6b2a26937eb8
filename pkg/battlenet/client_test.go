package battlenet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "wowprofile/pkg/errors"
	"wowprofile/pkg/logger"
)

const (
	testClientID     = "client-id"
	testClientSecret = "client-secret"
	testAccessToken  = "access-token-123"
)

// tokenResponse is the OAuth client-credentials response body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Sub         string `json:"sub"`
}

// fakeAPI serves the OAuth token endpoint at /token and delegates
// everything else to api.
type fakeAPI struct {
	*httptest.Server
	tokenCalls  atomic.Int32
	tokenStatus int
}

func newFakeAPI(t *testing.T, api http.HandlerFunc) *fakeAPI {
	t.Helper()
	f := &fakeAPI{tokenStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)

		id, secret, ok := r.BasicAuth()
		if !ok || id != testClientID || secret != testClientSecret || r.Method != http.MethodPost {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
			return
		}
		if f.tokenStatus != http.StatusOK {
			http.Error(w, `{"error":"server_error"}`, f.tokenStatus)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: testAccessToken,
			TokenType:   "bearer",
			ExpiresIn:   86399,
			Sub:         testClientID,
		})
	})
	mux.HandleFunc("/", api)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) client(log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return NewClient(Options{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		Region:       RegionEU,
		APIBaseURL:   f.URL,
		TokenURL:     f.URL + "/token",
		Timeout:      5 * time.Second,
		Logger:       log,
	})
}

func TestFetchSendsAuthAndNamespace(t *testing.T) {
	var gotAuth, gotNamespace, gotLocale, gotPath string
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotNamespace = r.Header.Get("Battlenet-Namespace")
		gotLocale = r.URL.Query().Get("locale")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"mounts":[{"mount":{"key":{"href":"x"},"name":"Swift Spectral Tiger","id":6}}]}`))
	})
	c := api.client(nil)

	var out MountCollection
	err := c.Fetch(context.Background(), CharacterPath("area-52", "thrall", ResourceMounts), LocaleQuery(), c.ProfileHeaders(), &out)

	require.NoError(t, err)
	assert.Equal(t, "Bearer "+testAccessToken, gotAuth)
	assert.Equal(t, "profile-eu", gotNamespace)
	assert.Equal(t, "en_US", gotLocale)
	assert.Equal(t, "/profile/wow/character/area-52/thrall/collections/mounts", gotPath)
	require.Len(t, out.Mounts, 1)
	assert.Equal(t, 6, out.Mounts[0].Mount.ID)
	assert.Equal(t, "Swift Spectral Tiger", out.Mounts[0].Mount.Name.String())
}

func TestTokenIsAcquiredOnceAcrossGoroutines(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	c := api.client(nil)

	assert.Equal(t, int32(0), api.tokenCalls.Load(), "no token before first fetch")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out map[string]any
			assert.NoError(t, c.Fetch(context.Background(), "data/wow/x", nil, nil, &out))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.tokenCalls.Load())
}

func TestFetchErrorStatusIsTyped(t *testing.T) {
	tests := []struct {
		status   int
		expected errs.ErrorType
	}{
		{http.StatusNotFound, errs.ErrorTypeNotFound},
		{http.StatusForbidden, errs.ErrorTypeAuth},
		{http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{http.StatusBadGateway, errs.ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code":"nope"}`))
			})

			var out map[string]any
			err := api.client(nil).Fetch(context.Background(), "profile/x", nil, nil, &out)

			apiErr, ok := errs.As(err)
			require.True(t, ok, "expected *errors.Error, got %T", err)
			assert.Equal(t, tt.expected, apiErr.Type)
			assert.Equal(t, tt.status, apiErr.Code)
			assert.Equal(t, http.StatusText(tt.status), apiErr.Reason)
			assert.Equal(t, `{"code":"nope"}`, apiErr.Body)
			assert.True(t, errs.HasStatus(err))
			assert.False(t, errors.Is(err, ErrTokenUnavailable))
		})
	}
}

func TestFetchURLSetsLocale(t *testing.T) {
	var gotQuery map[string][]string
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"id":6,"name":"Swift Spectral Tiger","description":"d"}`))
	})
	c := api.client(nil)

	var detail MountDetail
	err := c.FetchURL(context.Background(), api.URL+"/data/wow/mount/6?namespace=static-us&locale=de_DE", &detail)

	require.NoError(t, err)
	assert.Equal(t, []string{"en_US"}, gotQuery["locale"])
	assert.Equal(t, []string{"static-us"}, gotQuery["namespace"])
	assert.Equal(t, 6, detail.ID)
}

func TestFetchURLErrorStatusIsTyped(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	var detail MountDetail
	err := api.client(nil).FetchURL(context.Background(), api.URL+"/data/wow/mount/6", &detail)

	apiErr, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeServerError, apiErr.Type)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Code)
}

func TestFetchURLRejectsRelativeLink(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {})

	err := api.client(nil).FetchURL(context.Background(), "data/wow/mount/6", &MountDetail{})
	require.Error(t, err)
	assert.False(t, errs.HasStatus(err))
}

func TestTokenFailure(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("API must not be called without a token")
	})
	c := NewClient(Options{
		ClientID:     testClientID,
		ClientSecret: "wrong",
		APIBaseURL:   api.URL,
		TokenURL:     api.URL + "/token",
		Logger:       logger.NewNopLogger(),
	})

	err := c.Fetch(context.Background(), "profile/x", nil, nil, &map[string]any{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenUnavailable)
	apiErr, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeAuth, apiErr.Type)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
}

func TestFetchParsingError(t *testing.T) {
	tl := logger.NewTestLogger()
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"mounts": [`))
	})

	err := api.client(tl).Fetch(context.Background(), "profile/x", nil, nil, &MountCollection{})

	assert.True(t, errs.IsType(err, errs.ErrorTypeParsing))
	assert.False(t, errs.HasStatus(err))
	assert.True(t, tl.HasMessage("failed to parse JSON response"))
}

func TestFetchHonoursCancellation(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/profile/slow" {
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	c := api.client(nil)
	// warm the token so cancellation hits the API request
	require.NoError(t, c.Fetch(context.Background(), "profile/fast", nil, nil, &map[string]any{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Fetch(ctx, "profile/slow", nil, nil, &map[string]any{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in     string
		region Region
		ok     bool
	}{
		{"us", RegionUS, true},
		{"EU", RegionEU, true},
		{" kr ", RegionKR, true},
		{"tw", RegionTW, true},
		{"cn", RegionUS, false},
		{"", RegionUS, false},
	}

	for _, tt := range tests {
		region, ok := ParseRegion(tt.in)
		assert.Equal(t, tt.region, region, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}

	assert.Equal(t, "https://kr.api.blizzard.com", RegionKR.APIBaseURL())
	assert.Equal(t, "profile-tw", RegionTW.ProfileNamespace())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "area-52", Slug("Area 52"))
	assert.Equal(t, "kelthuzad", Slug("Kel'Thuzad"))
	assert.Equal(t, "thrall", Slug("  Thrall "))
	assert.Equal(t, "argent-dawn", Slug("Argent  Dawn"))
}

func TestCharacterPath(t *testing.T) {
	assert.Equal(t,
		"profile/wow/character/area-52/thrall/mythic-keystone-profile/season/3",
		CharacterPath("area-52", "thrall", MythicSeasonResource(3)))
}
