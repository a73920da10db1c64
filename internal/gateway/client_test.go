package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"barangay/internal/testutil"
	"barangay/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, testutil.Logger())
}

func TestFetchAll(t *testing.T) {
	t.Run("normalises cells and skips unknown sheets", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "getAll", r.URL.Query().Get("action"))

			io.WriteString(w, `{"result":"OK","data":[
				{"__sheet_type":"complaints","__complaint_id":"c1","title":"Pothole","category":"Roads","status":"submitted","upvotes":3},
				{"__sheet_type":"households","__household_id":"h1","head_of_household":"Ana","address":"Purok 1","phone":9171234567},
				{"__sheet_type":"payments","id":"p1"}
			]}`)
		}))

		records, err := client.FetchAll(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 2)

		c, ok := records[0].(*types.Complaint)
		require.True(t, ok)
		assert.Equal(t, types.Count(3), c.Upvotes)

		h, ok := records[1].(*types.Household)
		require.True(t, ok)
		assert.Equal(t, "9171234567", h.Phone)
	})

	t.Run("error result", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"result":"ERROR","error":"sheet locked"}`)
		}))

		_, err := client.FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, types.IsGatewayError(err))
		assert.Contains(t, err.Error(), "sheet locked")
	})

	t.Run("http failure", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		_, err := client.FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, types.IsGatewayError(err))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		client := NewClient(srv.URL, time.Second, testutil.Logger())
		_, err := client.FetchAll(context.Background())
		assert.True(t, types.IsGatewayError(err))
	})
}

func TestMutations(t *testing.T) {
	var bodies []map[string]any

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)

		io.WriteString(w, `{"result":"OK"}`)
	}))

	ctx := context.Background()
	vote := &types.Vote{ID: "vote_1_aaaaaaa", ComplaintID: "c1", UserID: "u1"}

	require.NoError(t, client.Create(ctx, vote))
	require.NoError(t, client.Update(ctx, vote))
	require.NoError(t, client.Delete(ctx, "vote_1_aaaaaaa"))
	require.Len(t, bodies, 3)

	assert.Equal(t, "create", bodies[0]["action"])
	record := bodies[0]["record"].(map[string]any)
	assert.Equal(t, "votes", record["__sheet_type"])
	assert.Equal(t, "vote_1_aaaaaaa", record["__vote_id"])
	assert.Equal(t, "c1", record["complaint_id"])

	assert.Equal(t, "update", bodies[1]["action"])

	assert.Equal(t, "delete", bodies[2]["action"])
	assert.Equal(t, map[string]any{"__id_value": "vote_1_aaaaaaa"}, bodies[2]["record"])
}

func TestUploadImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")

	t.Run("returns url", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body uploadRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

			assert.Equal(t, "uploadImage", body.Action)
			assert.Equal(t, "evidence.png", body.Filename)
			assert.True(t, strings.HasPrefix(body.Base64, "data:image/png;base64,"))

			io.WriteString(w, `{"result":"OK","url":"https://drive.example.test/evidence.png"}`)
		}))

		url, err := client.UploadImage(context.Background(), "evidence.png", png)
		require.NoError(t, err)
		assert.Equal(t, "https://drive.example.test/evidence.png", url)
	})

	t.Run("missing url", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"result":"ERROR","message":"quota exceeded"}`)
		}))

		_, err := client.UploadImage(context.Background(), "evidence.png", png)
		require.Error(t, err)
		assert.True(t, types.IsGatewayError(err))
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

type recordingObserver struct {
	actions []string
	errs    []error
}

func (o *recordingObserver) ObserveGatewayCall(action string, elapsed time.Duration, err error) {
	o.actions = append(o.actions, action)
	o.errs = append(o.errs, err)
}

func TestObserver(t *testing.T) {
	fake := testutil.NewFakeGateway(&types.Hotline{ID: "h1", ServiceName: "Police", PhoneNumber: "911"})

	mux := http.NewServeMux()
	mux.Handle("GET /", fake.Handler())
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	obs := new(recordingObserver)
	client := newTestClient(t, mux).Observe(obs)

	records, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	err = client.Update(context.Background(), &types.Hotline{ID: "h1", ServiceName: "Police", PhoneNumber: "117"})
	require.Error(t, err)

	assert.Equal(t, []string{"getAll", "update"}, obs.actions)
	assert.NoError(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
}

func TestNormalize(t *testing.T) {
	out := Normalize(map[string]any{
		"n":    json.Number("42"),
		"f":    3.5,
		"b":    true,
		"nil":  nil,
		"text": "hello",
	})

	assert.Equal(t, map[string]string{
		"n":    "42",
		"f":    "3.5",
		"b":    "true",
		"nil":  "",
		"text": "hello",
	}, out)
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:text/plain; charset=utf-8;base64,aGk=", DataURL([]byte("hi")))
}
