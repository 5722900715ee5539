package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/fitcamp-session/activities"
	"github.com/jrsteele09/fitcamp-session/api"
	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
	"github.com/jrsteele09/fitcamp-session/storage/memstore"
	"github.com/jrsteele09/fitcamp-session/tabsession"
	"github.com/jrsteele09/fitcamp-session/users"
)

const testToken = "header.payload.signature"

type captured struct {
	method string
	path   string
	query  string
	auth   string
	body   []byte
}

// backend serves status and body for every request and records the last one.
func backend(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		got.body = b
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func staticTokens() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: testToken, TokenType: "Bearer"})
}

func TestLogin(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true,"data":{"token":"abc","user":{"id":7,"account":"alice","name":"Alice"}}}`)
	client := api.New(srv.URL+"/", nil)

	res, err := client.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, "abc", res.Token)
	require.Equal(t, users.UserID("7"), res.User.ID)
	require.Equal(t, "Alice", res.User.Name)

	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "/user/login", got.path)
	require.Empty(t, got.auth)
	require.JSONEq(t, `{"account":"alice","password":"secret1"}`, string(got.body))
}

func TestLogin_Rejected(t *testing.T) {
	t.Run("success false", func(t *testing.T) {
		srv, _ := backend(t, http.StatusOK, `{"success":false,"message":"wrong password"}`)
		_, err := api.New(srv.URL, nil).Login(context.Background(), "alice", "nope")

		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "wrong password", apiErr.Message)
		require.False(t, api.IsUnauthorized(err))
	})

	t.Run("missing token", func(t *testing.T) {
		srv, _ := backend(t, http.StatusOK, `{"success":true,"data":{"user":{"id":1}}}`)
		_, err := api.New(srv.URL, nil).Login(context.Background(), "alice", "secret1")
		require.Error(t, err)
	})

	t.Run("empty fields", func(t *testing.T) {
		_, err := api.New("http://127.0.0.1:0", nil).Login(context.Background(), "", "")
		require.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestRegister(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true}`)
	client := api.New(srv.URL, nil)

	err := client.Register(context.Background(), "bob", "Bob", "secret1", "secret2")
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Empty(t, got.path)

	require.NoError(t, client.Register(context.Background(), "bob", "Bob", "secret1", "secret1"))
	require.Equal(t, "/user/register", got.path)
	require.JSONEq(t, `{"account":"bob","name":"Bob","password":"secret1"}`, string(got.body))
}

func TestUserInfo(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true,"data":{
		"id": "7", "name": "Alice",
		"activities": [{"id": 1, "title": "Run", "date": "2025-06-01T09:00:00Z", "location": "Park", "participantsLimit": 5, "fee": 0}],
		"comments": [{"id": 3, "userId": 7, "activityId": 1, "content": "great", "rating": 4}]
	}}`)

	info, err := api.New(srv.URL, staticTokens()).UserInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer "+testToken, got.auth)
	require.Equal(t, users.UserID("7"), info.ID)
	require.Len(t, info.Activities, 1)
	require.Equal(t, "Run", info.Activities[0].Title)
	require.InDelta(t, 4.0, activities.AverageRating(info.Comments), 0.001)
	require.Empty(t, info.Extra)
}

func TestUserInfo_KeepsProfileFields(t *testing.T) {
	srv, _ := backend(t, http.StatusOK, `{"success":true,"data":{"id":7,"email":"a@x","activities":[{"id":1,"title":"Run"}]}}`)

	info, err := api.New(srv.URL, staticTokens()).UserInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, info.Activities, 1)
	require.Len(t, info.Extra, 1)
	require.JSONEq(t, `"a@x"`, string(info.Extra["email"]))

	b, err := json.Marshal(info)
	require.NoError(t, err)
	var back api.UserInfo
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, info.UserProfile, back.UserProfile)
	require.Equal(t, "Run", back.Activities[0].Title)
}

func TestAuthedCall_WithoutTokenSource(t *testing.T) {
	_, err := api.New("http://127.0.0.1:0", nil).UserInfo(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		unauthorized bool
		message      string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"message":"token expired"}`, true, ""},
		{"forbidden", http.StatusForbidden, `{"success":false,"message":"not the organizer"}`, false, "not the organizer"},
		{"server error without envelope", http.StatusInternalServerError, `oops`, false, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := backend(t, tt.status, tt.body)
			err := api.New(srv.URL, staticTokens()).DeleteActivity(context.Background(), 4)
			require.Error(t, err)
			require.Equal(t, tt.unauthorized, api.IsUnauthorized(err))
			require.Equal(t, tt.unauthorized, apperrors.Is(err, apperrors.ErrSessionExpired))
			if tt.message != "" {
				var apiErr *api.Error
				require.ErrorAs(t, err, &apiErr)
				require.Equal(t, tt.status, apiErr.StatusCode)
				require.Equal(t, tt.message, apiErr.Message)
			}
		})
	}
}

func TestListActivities(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true,"data":{"activities":[{"id":1,"title":"Yoga"},{"id":2,"title":"Swim"}],"total":21}}`)

	page, err := api.New(srv.URL, nil).ListActivities(context.Background(), activities.ListQuery{Type: "yoga", Limit: 500})
	require.NoError(t, err)
	require.Len(t, page.Activities, 2)
	require.Equal(t, 1, page.Pages(100))

	require.Equal(t, "/activity/list", got.path)
	require.Equal(t, "limit=100&page=1&type=yoga", got.query)
	require.Empty(t, got.auth)
}

func TestActivityDetail(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true,"data":{"id":9,"title":"Hike","picture":"/a.jpg,/b.jpg","participantsLimit":2,"currentParticipants":2,"organizerId":5}}`)

	a, err := api.New(srv.URL, nil).ActivityDetail(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, "id=9", got.query)
	require.Equal(t, []string{"/a.jpg", "/b.jpg"}, a.Pictures())
	require.True(t, a.IsOrganizer("5"))
	require.ErrorIs(t, a.CanSignUp(), apperrors.ErrFull)
}

func TestCreateAndUpdateActivity(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true,"data":{"id":12,"title":"Run"}}`)
	client := api.New(srv.URL, staticTokens())

	_, err := client.CreateActivity(context.Background(), &activities.Activity{Title: "Run"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Empty(t, got.path)

	a := &activities.Activity{
		Title:             "Run",
		Location:          "Park",
		Date:              time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC),
		ParticipantsLimit: 10,
		OrganizerID:       "7",
	}
	created, err := client.CreateActivity(context.Background(), a)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(got.body, &body))
	require.Equal(t, float64(7), body["organizerId"])
	require.Equal(t, int64(12), created.ID)
	require.Equal(t, "/activity/create", got.path)
	require.Equal(t, "Bearer "+testToken, got.auth)

	a.ID = created.ID
	a.Location = "Beach"
	require.NoError(t, client.UpdateActivity(context.Background(), a))
	require.Equal(t, http.MethodPut, got.method)
	require.Equal(t, "/activity", got.path)

	var sent activities.Activity
	require.NoError(t, json.Unmarshal(got.body, &sent))
	require.Equal(t, "Beach", sent.Location)

	require.Error(t, client.UpdateActivity(context.Background(), &activities.Activity{Title: "x"}))
}

func TestMembershipCalls(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true}`)
	client := api.New(srv.URL, staticTokens())
	ctx := context.Background()

	calls := map[string]func() error{
		"/activity/signup":      func() error { return client.SignUp(ctx, "7", 3) },
		"/activity/leave":       func() error { return client.Leave(ctx, "7", 3) },
		"/activity/favourite":   func() error { return client.Favourite(ctx, "7", 3) },
		"/activity/unfavourite": func() error { return client.Unfavourite(ctx, "7", 3) },
	}
	for path, call := range calls {
		require.NoError(t, call(), path)
		require.Equal(t, path, got.path)
		require.Equal(t, http.MethodPost, got.method)
		require.JSONEq(t, `{"userId":7,"activityId":3}`, string(got.body))
	}

	require.Error(t, client.SignUp(ctx, "", 3))
}

func TestUploadImage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"url", `{"success":true,"data":{"url":"https://cdn.example/x.png"}}`, "https://cdn.example/x.png"},
		{"filename", `{"success":true,"data":{"filename":"x.png"}}`, "/uploads/activity/x.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var category, fileContent, fileName string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/upload/image", r.URL.Path)
				assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
				if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
					category = r.FormValue("category")
					f, hdr, err := r.FormFile("files")
					if assert.NoError(t, err) {
						b, _ := io.ReadAll(f)
						fileContent = string(b)
						fileName = hdr.Filename
					}
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			url, err := api.New(srv.URL, staticTokens()).UploadImage(context.Background(), "/tmp/x.png", strings.NewReader("png-bytes"))
			require.NoError(t, err)
			require.Equal(t, tt.want, url)
			require.Equal(t, "activity", category)
			require.Equal(t, "png-bytes", fileContent)
			require.Equal(t, "x.png", fileName)
		})
	}
}

func TestManagerAsTokenSource(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true,"data":{"id":7}}`)

	mgr, err := tabsession.New(memstore.New(), memstore.New())
	require.NoError(t, err)

	var hooked int
	client := api.New(srv.URL, mgr, api.WithActivityHook(func() { hooked++ }))

	_, err = client.UserInfo(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, hooked)
	require.Empty(t, got.path)

	require.True(t, mgr.Login(&users.UserProfile{ID: "7"}, testToken))
	_, err = client.UserInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer "+testToken, got.auth)
	require.Equal(t, 2, hooked)
}

func TestUnregister(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true}`)
	client := api.New(srv.URL, staticTokens())

	require.Error(t, client.Unregister(context.Background(), "7", ""))
	require.Empty(t, got.path)

	require.NoError(t, client.Unregister(context.Background(), "7", "secret1"))
	require.Equal(t, http.MethodDelete, got.method)
	require.Equal(t, "/user/unregister", got.path)
	require.Equal(t, "Bearer "+testToken, got.auth)
	require.JSONEq(t, `{"userId":7,"password":"secret1"}`, string(got.body))
}
