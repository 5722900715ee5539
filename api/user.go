package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/jrsteele09/fitcamp-session/activities"
	"github.com/jrsteele09/fitcamp-session/users"
)

// LoginResult is the data returned by a successful login.
type LoginResult struct {
	Token string             `json:"token"`
	User  *users.UserProfile `json:"user"`
}

// UserInfo is the signed-in user's profile plus their activity lists.
type UserInfo struct {
	users.UserProfile
	Activities         []activities.Activity `json:"activities,omitempty"`
	FavoriteActivities []activities.Activity `json:"favoriteActivities,omitempty"`
	CreatedActivities  []activities.Activity `json:"createdActivities,omitempty"`
	Comments           []activities.Comment  `json:"comments,omitempty"`
}

type activityLists struct {
	Activities         []activities.Activity `json:"activities,omitempty"`
	FavoriteActivities []activities.Activity `json:"favoriteActivities,omitempty"`
	CreatedActivities  []activities.Activity `json:"createdActivities,omitempty"`
	Comments           []activities.Comment  `json:"comments,omitempty"`
}

var activityListFields = []string{"activities", "favoriteActivities", "createdActivities", "comments"}

// UnmarshalJSON splits the payload into the profile and the activity lists,
// keeping the profile's unknown fields.
func (u *UserInfo) UnmarshalJSON(data []byte) error {
	var profile users.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return err
	}
	var lists activityLists
	if err := json.Unmarshal(data, &lists); err != nil {
		return err
	}
	for _, k := range activityListFields {
		delete(profile.Extra, k)
	}
	if len(profile.Extra) == 0 {
		profile.Extra = nil
	}
	*u = UserInfo{
		UserProfile:        profile,
		Activities:         lists.Activities,
		FavoriteActivities: lists.FavoriteActivities,
		CreatedActivities:  lists.CreatedActivities,
		Comments:           lists.Comments,
	}
	return nil
}

func (u UserInfo) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(activityLists{
		Activities:         u.Activities,
		FavoriteActivities: u.FavoriteActivities,
		CreatedActivities:  u.CreatedActivities,
		Comments:           u.Comments,
	})
	if err != nil {
		return nil, err
	}
	var lists map[string]json.RawMessage
	if err := json.Unmarshal(b, &lists); err != nil {
		return nil, err
	}
	profile := u.UserProfile
	profile.Extra = make(map[string]json.RawMessage, len(u.Extra)+len(lists))
	for k, v := range u.Extra {
		profile.Extra[k] = v
	}
	for k, v := range lists {
		profile.Extra[k] = v
	}
	return json.Marshal(profile)
}

type credentials struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type registration struct {
	Account  string `json:"account"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type unregistration struct {
	UserID   users.UserID `json:"userId"`
	Password string       `json:"password"`
}

// Login exchanges an account and password for a bearer token.
func (c *Client) Login(ctx context.Context, account, password string) (*LoginResult, error) {
	if err := users.ValidateLogin(account, password); err != nil {
		return nil, err
	}
	var res LoginResult
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/user/login",
		body:   credentials{Account: account, Password: password},
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Token == "" || !res.User.Valid() {
		return nil, errors.New("login response is missing the token or user")
	}
	return &res, nil
}

// Register creates an account. confirm must repeat password.
func (c *Client) Register(ctx context.Context, account, name, password, confirm string) error {
	if err := users.ValidateRegistration(account, name, password, confirm); err != nil {
		return err
	}
	return c.call(ctx, request{
		method: http.MethodPost,
		path:   "/user/register",
		body:   registration{Account: account, Name: name, Password: password},
	}, nil)
}

// UserInfo fetches the signed-in user's profile and activity lists.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/user/userInfo",
		authed: true,
	}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Unregister deletes the account of userID after re-checking its password.
func (c *Client) Unregister(ctx context.Context, userID users.UserID, password string) error {
	if userID == "" || password == "" {
		return errors.New("user id and password are required")
	}
	return c.call(ctx, request{
		method: http.MethodDelete,
		path:   "/user/unregister",
		body:   unregistration{UserID: userID, Password: password},
		authed: true,
	}, nil)
}
