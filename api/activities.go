package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/jrsteele09/fitcamp-session/activities"
	"github.com/jrsteele09/fitcamp-session/users"
)

// ListActivities returns one page of activities, optionally filtered by type.
func (c *Client) ListActivities(ctx context.Context, q activities.ListQuery) (*activities.Page, error) {
	q = q.Normalise()
	query := url.Values{}
	if q.Type != "" {
		query.Set("type", q.Type)
	}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))

	var page activities.Page
	err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/activity/list",
		query:  query,
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ActivityDetail fetches a single activity.
func (c *Client) ActivityDetail(ctx context.Context, id int64) (*activities.Activity, error) {
	var a activities.Activity
	err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/activity/detail",
		query:  url.Values{"id": {strconv.FormatInt(id, 10)}},
	}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateActivity submits a new activity and returns the stored version.
func (c *Client) CreateActivity(ctx context.Context, a *activities.Activity) (*activities.Activity, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	var created activities.Activity
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/activity/create",
		body:   a,
		authed: true,
	}, &created)
	if err != nil {
		return nil, err
	}
	if created.ID == 0 {
		// Older backends reply with an empty data field.
		created = *a
	}
	return &created, nil
}

// UpdateActivity saves changes to an existing activity.
func (c *Client) UpdateActivity(ctx context.Context, a *activities.Activity) error {
	if a.ID == 0 {
		return errors.New("activity id is required")
	}
	if err := a.Validate(); err != nil {
		return err
	}
	return c.call(ctx, request{
		method: http.MethodPut,
		path:   "/activity",
		body:   a,
		authed: true,
	}, nil)
}

// DeleteActivity removes an activity. Only its organizer may do so.
func (c *Client) DeleteActivity(ctx context.Context, id int64) error {
	return c.call(ctx, request{
		method: http.MethodDelete,
		path:   "/activity",
		body:   struct {
			ID int64 `json:"id"`
		}{ID: id},
		authed: true,
	}, nil)
}

// SignUp joins userID to an activity.
func (c *Client) SignUp(ctx context.Context, userID users.UserID, activityID int64) error {
	return c.membership(ctx, "/activity/signup", userID, activityID)
}

// Leave withdraws userID from an activity.
func (c *Client) Leave(ctx context.Context, userID users.UserID, activityID int64) error {
	return c.membership(ctx, "/activity/leave", userID, activityID)
}

// Favourite adds an activity to userID's favourites.
func (c *Client) Favourite(ctx context.Context, userID users.UserID, activityID int64) error {
	return c.membership(ctx, "/activity/favourite", userID, activityID)
}

// Unfavourite removes an activity from userID's favourites.
func (c *Client) Unfavourite(ctx context.Context, userID users.UserID, activityID int64) error {
	return c.membership(ctx, "/activity/unfavourite", userID, activityID)
}

func (c *Client) membership(ctx context.Context, path string, userID users.UserID, activityID int64) error {
	if userID == "" || activityID == 0 {
		return errors.New("user id and activity id are required")
	}
	return c.call(ctx, request{
		method: http.MethodPost,
		path:   path,
		body:   activities.Membership{UserID: userID, ActivityID: activityID},
		authed: true,
	}, nil)
}
