package activities

import (
	"strings"
	"time"

	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
	"github.com/jrsteele09/fitcamp-session/internal/utils"
	"github.com/jrsteele09/fitcamp-session/users"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Activity struct {
	ID                  int64        `json:"id,omitempty"`
	Title               string       `json:"title"`
	Profile             string       `json:"profile,omitempty"` // Description shown on the detail page
	Date                time.Time    `json:"date"`
	Location            string       `json:"location"`
	Picture             string       `json:"picture,omitempty"` // Comma separated image URLs
	ParticipantsLimit   int          `json:"participantsLimit"`
	CurrentParticipants int          `json:"currentParticipants,omitempty"`
	Type                string       `json:"type,omitempty"`
	OrganizerName       string       `json:"organizerName,omitempty"`
	OrganizerID         users.UserID `json:"organizerId,omitempty"`
	Fee                 float64      `json:"fee"`
	CreateTime          time.Time    `json:"createTime,omitzero"`
}

// Pictures returns the activity's image URLs.
func (a *Activity) Pictures() []string {
	return utils.SplitCSV(a.Picture)
}

// SetPictures stores urls in the backend's comma separated form.
func (a *Activity) SetPictures(urls []string) {
	a.Picture = strings.Join(urls, ",")
}

// IsFull reports whether every place has been taken.
func (a *Activity) IsFull() bool {
	return a.ParticipantsLimit > 0 && a.CurrentParticipants >= a.ParticipantsLimit
}

// IsOrganizer reports whether userID created the activity.
func (a *Activity) IsOrganizer(userID users.UserID) bool {
	return userID != "" && a.OrganizerID == userID
}

// CanSignUp checks capacity before a sign-up request is sent.
func (a *Activity) CanSignUp() error {
	if a.IsFull() {
		return apperrors.Wrapf(apperrors.ErrFull, "%d/%d places taken", a.CurrentParticipants, a.ParticipantsLimit)
	}
	return nil
}

// Validate checks a create or update form before it is submitted.
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "title is required")
	}
	if strings.TrimSpace(a.Location) == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "location is required")
	}
	if a.Date.IsZero() {
		return apperrors.Wrapf(apperrors.ErrValidation, "date is required")
	}
	if a.ParticipantsLimit < 1 {
		return apperrors.Wrapf(apperrors.ErrValidation, "participants limit must be at least 1")
	}
	if a.ParticipantsLimit < a.CurrentParticipants {
		return apperrors.Wrapf(apperrors.ErrValidation, "participants limit is below the %d already signed up", a.CurrentParticipants)
	}
	if a.Fee < 0 {
		return apperrors.Wrapf(apperrors.ErrValidation, "fee must not be negative")
	}
	return nil
}

// ListQuery filters the activity list. An empty Type lists every type.
type ListQuery struct {
	Type  string
	Page  int
	Limit int
}

// Normalise clamps the page and limit to the values the backend accepts.
func (q ListQuery) Normalise() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

// Page is one page of the activity list. The backend reports either Total or
// TotalPages depending on the endpoint version.
type Page struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total,omitempty"`
	TotalPages int        `json:"totalPages,omitempty"`
}

// Pages returns the number of pages for limit items per page.
func (p Page) Pages(limit int) int {
	if p.TotalPages > 0 {
		return p.TotalPages
	}
	if limit < 1 || p.Total == 0 {
		return 1
	}
	return (p.Total + limit - 1) / limit
}

// Membership is the request body shared by sign-up, leave and favourite calls.
type Membership struct {
	UserID     users.UserID `json:"userId"`
	ActivityID int64        `json:"activityId"`
}

// Comment is a participant's review of an activity.
type Comment struct {
	ID         int64        `json:"id,omitempty"`
	UserID     users.UserID `json:"userId"`
	ActivityID int64        `json:"activityId"`
	Content    string       `json:"content"`
	Rating     int          `json:"rating,omitempty"`
	CreateTime time.Time    `json:"createTime,omitzero"`
}

// AverageRating returns the mean rating of comments, or 0 when there are none.
func AverageRating(comments []Comment) float64 {
	if len(comments) == 0 {
		return 0
	}
	sum := 0
	for _, c := range comments {
		sum += c.Rating
	}
	return float64(sum) / float64(len(comments))
}
