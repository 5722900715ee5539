package activities_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/fitcamp-session/activities"
	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
	"github.com/stretchr/testify/require"
)

func validActivity() activities.Activity {
	return activities.Activity{
		Title:             "Morning run",
		Location:          "Park",
		Date:              time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC),
		ParticipantsLimit: 10,
	}
}

func TestActivity_Validate(t *testing.T) {
	a := validActivity()
	require.NoError(t, a.Validate())

	tests := []struct {
		name    string
		mutate  func(a *activities.Activity)
		wantErr string
	}{
		{"missing title", func(a *activities.Activity) { a.Title = " " }, "title"},
		{"missing location", func(a *activities.Activity) { a.Location = "" }, "location"},
		{"missing date", func(a *activities.Activity) { a.Date = time.Time{} }, "date"},
		{"zero limit", func(a *activities.Activity) { a.ParticipantsLimit = 0 }, "at least 1"},
		{"limit below signed up", func(a *activities.Activity) { a.CurrentParticipants = 11 }, "already signed up"},
		{"negative fee", func(a *activities.Activity) { a.Fee = -1 }, "fee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validActivity()
			tt.mutate(&a)
			err := a.Validate()
			require.ErrorIs(t, err, apperrors.ErrValidation)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestActivity_CanSignUp(t *testing.T) {
	a := validActivity()
	a.CurrentParticipants = 9
	require.NoError(t, a.CanSignUp())

	a.CurrentParticipants = 10
	require.True(t, a.IsFull())
	require.ErrorIs(t, a.CanSignUp(), apperrors.ErrFull)
}

func TestActivity_Pictures(t *testing.T) {
	var a activities.Activity
	require.Empty(t, a.Pictures())

	a.SetPictures([]string{"/uploads/1.png", "/uploads/2.png"})
	require.Equal(t, "/uploads/1.png,/uploads/2.png", a.Picture)
	require.Equal(t, []string{"/uploads/1.png", "/uploads/2.png"}, a.Pictures())
}

func TestActivity_IsOrganizer(t *testing.T) {
	a := validActivity()
	a.OrganizerID = "7"
	require.True(t, a.IsOrganizer("7"))
	require.False(t, a.IsOrganizer("8"))
	require.False(t, a.IsOrganizer(""))
}

func TestListQuery_Normalise(t *testing.T) {
	q := activities.ListQuery{}.Normalise()
	require.Equal(t, 1, q.Page)
	require.Equal(t, activities.DefaultPageSize, q.Limit)

	q = activities.ListQuery{Page: 3, Limit: 1000, Type: "yoga"}.Normalise()
	require.Equal(t, 3, q.Page)
	require.Equal(t, activities.MaxPageSize, q.Limit)
	require.Equal(t, "yoga", q.Type)
}

func TestPage_Pages(t *testing.T) {
	require.Equal(t, 4, activities.Page{TotalPages: 4}.Pages(10))
	require.Equal(t, 3, activities.Page{Total: 21}.Pages(10))
	require.Equal(t, 1, activities.Page{}.Pages(10))
}

func TestAverageRating(t *testing.T) {
	require.Zero(t, activities.AverageRating(nil))
	require.InDelta(t, 4.5, activities.AverageRating([]activities.Comment{{Rating: 4}, {Rating: 5}}), 0.0001)
}
