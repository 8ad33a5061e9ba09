package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/service"
	"github.com/iliyamo/campus-ticketing/internal/utils"
)

func TestToHTTP(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{service.ErrEventNotFound, http.StatusNotFound, "Event not found"},
		{service.ErrTicketNotFound, http.StatusNotFound, "Ticket not found"},
		{service.ErrStudentNotFound, http.StatusNotFound, "Student not found"},
		{service.ErrAlreadyBooked, http.StatusBadRequest, "You already have a ticket for this event"},
		{service.ErrCapacityExceeded, http.StatusBadRequest, "Event is fully booked"},
		{service.ErrEmailTaken, http.StatusBadRequest, "Email already registered"},
		{service.ErrRbtTaken, http.StatusBadRequest, "RBT number already registered"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{fmt.Errorf("update: %w", service.ErrForbidden), http.StatusForbidden, "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			var he *echo.HTTPError
			require.ErrorAs(t, toHTTP(tc.err, "nope"), &he)
			assert.Equal(t, tc.code, he.Code)
			assert.Equal(t, tc.msg, he.Message)
		})
	}

	boom := errors.New("connection reset")
	assert.Same(t, boom, toHTTP(boom, ""))
}

func newContext(auth string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestRequireRole(t *testing.T) {
	tokens, err := utils.NewTokenService("handler-secret", time.Hour)
	require.NoError(t, err)
	student := model.Principal{ID: "s-1", Role: model.RoleStudent}
	tok, err := tokens.Issue(student, utils.DisplayClaims{Name: "Alice"})
	require.NoError(t, err)

	p, err := requireRole(newContext("Bearer "+tok.Token), tokens, model.RoleStudent, "students only")
	require.NoError(t, err)
	assert.Equal(t, student, p)

	check := func(auth string, code int, msg string) {
		t.Helper()
		_, err := requireRole(newContext(auth), tokens, model.RoleClub, "clubs only")
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, code, he.Code)
		assert.Equal(t, msg, he.Message)
	}
	check("", http.StatusUnauthorized, "Authentication required")
	check("Bearer not-a-token", http.StatusUnauthorized, "Invalid authentication token")
	check("Bearer "+tok.Token, http.StatusForbidden, "clubs only")
}

func TestValidatorReportsJSONFieldNames(t *testing.T) {
	v := NewRequestValidator()
	err := v.Validate(&eventReq{Name: "Quiz", Date: "tomorrow", Time: "7pm", Capacity: 0})

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	body, ok := he.Message.(echo.Map)
	require.True(t, ok)
	fields, ok := body["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "required", fields["description"])
	assert.Equal(t, "datetime", fields["date"])
	assert.Equal(t, "datetime", fields["time"])
	assert.Equal(t, "min", fields["capacity"])
	assert.NotContains(t, fields, "name")

	assert.NoError(t, v.Validate(&eventReq{
		Name: "Quiz", Description: "pub quiz", Date: "2026-11-02", Time: "19:30", Venue: "Bar", Capacity: 40,
	}))
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	for _, tc := range []struct {
		name string
		db   Pinger
		code int
	}{
		{"no database", nil, http.StatusOK},
		{"database up", pinger{}, http.StatusOK},
		{"database down", pinger{err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newContext("")
			require.NoError(t, Health(tc.db)(c))
			assert.Equal(t, tc.code, c.Response().Status)
		})
	}
}
