package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/scorecard/core/user"
	"github.com/trezcool/scorecard/services/email"
	"github.com/trezcool/scorecard/tests"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Alice", "alice", "alice@test.cd", "pa$$word", "", true)
	testutil.CreateUser(t, env.usrRepo, "Sleeper", "sleeper", "sleeper@test.cd", "pa$$word", "", false)

	tests := []httpTest{
		{
			name:     "empty credentials",
			body:     jsonBytes(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "wrong password",
			body:     jsonBytes(t, LoginRequest{Username: "alice", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: jsonBytes(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			body:     jsonBytes(t, LoginRequest{Username: "who", Password: "pa$$word"}),
			wantCode: http.StatusBadRequest,
			wantData: jsonBytes(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     jsonBytes(t, LoginRequest{Username: "sleeper", Password: "pa$$word"}),
			wantCode: http.StatusForbidden,
			wantData: jsonBytes(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "login by username",
			body:     jsonBytes(t, LoginRequest{Username: "alice", Password: "pa$$word"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "login by email",
			body:     jsonBytes(t, LoginRequest{Username: "alice@test.cd", Password: "pa$$word"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			env.app.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantData != nil {
				assert.JSONEq(t, string(tt.wantData), rec.Body.String())
			} else if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	body := jsonBytes(t, user.NewUser{
		Name:            "Alice",
		Username:        "alice",
		Email:           "alice@test.cd",
		Role:            user.RoleAdmin, // must be ignored
		Password:        "verySecret1!",
		PasswordConfirm: "verySecret1!",
	})
	req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var usr user.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
	assert.Equal(t, user.RoleStandard, usr.Role)
	assert.True(t, usr.IsActive)

	// duplicate username is rejected
	req, rec = newRequest(http.MethodPost, "/v1/users/register", body)
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_userApi_me(t *testing.T) {
	env := setup(t)
	alice := testutil.CreateUser(t, env.usrRepo, "Alice", "alice", "alice@test.cd", "", "", true)

	req, rec := newRequest(http.MethodGet, "/v1/users/me")
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, string(jsonBytes(t, errMissingToken)), rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, alice))
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var usr user.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
	assert.Equal(t, alice.ID, usr.ID)
}

func Test_userApi_adminEndpoints(t *testing.T) {
	env := setup(t)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, true)
	alice := testutil.CreateUser(t, env.usrRepo, "Alice", "alice", "alice@test.cd", "", "", true)
	adminToken := getToken(t, admin)
	aliceToken := getToken(t, alice)

	t.Run("user list is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", aliceToken)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/users", adminToken)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var users []user.User
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("admin can deactivate an account", func(t *testing.T) {
		f := false
		body := jsonBytes(t, StatusRequest{IsActive: &f})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/users/"+alice.ID+"/status", adminToken, body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var usr user.User
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.False(t, usr.IsActive)
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin can delete another user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+alice.ID, adminToken)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Alice", "alice", "alice@test.cd", "pa$$word", "", true)

	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	body := jsonBytes(t, PasswordResetRequest{Email: "alice@test.cd"})
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, emailsvc.SentMessages, 1)

	// unknown emails get the same response and no email
	body = jsonBytes(t, PasswordResetRequest{Email: "who@test.cd"})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset", body)
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, emailsvc.SentMessages, 1)

	// a garbage uid/token combo is rejected
	confirm := jsonBytes(t, user.ResetUserPassword{
		UID:             "nope",
		Token:           "nope",
		Password:        "newPa$$word1",
		PasswordConfirm: "newPa$$word1",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", confirm)
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
