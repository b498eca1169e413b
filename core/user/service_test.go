package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/user"
	"github.com/trezcool/college/tests"
)

const strongPwd = "Kampus#Demo2024"

func TestService_Create(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()
	app.CreateUser(t, "Asel", "asel", "asel@test.kg", "", true)

	tests := []struct {
		name      string
		nu        user.NewUser
		wantField string
	}{
		{name: "missing name", nu: user.NewUser{Username: "bolot", Password: strongPwd, PasswordConfirm: strongPwd}, wantField: "name"},
		{name: "bad username", nu: user.NewUser{Name: "Bolot", Username: "bo-lot", Password: strongPwd, PasswordConfirm: strongPwd}, wantField: "username"},
		{name: "bad email", nu: user.NewUser{Name: "Bolot", Username: "bolot", Email: "lol", Password: strongPwd, PasswordConfirm: strongPwd}, wantField: "email"},
		{name: "confirm mismatch", nu: user.NewUser{Name: "Bolot", Username: "bolot", Password: strongPwd, PasswordConfirm: "nope"}, wantField: "password_confirm"},
		{name: "weak password", nu: user.NewUser{Name: "Bolot", Username: "bolot", Password: "12345678", PasswordConfirm: "12345678"}, wantField: "password"},
		{name: "username taken", nu: user.NewUser{Name: "Asel 2", Username: " ASEL ", Password: strongPwd, PasswordConfirm: strongPwd}, wantField: "username"},
		{name: "email taken", nu: user.NewUser{Name: "Asel 2", Username: "asel2", Email: "Asel@Test.kg", Password: strongPwd, PasswordConfirm: strongPwd}, wantField: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Users.Create(ctx, tt.nu)
			require.Error(t, err)
			assert.Contains(t, core.FieldErrors(err, app.Translator), tt.wantField)
		})
	}

	t.Run("created", func(t *testing.T) {
		usr, err := app.Users.Create(ctx, user.NewUser{
			Name:            "  Bolot Omurov ",
			Username:        "Bolot",
			Email:           "BOLOT@test.kg",
			Password:        strongPwd,
			PasswordConfirm: strongPwd,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, "Bolot Omurov", usr.Name)
		assert.Equal(t, "bolot", usr.Username)
		assert.Equal(t, "bolot@test.kg", usr.Email)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword(strongPwd))
	})
}

func TestService_Authenticate(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()
	app.CreateUser(t, "Asel", "asel", "asel@test.kg", strongPwd, true)
	app.CreateUser(t, "Bolot", "bolot", "", strongPwd, false)

	tests := []struct {
		name    string
		uname   string
		pwd     string
		wantErr error
	}{
		{name: "unknown user", uname: "nobody", pwd: strongPwd, wantErr: user.ErrAuthenticationFailed},
		{name: "wrong password", uname: "asel", pwd: "Kampus#Demo2025", wantErr: user.ErrAuthenticationFailed},
		{name: "deactivated", uname: "bolot", pwd: strongPwd, wantErr: user.ErrAccountDeactivated},
		{name: "by username", uname: " Asel ", pwd: strongPwd},
		{name: "by email", uname: "ASEL@test.kg", pwd: strongPwd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := app.Users.Authenticate(ctx, tt.uname, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "asel", usr.Username)
			assert.True(t, usr.LastLogin.Valid)
		})
	}
}

func TestService_ResetPassword(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()
	app.CreateUser(t, "Asel", "asel", "", strongPwd, true)

	_, err := app.Users.ResetPassword(ctx, "nobody", "Other#Pass99")
	assert.True(t, core.IsNotFound(err), "got %v", err)

	_, err = app.Users.ResetPassword(ctx, "asel", "Other#Pass99")
	require.NoError(t, err)

	_, err = app.Users.Authenticate(ctx, "asel", strongPwd)
	assert.Equal(t, user.ErrAuthenticationFailed, err)
	_, err = app.Users.Authenticate(ctx, "asel", "Other#Pass99")
	assert.NoError(t, err)
}
