package main

import (
	"context"
	"fmt"

	"github.com/trezcool/college/core/user"
)

// addUser creates an active user; the password policy applies.
func (cli *commandLine) addUser(name, uname, email, pwd string) error {
	usr, err := cli.svc.Users.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created user %q (%s)\n", usr.Username, usr.ID)
	return nil
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	_, err := cli.svc.Users.ResetPassword(context.Background(), uname, pwd)
	return err
}
