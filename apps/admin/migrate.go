package main

import (
	"github.com/trezcool/college/storage/database"
)

var gooseRunFunc = database.Run // mockable

// migrate runs a goose command; args[0] is the command, the rest its arguments.
func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
