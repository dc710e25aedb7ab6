package main

import (
	"fmt"

	"github.com/mimmersdev/pases-universitarios/internal/assets"
	"github.com/mimmersdev/pases-universitarios/internal/db"
)

// migrate applies pending migrations ("up", the default) or only reports
// the schema version ("version").
func (cli *commandLine) migrate(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	switch command {
	case "up":
		if _, err := cli.openStore(); err != nil {
			return err
		}
	case "version":
		if _, err := cli.openDB(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%q: no such command", command)
	}

	version, dirty, err := db.MigrationVersion(cli.db, assets.MigrationsFS)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
