package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"syscall"

	"golang.org/x/term"

	"github.com/mimmersdev/pases-universitarios/internal/assets"
	"github.com/mimmersdev/pases-universitarios/internal/config"
	"github.com/mimmersdev/pases-universitarios/internal/db"
	"github.com/mimmersdev/pases-universitarios/internal/store"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	cfg    *config.Config
	out    io.Writer
	client *http.Client
	db     *sql.DB
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME [-role admin|staff] - create or update a user, the password is prompted")
	fmt.Fprintln(cli.out, "  migrate [up|version]                         - apply or inspect database migrations")
	fmt.Fprintln(cli.out, "  import -server URL -username USERNAME -university ID -file FILE.xlsx")
	fmt.Fprintln(cli.out, "                                               - upload a workbook and follow its progress")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", "staff", "admin or staff")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importServer := importCmd.String("server", fmt.Sprintf("http://localhost:%d", cli.cfg.Port), "Base URL of the pass server")
	importUser := importCmd.String("username", "", "User to log in as. The password will be prompted next.")
	importUniversity := importCmd.String("university", "", "ID of the university the passes belong to")
	importFile := importCmd.String("file", "", "Workbook to upload (.xlsx)")

	for _, fs := range []*flag.FlagSet{addUserCmd, importCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, pwd, *addUserRole)
	case "migrate":
		return cli.migrate(args[2:])
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importUser == "" || *importUniversity == "" || *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.importFile(*importServer, *importUser, pwd, *importUniversity, *importFile)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// openDB opens the configured database without touching its schema.
func (cli *commandLine) openDB() (*sql.DB, error) {
	if cli.db == nil {
		database, err := db.InitDB(cli.cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		cli.db = database
	}
	return cli.db, nil
}

// openStore opens the configured database, applying pending migrations.
func (cli *commandLine) openStore() (*store.Store, error) {
	database, err := cli.openDB()
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		return nil, err
	}
	return store.New(database), nil
}

func (cli *commandLine) close() {
	if cli.db != nil {
		cli.db.Close()
		cli.db = nil
	}
}
