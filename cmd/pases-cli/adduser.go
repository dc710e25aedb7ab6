package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mimmersdev/pases-universitarios/internal/auth"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/store"
)

// addUser updates or creates a user.
func (cli *commandLine) addUser(username, pwd, role string) error {
	username = strings.TrimSpace(username)
	if role != models.RoleAdmin && role != models.RoleStaff {
		return fmt.Errorf("role must be %s or %s, got %q", models.RoleAdmin, models.RoleStaff, role)
	}
	st, err := cli.openStore()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(pwd)
	if err != nil {
		return err
	}

	existing, err := st.GetUserByUsername(username)
	switch {
	case err == nil:
		if err := st.UpdateUser(existing.ID, username, role); err != nil {
			return err
		}
		if err := st.UpdateUserPassword(existing.ID, hash); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Updated user %s (%s)\n", username, role)
	case errors.Is(err, store.ErrNotFound):
		if _, err := st.CreateUser(username, hash, role); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Created user %s (%s)\n", username, role)
	default:
		return err
	}
	return nil
}
