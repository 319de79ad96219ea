package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"risehub/models"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type staffCreator interface {
	CreateStaff(ctx context.Context, username, email, password string) (models.User, error)
}

type commandLine struct {
	accounts staffCreator
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  createstaff -username USERNAME -email EMAIL - create a backoffice account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createStaffCmd := flag.NewFlagSet("createstaff", flag.ContinueOnError)
	createStaffCmd.SetOutput(cli.out)
	createStaffUname := createStaffCmd.String("username", "", "The staff username. The password will be prompted next.")
	createStaffEmail := createStaffCmd.String("email", "", "The staff email address.")

	switch args[1] {
	case "createstaff":
		if err := createStaffCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createStaffUname == "" || *createStaffEmail == "" {
			createStaffCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createStaffCmd.Usage()
			return errHelp
		}
		user, err := cli.accounts.CreateStaff(context.Background(), *createStaffUname, *createStaffEmail, string(pwd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Created staff user %q (id %d)\n", user.Username, user.ID)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}
