// Command client is the authme client: it registers or logs in a user
// against a running authme server and, on a successful login, drives
// the post-login instruction menu (spec.md §4/§6).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eikendev/authme/internal/client"
	"github.com/eikendev/authme/internal/logging"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s { -r | -l } <username> <password>\n", os.Args[0])
	os.Exit(1)
}

func main() {
	var (
		register = flag.Bool("r", false, "register a new user")
		login    = flag.Bool("l", false, "log in as an existing user")
	)
	logging.BindFlag(flag.CommandLine)
	flag.Parse()

	if *register == *login {
		usage()
	}
	if flag.NArg() != 2 {
		usage()
	}
	username, password := flag.Arg(0), flag.Arg(1)

	c, err := client.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "authme is not available: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if *register {
		runRegister(c, username, password)
		return
	}
	runLogin(c, username, password)
}

func runRegister(c *client.Client, username, password string) {
	ok, err := c.Register(username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authme is not available: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Registration failed.")
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "Registration successful.")
}

func runLogin(c *client.Client, username, password string) {
	ok, err := c.Login(username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authme is not available: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Login failed.")
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "Login successful.")

	menu := client.NewMenu(c, os.Stdin, os.Stdout, os.Stdout.Fd())
	if err := menu.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "menu: %v\n", err)
		os.Exit(1)
	}
}
