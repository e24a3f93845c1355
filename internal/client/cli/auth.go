package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/zkpauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new account via the AuthService.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	if err := a.authService.Register(ctx, userName, password); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and runs one proof round against
// the server. On success it stores the issued session token and the
// username for the prompt. The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	token, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.sessionToken = token
	a.userName = userName
	fmt.Println("Logged in!")
	return nil
}

// Ping checks server liveness and reports the result to the user.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		fmt.Println("Server unreachable:", err.Error())
		return err
	}
	fmt.Println("Server is up")
	return nil
}

// ShowToken prints the current session token, if any.
func (a *App) ShowToken(ctx context.Context) error {
	if a.sessionToken == "" {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Println(a.sessionToken)
	return nil
}

// Logout forgets the session token and username.
func (a *App) Logout(ctx context.Context) error {
	a.sessionToken = ""
	a.userName = ""
	return nil
}
