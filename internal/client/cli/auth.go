package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/securepass/vault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a name, email and master password and creates a
// new account. On success the derived master key is kept in memory and
// the user is logged in. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	key, err := a.authService.Register(ctx, name, email, password)
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	a.masterKey = key
	a.userEmail = email
	fmt.Println("Success!")
	return nil
}

// Login prompts for credentials and authenticates. On success the derived
// master key is kept in memory. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	key, err := a.authService.Login(ctx, email, password)
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.masterKey = key
	a.userEmail = email
	log.Printf("Login successful")
	return nil
}

// Logout revokes the server session and wipes the in-memory master key.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		log.Printf("Logout error: %s", err.Error())
	}
	a.dropKey()
	return nil
}
