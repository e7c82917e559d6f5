package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/securepass/vault/internal/common"
)

func (a *App) add(ctx context.Context) {
	domain, err := getSimpleText(a.reader, "Enter domain", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	secret, err := getPassword(os.Stdout, "Enter password to store")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(secret)

	if err := a.vaultService.Add(ctx, a.masterKey, domain, username, secret); err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Println("Saved.")
}

func (a *App) get(ctx context.Context) {
	domain, err := getSimpleText(a.reader, "Enter domain", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	item, err := a.vaultService.Get(ctx, a.masterKey, domain)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	defer common.WipeByteArray(item.Secret)

	fmt.Printf("Domain: %s\n", item.Domain)
	fmt.Printf("Username: %s\n", item.Username)
	fmt.Printf("Password: %s\n", string(item.Secret))
}

func (a *App) list(ctx context.Context) {
	creds, err := a.vaultService.List(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	for _, c := range creds {
		fmt.Printf("%s  %s  %s\n", c.ID, c.Domain, c.Username)
	}
}

func (a *App) delete(ctx context.Context) {
	id, err := getSimpleText(a.reader, "Enter record id to delete", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.vaultService.Delete(ctx, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Println("Deleted.")
}

func (a *App) export(ctx context.Context) {
	path, err := a.vaultService.Export(ctx, a.masterKey, a.config.ExportDir)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Printf("Exported encrypted vault to %s\n", path)
}

func (a *App) backup(ctx context.Context) {
	key, err := a.vaultService.Backup(ctx, a.masterKey)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Printf("Backup stored under key %s\n", key)
}

func (a *App) restore(ctx context.Context) {
	key, err := getSimpleText(a.reader, "Enter backup key", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	items, err := a.vaultService.Restore(ctx, a.masterKey, key)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Printf("Backup contains %d credentials:\n", len(items))
	for _, item := range items {
		fmt.Printf("%s  %s\n", item.Domain, item.Username)
		common.WipeByteArray(item.Secret)
	}
}
