package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.userEmail == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userEmail)
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to the vault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("vault %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				fmt.Println("Available commands: register, login, exit")
			case "register":
				_ = a.Register(ctx)
			case "login":
				_ = a.Login(ctx)
			case "exit", "quit":
				fmt.Println("Bye!")
				return
			default:
				fmt.Println("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "help":
			fmt.Println("Available commands: (l)ist, add, get, delete, export, backup, restore, logout, exit")
		case "add":
			a.add(ctx)
		case "get":
			a.get(ctx)
		case "l", "list":
			a.list(ctx)
		case "delete":
			a.delete(ctx)
		case "export":
			a.export(ctx)
		case "backup":
			a.backup(ctx)
		case "restore":
			a.restore(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
