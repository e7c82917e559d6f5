// Package cli implements the interactive vault client: a small REPL over
// the client services. The master key is held in memory only while the
// user is logged in and wiped on logout.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/securepass/vault/internal/client/api"
	"github.com/securepass/vault/internal/client/config"
	"github.com/securepass/vault/internal/client/services"
	"github.com/securepass/vault/internal/common"
)

type App struct {
	config       *config.Config
	authService  services.AuthService
	vaultService services.VaultService
	masterKey    []byte
	userEmail    string
	reader       *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	apiClient := api.NewClient(c.ServerEndpointAddr)

	return &App{
		config:       c,
		authService:  services.NewAuthService(apiClient),
		vaultService: services.NewVaultService(apiClient),
		reader:       bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.dropKey()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.masterKey != nil
}

// dropKey wipes and forgets the in-memory master key.
func (a *App) dropKey() {
	common.WipeByteArray(a.masterKey)
	a.masterKey = nil
	a.userEmail = ""
}
