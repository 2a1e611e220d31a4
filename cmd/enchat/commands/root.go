package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"enchat/internal/app"
)

var (
	home       string
	passphrase string
	serverURL  string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "enchat",
		Short: "End-to-end encrypted 1:1 chat CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".enchat")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			var err error
			wire, err = app.NewWire(app.Config{Home: home, ServerURL: serverURL})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.enchat)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase to protect keys")
	root.PersistentFlags().StringVar(&serverURL, "server", "ws://127.0.0.1:8080/chat", "rendezvous websocket URL")

	root.AddCommand(initCmd(), fingerprintCmd(), chatCmd())
	return root.Execute()
}
