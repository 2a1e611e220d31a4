package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"enchat/internal/crypto"
	"enchat/internal/relay"
	"enchat/internal/services/chat"
)

// ExitCommand ends the chat session from the console.
const ExitCommand = "/e"

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Connect to a rendezvous server and chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			username, err := wire.Store.Username()
			if err != nil {
				return err
			}
			if username == "" {
				return fmt.Errorf("no username set, run 'enchat init' first")
			}

			ring, _, err := wire.Identity.LoadOrCreate(passphrase, crypto.DefaultKeySize)
			if err != nil {
				return err
			}

			client, err := relay.Dial(wire.ServerURL)
			if err != nil {
				return fmt.Errorf("connect to %s: %w", wire.ServerURL, err)
			}
			defer client.Close()

			engine, err := chat.New(username, ring, client, wire.Trust, os.Stdout)
			if err != nil {
				return err
			}

			fmt.Printf("Connected to %s as %s. Type %s to exit.\n", wire.ServerURL, username, ExitCommand)

			listenErr := make(chan error, 1)
			go func() { listenErr <- client.Listen(engine) }()

			lines := make(chan string)
			go func() {
				sc := bufio.NewScanner(os.Stdin)
				for sc.Scan() {
					lines <- sc.Text()
				}
				close(lines)
			}()

			for {
				select {
				case line, ok := <-lines:
					if !ok || line == ExitCommand {
						return nil
					}
					if err := engine.HandleInput(line); err != nil {
						if errors.Is(err, chat.ErrDisconnected) {
							return nil
						}
						return err
					}
				case err := <-listenErr:
					return err
				}
			}
		},
	}
}
