package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"enchat/internal/crypto"
	"enchat/internal/domain"
)

func initCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and set a username",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if !domain.ValidUsername(username) {
				return fmt.Errorf("invalid username %q: 3-20 letters, digits, '.' or '_'; separators must not lead, trail or double up", username)
			}

			ring, created, err := wire.Identity.LoadOrCreate(passphrase, crypto.DefaultKeySize)
			if err != nil {
				return err
			}
			if err := wire.Store.SetUsername(username); err != nil {
				return err
			}

			fp, err := ring.Fingerprint()
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("Identity created.\n")
			} else {
				fmt.Printf("Identity already exists, username updated.\n")
			}
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "display name shown to peers")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
