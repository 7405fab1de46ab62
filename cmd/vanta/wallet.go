package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vantachain/vanta/core"
)

func generateKeypairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-keypair",
		Short: "generate an Ed25519 keypair and print its address",
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := core.GenerateKeypair()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", kp.Address())
			fmt.Fprintf(cmd.OutOrStdout(), "public_key: %x\n", kp.PublicKey)
			fmt.Fprintf(cmd.OutOrStdout(), "private_key: %x\n", kp.PrivateKey)
			return nil
		},
	}
}

func createWalletCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "create-wallet",
		Short: "create a new password-encrypted wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return core.NewError(core.KindInvalidInput, "--password is required")
			}
			kp, rec, err := wallets.Create(password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wallet_id: %s\n", rec.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", kp.Address())
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "wallet encryption password")
	return cmd
}

func createWalletWithMnemonicCmd() *cobra.Command {
	var (
		password    string
		passphrase  string
		entropyBits int
	)
	cmd := &cobra.Command{
		Use:   "create-wallet-mnemonic",
		Short: "create a new wallet recoverable from a BIP-39 mnemonic phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return core.NewError(core.KindInvalidInput, "--password is required")
			}
			kp, rec, mnemonic, err := wallets.CreateWithMnemonic(entropyBits, passphrase, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wallet_id: %s\n", rec.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", kp.Address())
			fmt.Fprintf(cmd.OutOrStdout(), "mnemonic: %s\n", mnemonic)
			fmt.Fprintln(cmd.OutOrStdout(), "record this mnemonic now; it is not stored and cannot be recovered")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "wallet encryption password")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "optional BIP-39 passphrase")
	cmd.Flags().IntVar(&entropyBits, "entropy-bits", 128, "mnemonic entropy bits: 128 (12 words) or 256 (24 words)")
	return cmd
}

func recoverWalletCmd() *cobra.Command {
	var (
		mnemonic   string
		passphrase string
		password   string
	)
	cmd := &cobra.Command{
		Use:   "recover-wallet",
		Short: "recover a wallet from its BIP-39 mnemonic phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return core.NewError(core.KindInvalidInput, "--password is required")
			}
			kp, rec, err := wallets.RecoverFromMnemonic(mnemonic, passphrase, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wallet_id: %s\n", rec.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", kp.Address())
			return nil
		},
	}
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "BIP-39 mnemonic phrase")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "optional BIP-39 passphrase")
	cmd.Flags().StringVar(&password, "password", "", "password to re-encrypt the recovered wallet under")
	return cmd
}

func listWalletsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-wallets",
		Short: "list stored wallet ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := wallets.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
