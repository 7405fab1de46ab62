package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vantachain/vanta/core"
)

func addTransactionCmd() *cobra.Command {
	var (
		txType   string
		sender   string
		receiver string
		amount   uint64
		memo     string
		gasLimit uint64
		gasPrice uint64
	)
	cmd := &cobra.Command{
		Use:   "add-transaction",
		Short: "submit a transfer transaction to the mempool",
		RunE: func(cmd *cobra.Command, args []string) error {
			if txType != "transfer" {
				return core.NewError(core.KindInvalidInput, "only --type transfer is supported by this command; use open-channel/cross-chain-transfer for other flows")
			}
			tx, err := core.NewTransfer(core.Address(sender), core.Address(receiver), amount, memo)
			if err != nil {
				return err
			}
			if err := engine.AddTransaction(tx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued transaction %s\n", tx.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&txType, "type", "transfer", "transaction type")
	cmd.Flags().StringVar(&sender, "from", "", "sender address")
	cmd.Flags().StringVar(&receiver, "to", "", "receiver address")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount")
	cmd.Flags().StringVar(&memo, "memo", "", "memo")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 0, "gas limit (contract txs)")
	cmd.Flags().Uint64Var(&gasPrice, "gas-price", 0, "gas price (contract txs)")
	return cmd
}

func mineCmd() *cobra.Command {
	var (
		miner     string
		walletID  string
		password  string
	)
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "pack the mempool into a new block and seal it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var posSigner *core.Keypair
			if walletID != "" {
				kp, err := wallets.Unlock(walletID, password)
				if err != nil {
					return err
				}
				posSigner = kp
			}
			blk, err := engine.MineBlock(context.Background(), core.Address(miner), posSigner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mined block %d hash=%s txs=%d\n", blk.Index, blk.Hash, len(blk.Transactions))
			return nil
		},
	}
	cmd.Flags().StringVar(&miner, "miner", "", "miner/coinbase receiver address (PoW)")
	cmd.Flags().StringVar(&walletID, "validator-wallet", "", "wallet id of the PoS signer, if running under PoS")
	cmd.Flags().StringVar(&password, "validator-password", "", "password for --validator-wallet")
	return cmd
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "print every known account balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			for addr, bal := range engine.Balances() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", addr, bal)
			}
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "re-validate the full chain's structure, linkage, and consensus",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := engine.ValidateChain(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "chain is valid")
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "print chain height, mempool size, and state root",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "height: %d\n", engine.Height())
			fmt.Fprintf(cmd.OutOrStdout(), "mempool: %d\n", len(engine.Mempool()))
			fmt.Fprintf(cmd.OutOrStdout(), "state_root: %s\n", engine.StateRoot())
			return nil
		},
	}
}
