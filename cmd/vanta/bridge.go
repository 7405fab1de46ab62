package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vantachain/vanta/core"
)

func crossChainTransferCmd() *cobra.Command {
	var (
		sourceChain string
		targetChain string
		sender      string
		receiver    string
		amount      uint64
		assetType   string
		walletID    string
		password    string
	)
	cmd := &cobra.Command{
		Use:   "cross-chain-transfer",
		Short: "initiate a cross-chain bridge transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := wallets.Unlock(walletID, password)
			if err != nil {
				return err
			}
			request := []byte(fmt.Sprintf("%s:%s:%s:%s:%d:%s", sourceChain, targetChain, sender, receiver, amount, assetType))
			sig := kp.Sign(request)
			xfer, err := bridge.Initiate(sourceChain, targetChain, core.Address(sender), core.Address(receiver), amount, assetType, sig, request)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transfer_id: %s\nstatus: %s\n", xfer.ID, xfer.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceChain, "source-chain", "", "source chain identifier")
	cmd.Flags().StringVar(&targetChain, "target-chain", "", "target chain identifier")
	cmd.Flags().StringVar(&sender, "from", "", "sender address")
	cmd.Flags().StringVar(&receiver, "to", "", "receiver address")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "transfer amount")
	cmd.Flags().StringVar(&assetType, "asset", "native", "asset type identifier")
	cmd.Flags().StringVar(&walletID, "wallet", "", "sender's wallet id")
	cmd.Flags().StringVar(&password, "password", "", "password for --wallet")
	return cmd
}
