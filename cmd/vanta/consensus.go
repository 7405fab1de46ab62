package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vantachain/vanta/core"
)

func stakeCmd() *cobra.Command {
	var (
		sender    string
		validator string
		amount    uint64
		register  bool
		walletID  string
		password  string
	)
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "register a validator (--register) or submit a stake transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if register {
				kp, err := wallets.Unlock(walletID, password)
				if err != nil {
					return err
				}
				if err := engine.PoS().RegisterValidator(kp.PublicKey, core.Address(validator), amount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered validator %s with stake %d\n", validator, amount)
				return nil
			}
			tx, err := core.NewStaking(core.Address(sender), core.Address(validator), amount, core.StakeOpStake)
			if err != nil {
				return err
			}
			if err := engine.AddTransaction(tx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued stake transaction %s\n", tx.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sender, "from", "", "staking transaction sender")
	cmd.Flags().StringVar(&validator, "validator", "", "validator address")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "stake amount")
	cmd.Flags().BoolVar(&register, "register", false, "register a brand-new validator instead of queuing a transaction")
	cmd.Flags().StringVar(&walletID, "wallet", "", "validator's wallet id (--register only)")
	cmd.Flags().StringVar(&password, "password", "", "password for --wallet (--register only)")
	return cmd
}

func unstakeCmd() *cobra.Command {
	var (
		sender    string
		validator string
		amount    uint64
	)
	cmd := &cobra.Command{
		Use:   "unstake",
		Short: "submit an unstake transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := core.NewStaking(core.Address(sender), core.Address(validator), amount, core.StakeOpUnstake)
			if err != nil {
				return err
			}
			if err := engine.AddTransaction(tx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued unstake transaction %s\n", tx.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sender, "from", "", "unstake transaction sender")
	cmd.Flags().StringVar(&validator, "validator", "", "validator address")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "unstake amount")
	return cmd
}

func validatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validators",
		Short: "list registered PoS validators",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range engine.PoS().Validators() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tstake=%d\tactive=%t\tperformance=%.2f\tslashes=%d\n",
					v.Address, v.Stake, v.Active, v.Performance, len(v.SlashHistory))
			}
			return nil
		},
	}
}
