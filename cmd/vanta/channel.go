package main

import (
	"crypto/ed25519"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vantachain/vanta/core"
)

// parseAddressList splits a comma-separated address list into addresses.
func parseAddressList(s string) []core.Address {
	var out []core.Address
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, core.Address(part))
		}
	}
	return out
}

func openChannelCmd() *cobra.Command {
	var (
		participants string
		balances     string
		timeoutSec   int64
		maxTotal     uint64
		walletIDs    string
		passwords    string
	)
	cmd := &cobra.Command{
		Use:   "open-channel",
		Short: "open a new multi-party state channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			parts := parseAddressList(participants)
			walletList := strings.Split(walletIDs, ",")
			pwList := strings.Split(passwords, ",")
			if len(walletList) != len(parts) || len(pwList) != len(parts) {
				return core.NewError(core.KindInvalidInput, "--wallets and --passwords must list one entry per participant")
			}
			pubKeys := make(map[core.Address]ed25519.PublicKey)
			for i, p := range parts {
				kp, err := wallets.Unlock(strings.TrimSpace(walletList[i]), strings.TrimSpace(pwList[i]))
				if err != nil {
					return err
				}
				pubKeys[p] = kp.PublicKey
			}
			balMap, err := parseBalanceList(balances)
			if err != nil {
				return err
			}
			ch, err := channels.Open(parts, pubKeysAsBytes(pubKeys), balMap, time.Duration(timeoutSec)*time.Second, maxTotal)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel_id: %s\n", ch.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&participants, "participants", "", "comma-separated participant addresses")
	cmd.Flags().StringVar(&balances, "balances", "", "comma-separated addr=amount pairs")
	cmd.Flags().Int64Var(&timeoutSec, "timeout-seconds", 3600, "dispute window in seconds")
	cmd.Flags().Uint64Var(&maxTotal, "max-total", 0, "maximum total channel balance")
	cmd.Flags().StringVar(&walletIDs, "wallets", "", "comma-separated wallet ids, one per participant")
	cmd.Flags().StringVar(&passwords, "passwords", "", "comma-separated wallet passwords, one per participant")
	return cmd
}

func parseBalanceList(s string) (map[core.Address]uint64, error) {
	out := make(map[core.Address]uint64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, core.NewError(core.KindInvalidInput, "malformed balance entry %q, want addr=amount", part)
		}
		var amount uint64
		if _, err := fmt.Sscanf(kv[1], "%d", &amount); err != nil {
			return nil, core.NewError(core.KindInvalidInput, "malformed amount in %q", part)
		}
		out[core.Address(kv[0])] = amount
	}
	return out, nil
}

func pubKeysAsBytes(in map[core.Address]ed25519.PublicKey) map[core.Address][]byte {
	out := make(map[core.Address][]byte, len(in))
	for a, pk := range in {
		out[a] = pk
	}
	return out
}

// signChannelUpdate collects one signature per channel participant over
// (channel_id, new_nonce, new_balances), unlocking each participant's wallet
// with the matching entry in walletIDs/passwords (teacher precedent: the
// multi-party signing walk in cmd/vanta/demo.go's channel section).
func signChannelUpdate(ch *core.Channel, newNonce uint64, newBalances map[core.Address]uint64, walletIDs, passwords string) (core.ChannelUpdate, error) {
	walletList := strings.Split(walletIDs, ",")
	pwList := strings.Split(passwords, ",")
	if len(walletList) != len(ch.Participants) || len(pwList) != len(ch.Participants) {
		return core.ChannelUpdate{}, core.NewError(core.KindInvalidInput, "--wallets and --passwords must list one entry per participant (channel %s has %d)", ch.ID, len(ch.Participants))
	}
	msg := core.ChannelUpdateMessage(ch.ID, newNonce, newBalances)
	sigs := make(map[core.Address]core.Signature, len(ch.Participants))
	for i, p := range ch.Participants {
		kp, err := wallets.Unlock(strings.TrimSpace(walletList[i]), strings.TrimSpace(pwList[i]))
		if err != nil {
			return core.ChannelUpdate{}, err
		}
		sigs[p] = kp.Sign(msg)
	}
	return core.ChannelUpdate{
		NewNonce:    newNonce,
		NewBalances: newBalances,
		Signatures:  sigs,
	}, nil
}

func updateChannelCmd() *cobra.Command {
	var (
		channelID string
		balances  string
		nonce     uint64
		walletIDs string
		passwords string
	)
	cmd := &cobra.Command{
		Use:   "update-channel",
		Short: "propose and apply a new signed balance state for a channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			balMap, err := parseBalanceList(balances)
			if err != nil {
				return err
			}
			ch, ok := channels.Get(channelID)
			if !ok {
				return core.NewError(core.KindNotFound, "channel %s not found", channelID)
			}
			upd, err := signChannelUpdate(ch, nonce, balMap, walletIDs, passwords)
			if err != nil {
				return err
			}
			if err := channels.Update(channelID, upd); err != nil {
				return err
			}
			updated, _ := channels.Get(channelID)
			fmt.Fprintf(cmd.OutOrStdout(), "channel %s updated: nonce=%d\n", updated.ID, updated.Nonce)
			for addr, bal := range updated.Balances {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", addr, bal)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&channelID, "channel", "", "channel id")
	cmd.Flags().StringVar(&balances, "balances", "", "comma-separated addr=amount pairs")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "new nonce")
	cmd.Flags().StringVar(&walletIDs, "wallets", "", "comma-separated wallet ids, one per participant")
	cmd.Flags().StringVar(&passwords, "passwords", "", "comma-separated wallet passwords, one per participant")
	return cmd
}

func closeChannelCmd() *cobra.Command {
	var (
		channelID string
		balances  string
		nonce     uint64
		walletIDs string
		passwords string
	)
	cmd := &cobra.Command{
		Use:   "close-channel",
		Short: "cooperatively close a channel with a final signed balance state",
		RunE: func(cmd *cobra.Command, args []string) error {
			balMap, err := parseBalanceList(balances)
			if err != nil {
				return err
			}
			ch, ok := channels.Get(channelID)
			if !ok {
				return core.NewError(core.KindNotFound, "channel %s not found", channelID)
			}
			upd, err := signChannelUpdate(ch, nonce, balMap, walletIDs, passwords)
			if err != nil {
				return err
			}
			final, err := channels.Close(channelID, upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel %s closed\n", channelID)
			for addr, bal := range final {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", addr, bal)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&channelID, "channel", "", "channel id")
	cmd.Flags().StringVar(&balances, "balances", "", "comma-separated addr=amount pairs")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "new nonce")
	cmd.Flags().StringVar(&walletIDs, "wallets", "", "comma-separated wallet ids, one per participant")
	cmd.Flags().StringVar(&passwords, "passwords", "", "comma-separated wallet passwords, one per participant")
	return cmd
}
