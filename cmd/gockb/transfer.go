// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/blinklabs-io/gockb/signer"
	"github.com/blinklabs-io/gockb/txbuilder"
	flag "github.com/spf13/pflag"
)

type transferFlags struct {
	flagset *flag.FlagSet
	to      string
	amount  string
	feeRate uint64
	output  string
}

func newTransferFlags(name string) *transferFlags {
	f := &transferFlags{
		flagset: flag.NewFlagSet(name, flag.ExitOnError),
	}
	f.flagset.StringVar(&f.to, "to", "", "recipient address")
	f.flagset.StringVar(&f.amount, "amount", "", "amount to send in CKB")
	f.flagset.Uint64Var(
		&f.feeRate,
		"fee-rate",
		0,
		"fee rate in shannons per 1000 bytes (defaults to the node's rate)",
	)
	return f
}

// parseCkb converts a decimal CKB amount to shannons
func parseCkb(s string) (uint64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if whole == "" && frac == "" {
		return 0, errors.New("empty amount")
	}
	if len(frac) > 8 {
		return 0, fmt.Errorf("amount %s has more than 8 decimals", s)
	}
	var ckb, shannons uint64
	var err error
	if whole != "" {
		if ckb, err = strconv.ParseUint(whole, 10, 64); err != nil {
			return 0, fmt.Errorf("invalid amount %s: %w", s, err)
		}
	}
	if frac != "" {
		if shannons, err = strconv.ParseUint(frac+strings.Repeat("0", 8-len(frac)), 10, 64); err != nil {
			return 0, fmt.Errorf("invalid amount %s: %w", s, err)
		}
	}
	if ckb > (^uint64(0)-shannons)/ledger.ShannonsPerByte {
		return 0, ledger.ErrCapacityOverflow
	}
	return ckb*ledger.ShannonsPerByte + shannons, nil
}

// buildTransfer returns a fee-balanced transfer with placeholder witnesses
func buildTransfer(
	ctx context.Context,
	f *globalFlags,
	tf *transferFlags,
	c client.Client,
	s signer.Signer,
) (*ledger.Transaction, error) {
	if tf.to == "" || tf.amount == "" {
		return nil, errors.New("you must specify --to and --amount")
	}
	to, err := f.parseAddress(tf.to)
	if err != nil {
		return nil, err
	}
	capacity, err := parseCkb(tf.amount)
	if err != nil {
		return nil, err
	}
	output := ledger.CellOutput{Capacity: capacity, Lock: to.Script}
	if minimum := output.OccupiedCapacity(0); capacity < minimum {
		return nil, fmt.Errorf(
			"amount must be at least %s CKB for this address",
			formatCkb(minimum),
		)
	}
	tx := ledger.NewTransaction()
	tx.AddOutput(output, nil)
	builder := txbuilder.New(c, txbuilder.WithLogger(f.logger))
	return builder.CompleteFeeBy(ctx, tx, s, tf.feeRate)
}

func runBuild(f *globalFlags, args []string) error {
	tf := newTransferFlags("build")
	tf.flagset.StringVarP(&tf.output, "out", "o", "tx.envelope", "envelope file to write")
	if err := tf.flagset.Parse(args); err != nil {
		return err
	}
	c, err := f.newClient()
	if err != nil {
		return err
	}
	defer c.Close()
	s, err := f.newSigner(c)
	if err != nil {
		return err
	}
	ctx := context.Background()
	tx, err := buildTransfer(ctx, f, tf, c, s)
	if err != nil {
		return err
	}
	if err := writeEnvelope(ctx, c, tf.output, tx); err != nil {
		return err
	}
	fmt.Printf("wrote unsigned transaction %s to %s\n", tx.Hash(), tf.output)
	return nil
}

func runTransfer(f *globalFlags, args []string) error {
	tf := newTransferFlags("transfer")
	if err := tf.flagset.Parse(args); err != nil {
		return err
	}
	c, err := f.newClient()
	if err != nil {
		return err
	}
	defer c.Close()
	s, err := f.newSigner(c)
	if err != nil {
		return err
	}
	ctx := context.Background()
	tx, err := buildTransfer(ctx, f, tf, c, s)
	if err != nil {
		return err
	}
	signed, err := s.SignOnlyTransaction(ctx, tx)
	if err != nil {
		return err
	}
	txHash, err := c.SendTransaction(ctx, signed, client.ValidatorWellKnownScriptsOnly)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", txHash)
	return nil
}
