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

	"github.com/blinklabs-io/gockb/client"
	flag "github.com/spf13/pflag"
)

func runSign(f *globalFlags, args []string) error {
	flagset := flag.NewFlagSet("sign", flag.ExitOnError)
	in := flagset.StringP("in", "i", "tx.envelope", "envelope file to sign")
	out := flagset.StringP("out", "o", "", "signed envelope file (defaults to overwriting --in)")
	if err := flagset.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		*out = *in
	}
	partial, err := readEnvelope(*in)
	if err != nil {
		return err
	}
	base, err := f.newClient()
	if err != nil {
		return err
	}
	defer base.Close()
	// Inputs resolve from the envelope, so signing works offline
	c := client.NewCellOverlay(base, partial.InputCells)
	s, err := f.newSigner(c)
	if err != nil {
		return err
	}
	ctx := context.Background()
	signed, err := s.SignOnlyTransaction(ctx, partial.Transaction)
	if err != nil {
		return err
	}
	if signed == partial.Transaction {
		return errors.New("the configured keys don't lock any input of the transaction")
	}
	if err := writeEnvelope(ctx, c, *out, signed); err != nil {
		return err
	}
	fmt.Printf("wrote signed transaction %s to %s\n", signed.Hash(), *out)
	return nil
}

func runSend(f *globalFlags, args []string) error {
	flagset := flag.NewFlagSet("send", flag.ExitOnError)
	in := flagset.StringP("in", "i", "tx.envelope", "signed envelope file")
	passthrough := flagset.Bool(
		"passthrough",
		false,
		"let the node accept outputs with unknown scripts",
	)
	if err := flagset.Parse(args); err != nil {
		return err
	}
	partial, err := readEnvelope(*in)
	if err != nil {
		return err
	}
	c, err := f.newClient()
	if err != nil {
		return err
	}
	defer c.Close()
	validator := client.ValidatorWellKnownScriptsOnly
	if *passthrough {
		validator = client.ValidatorPassthrough
	}
	txHash, err := c.SendTransaction(context.Background(), partial.Transaction, validator)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", txHash)
	return nil
}
