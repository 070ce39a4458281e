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
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blinklabs-io/gockb/signer"
	flag "github.com/spf13/pflag"
)

func runSignMessage(f *globalFlags, args []string) error {
	flagset := flag.NewFlagSet("sign-message", flag.ExitOnError)
	message := flagset.StringP("message", "m", "", "message to sign")
	if err := flagset.Parse(args); err != nil {
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
	sig, err := s.SignMessage(context.Background(), []byte(*message))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sig)
}

func runVerifyMessage(f *globalFlags, args []string) error {
	flagset := flag.NewFlagSet("verify-message", flag.ExitOnError)
	message := flagset.StringP("message", "m", "", "signed message")
	sigFile := flagset.StringP(
		"signature-file",
		"s",
		"",
		"JSON file with the output of sign-message",
	)
	if err := flagset.Parse(args); err != nil {
		return err
	}
	if *sigFile == "" {
		return errors.New("you must specify --signature-file")
	}
	raw, err := os.ReadFile(*sigFile)
	if err != nil {
		return err
	}
	var sig signer.Signature
	if err := json.Unmarshal(raw, &sig); err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	ok, err := signer.VerifyMessage([]byte(*message), sig)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("signature does not match")
	}
	fmt.Printf("valid signature by %s\n", sig.Identity)
	return nil
}
