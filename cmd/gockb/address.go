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
	"fmt"

	flag "github.com/spf13/pflag"
)

func runAddress(f *globalFlags, args []string) error {
	flagset := flag.NewFlagSet("address", flag.ExitOnError)
	if err := flagset.Parse(args); err != nil {
		return err
	}
	// Nothing here talks to the node
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
	identity, err := s.PublicIdentity(ctx)
	if err != nil {
		return err
	}
	addresses, err := s.Addresses(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("identity: %s\n", identity)
	for _, address := range addresses {
		fmt.Printf("%s\n", address)
	}
	return nil
}
