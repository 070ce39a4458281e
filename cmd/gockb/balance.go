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

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
	flag "github.com/spf13/pflag"
)

func (f *globalFlags) parseAddress(s string) (ledger.Address, error) {
	address, err := ledger.ParseAddress(s)
	if err != nil {
		return address, err
	}
	if address.Prefix != f.network.AddressPrefix {
		return address, fmt.Errorf(
			"address %s does not belong to network %s",
			s,
			f.network,
		)
	}
	return address, nil
}

func runBalance(f *globalFlags, args []string) error {
	flagset := flag.NewFlagSet("balance", flag.ExitOnError)
	addressStr := flagset.String(
		"address",
		"",
		"address to query (defaults to the configured keys)",
	)
	if err := flagset.Parse(args); err != nil {
		return err
	}
	c, err := f.newClient()
	if err != nil {
		return err
	}
	defer c.Close()
	ctx := context.Background()
	var locks []ledger.Script
	if *addressStr != "" {
		address, err := f.parseAddress(*addressStr)
		if err != nil {
			return err
		}
		locks = append(locks, address.Script)
	} else {
		s, err := f.newSigner(c)
		if err != nil {
			return err
		}
		if locks, err = s.LockScripts(ctx); err != nil {
			return err
		}
	}
	for _, lock := range locks {
		total, err := c.GetCellsCapacity(ctx, client.SearchKey{
			Script:           lock,
			ScriptType:       client.ScriptTypeLock,
			ScriptSearchMode: client.ScriptSearchModeExact,
		})
		if err != nil {
			return err
		}
		free, err := c.GetCellsCapacity(ctx, client.FreeCellsSearchKey(lock))
		if err != nil {
			return err
		}
		fmt.Printf(
			"%s\n  total: %s CKB\n  free:  %s CKB\n",
			ledger.NewAddress(f.network.AddressPrefix, lock),
			formatCkb(total),
			formatCkb(free),
		)
	}
	return nil
}
