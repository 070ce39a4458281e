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

package gockb

import "github.com/blinklabs-io/gockb/ledger"

// Network definitions
var (
	NetworkMainnet = Network{
		Name:          "mainnet",
		AddressPrefix: ledger.AddressPrefixMainnet,
		RpcUrl:        "https://mainnet.ckb.dev/",
		KnownScripts:  mainnetKnownScripts,
	}
	NetworkTestnet = Network{
		Name:          "testnet",
		AddressPrefix: ledger.AddressPrefixTestnet,
		RpcUrl:        "https://testnet.ckb.dev/",
		KnownScripts:  testnetKnownScripts,
	}

	NetworkInvalid = Network{
		Name: "invalid",
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkMainnet,
	NetworkTestnet,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// NetworkByAddressPrefix returns a predefined network by its address prefix
func NetworkByAddressPrefix(prefix string) Network {
	for _, network := range networks {
		if network.AddressPrefix == prefix {
			return network
		}
	}
	return NetworkInvalid
}

// Network represents a ledger network and the well-known scripts deployed on it
type Network struct {
	Name          string
	AddressPrefix string
	RpcUrl        string
	KnownScripts  map[KnownScript]ScriptInfo
}

func (n Network) String() string {
	return n.Name
}

// Snapshot returns a copy of the network whose known-script table can't be affected
// by later changes to the original, including changes made through CellDep pointers
func (n Network) Snapshot() Network {
	ret := n
	if n.KnownScripts == nil {
		return ret
	}
	ret.KnownScripts = make(map[KnownScript]ScriptInfo, len(n.KnownScripts))
	for name, info := range n.KnownScripts {
		ret.KnownScripts[name] = info.Clone()
	}
	return ret
}

// WithKnownScript returns a copy of the network with info registered under name
func (n Network) WithKnownScript(name KnownScript, info ScriptInfo) Network {
	ret := n.Snapshot()
	if ret.KnownScripts == nil {
		ret.KnownScripts = map[KnownScript]ScriptInfo{}
	}
	ret.KnownScripts[name] = info.Clone()
	return ret
}
